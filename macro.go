// Copyright 2026 The Keylayer Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package keylayer

// macroRun is one in-flight execution of a Macro script.
type macroRun struct {
	script      []MacroAtom
	idx         int
	nextReadyMs int64
	cleanup     bool
	pressed     map[OsCode]struct{} // codes this run left down, for the cleanup pass
}

// macroEngine plays zero or more Macro scripts concurrently (spec.md §4.5).
// Each tick, every run ready at the current time advances by exactly one
// atom; a MacroDelay atom emits nothing and pushes that run's next-ready
// time forward instead. Runs are serviced in FIFO submission order, so
// within one tick the output events from an earlier-submitted macro precede
// a later one's.
type macroEngine struct {
	runs []*macroRun
}

func newMacroEngine() *macroEngine {
	return &macroEngine{}
}

// Submit enqueues a new macro run, ready to play starting on the next Tick.
func (e *macroEngine) Submit(m Macro, nowMs int64) {
	e.runs = append(e.runs, &macroRun{
		script:      m.Script,
		nextReadyMs: nowMs,
		cleanup:     m.CleanupOnComplete,
		pressed:     map[OsCode]struct{}{},
	})
}

// Active reports whether any macro is still playing.
func (e *macroEngine) Active() bool {
	return len(e.runs) > 0
}

// Tick advances every ready run by one atom and returns the combined
// output, in submission order.
func (e *macroEngine) Tick(nowMs int64) []OutputEvent {
	var events []OutputEvent
	live := e.runs[:0]
	for _, r := range e.runs {
		if nowMs >= r.nextReadyMs && r.idx < len(r.script) {
			events = append(events, r.stepOnce(nowMs)...)
		}
		if r.idx < len(r.script) {
			live = append(live, r)
		} else if r.cleanup {
			events = append(events, r.releaseHeld()...)
		}
	}
	e.runs = live
	return events
}

func (r *macroRun) stepOnce(nowMs int64) []OutputEvent {
	atom := r.script[r.idx]
	r.idx++
	switch atom.Kind {
	case MacroPress:
		r.pressed[atom.Code] = struct{}{}
		return []OutputEvent{KeyOut(atom.Code, Press)}
	case MacroRelease:
		delete(r.pressed, atom.Code)
		return []OutputEvent{KeyOut(atom.Code, Release)}
	case MacroTap:
		return []OutputEvent{KeyOut(atom.Code, Press), KeyOut(atom.Code, Release)}
	case MacroDelay:
		r.nextReadyMs = nowMs + atom.DelayMs
		return nil
	case MacroUnicode:
		return []OutputEvent{UnicodeOut(atom.Rune)}
	case MacroMouse:
		return []OutputEvent{atom.Mouse}
	default:
		return nil
	}
}

// releaseHeld emits a release for every key this run left pressed.
func (r *macroRun) releaseHeld() []OutputEvent {
	if len(r.pressed) == 0 {
		return nil
	}
	out := make([]OutputEvent, 0, len(r.pressed))
	for code := range r.pressed {
		out = append(out, KeyOut(code, Release))
	}
	r.pressed = map[OsCode]struct{}{}
	return out
}

// DrainReleaseOnly stops every run that has nothing left to do but release
// keys it holds, and returns the releases (spec.md §4.5 "Cancellation":
// (a) drains pending macros that are release-only). A run that still has
// non-release atoms queued up is left running.
func (e *macroEngine) DrainReleaseOnly() []OutputEvent {
	var events []OutputEvent
	var remaining []*macroRun
	for _, r := range e.runs {
		if r.onlyReleasesRemain() {
			events = append(events, r.releaseHeld()...)
			continue
		}
		remaining = append(remaining, r)
	}
	e.runs = remaining
	return events
}

func (r *macroRun) onlyReleasesRemain() bool {
	for i := r.idx; i < len(r.script); i++ {
		if r.script[i].Kind != MacroRelease {
			return false
		}
	}
	return true
}

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

import "fmt"

// resolveSimple turns a leaf Action into the OutputEvents it produces for a
// physical direction change. Actions that need a specialized engine (Macro,
// FakeKeyAction, CustomAction, Sequence) are not handled here; see emit.
func resolveSimple(action Action, dir Direction) []OutputEvent {
	switch a := action.(type) {
	case KeyCode:
		return []OutputEvent{KeyOut(a.Code, dir)}
	case MultiKeyCode:
		out := make([]OutputEvent, 0, len(a.Codes))
		if dir == Press {
			for _, c := range a.Codes {
				out = append(out, KeyOut(c, Press))
			}
		} else {
			for i := len(a.Codes) - 1; i >= 0; i-- {
				out = append(out, KeyOut(a.Codes[i], Release))
			}
		}
		return out
	case Unicode:
		if dir == Press {
			return []OutputEvent{UnicodeOut(a.Rune)}
		}
		return nil
	case MouseButtonAction:
		return []OutputEvent{{Kind: OutMouseButton, Btn: a.Button, Dir: dir}}
	case MouseMoveAction:
		if dir == Press {
			return []OutputEvent{{Kind: OutMouseMove, DX: a.DX, DY: a.DY}}
		}
		return nil
	case MouseScrollAction:
		if dir == Press {
			return []OutputEvent{{Kind: OutMouseScroll, Axis: a.Axis, Ticks: a.Ticks}}
		}
		return nil
	default:
		return nil
	}
}

// emit resolves action for a direction change, splitting the result into
// OutputEvents the caller can flush directly and dispatches that must be
// routed to a specialized engine (the macro player, the fake-key registry,
// a custom-action handler, or the sequence/leader engine).
func (m *StateMachine) emit(action Action, dir Direction) ([]OutputEvent, []Action) {
	switch a := action.(type) {
	case Macro, FakeKeyAction:
		if dir == Press {
			return nil, []Action{action}
		}
		return nil, nil
	case CustomAction:
		if !customActionsEnabled || dir != Press {
			return nil, nil
		}
		return nil, []Action{a}
	case Sequence:
		if dir == Press {
			return nil, []Action{action}
		}
		return nil, nil
	default:
		return resolveSimple(action, dir), nil
	}
}

// tapDanceState tracks an in-progress TapDance resolution (spec.md §2 "nth
// tap within timeout picks the nth action").
type tapDanceState struct {
	spec        TapDance
	count       int
	deadlineMs  int64
	pressActive bool
}

// keyRecord is per_key_state of spec.md §4.2: the binding chosen at press
// time, consulted again at release regardless of any layer change since.
type keyRecord struct {
	layer  int
	action Action
	th     *tapHoldState
	td     *tapDanceState
	// isTapToggle/tapTogglePush track a LayerAction currently occupying this key.
	isTapToggle   bool
	tapTogglePush bool // true once tap-toggle has converted to while-held
}

// StateMachine implements spec.md §4.2: layered resolution, tap-hold,
// one-shot, tap-dance and layer-stack bookkeeping for one Keymap.
type StateMachine struct {
	km                *Keymap
	layers            *layerStack
	perKey            map[OsCode]*keyRecord
	oneShot           *oneShotState
	physicallyPressed map[OsCode]struct{}
}

// NewStateMachine builds a StateMachine starting on km's first layer.
func NewStateMachine(km *Keymap) *StateMachine {
	return &StateMachine{
		km:                km,
		layers:            newLayerStack(0),
		perKey:            map[OsCode]*keyRecord{},
		physicallyPressed: map[OsCode]struct{}{},
	}
}

// CurrentLayerName returns the name of the base layer (spec.md §4.2).
func (m *StateMachine) CurrentLayerName() string {
	return m.km.Layers[m.layers.base].Name
}

// ChangeLayer moves the base layer cursor by name.
func (m *StateMachine) ChangeLayer(name string) error {
	i := m.km.LayerIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, name)
	}
	m.layers.switchBase(i)
	return nil
}

// HandlePress processes a physical key-down not already consumed by the
// chord or sequence engines.
func (m *StateMachine) HandlePress(code OsCode, nowMs int64) ([]OutputEvent, []Action) {
	m.physicallyPressed[code] = struct{}{}

	var events []OutputEvent
	var dispatch []Action

	// Apply the hold-on-other-press trigger to every other key currently
	// waiting in tap-hold (spec.md §4.2 "policy = hold-on-other-press").
	for k, rec := range m.perKey {
		if k == code || rec.th == nil {
			continue
		}
		out := rec.th.onOtherPress(m.km, code, nowMs)
		if out.resolved && out.asHold {
			ev, _ := m.emit(rec.th.spec.Hold, Press)
			events = append(events, ev...)
		}
	}

	if m.oneShot != nil && code != m.oneShot.origin && m.oneShot.otherKeyPress() {
		ev, _ := m.emit(m.oneShot.spec.Inner, Release)
		events = append(events, ev...)
		m.oneShot = nil
	}

	if rec, tracked := m.perKey[code]; tracked && rec.td != nil {
		rec.td.count++
		if rec.td.count > len(rec.td.spec.Steps) {
			rec.td.count = len(rec.td.spec.Steps)
		}
		rec.td.deadlineMs = nowMs + rec.td.spec.TimeoutMs
		rec.td.pressActive = true
		return events, dispatch
	}

	if m.oneShot != nil && code == m.oneShot.origin {
		m.oneShot.onRepress(nowMs)
		return events, dispatch
	}

	action, layerIdx := m.km.resolve(m.layers, code)
	rec := &keyRecord{layer: layerIdx, action: action}
	m.perKey[code] = rec

	switch a := action.(type) {
	case LayerAction:
		switch a.Mode {
		case LayerWhileHeld:
			m.layers.pushWhileHeld(a.Layer, code)
		case LayerToggle:
			m.layers.toggle(a.Layer)
		case LayerSwitchBase:
			m.layers.switchBase(a.Layer)
		case LayerTapToggle:
			rec.isTapToggle = true
			rec.th = newTapHoldState(TapHold{
				Tap:          NoOp{},
				Hold:         NoOp{},
				TapTimeoutMs: m.km.Options.DefaultTapTimeoutMs,
			}, code, nowMs)
		}
	case TapHold:
		rec.th = newTapHoldState(a, code, nowMs)
	case OneShot:
		m.oneShot = newOneShotState(a, code, nowMs)
		ev, d := m.emit(a.Inner, Press)
		events = append(events, ev...)
		dispatch = append(dispatch, d...)
	case TapDance:
		rec.td = &tapDanceState{spec: a, count: 1, deadlineMs: nowMs + a.TimeoutMs, pressActive: true}
	default:
		ev, d := m.emit(action, Press)
		events = append(events, ev...)
		dispatch = append(dispatch, d...)
	}

	return events, dispatch
}

// HandleRelease processes a physical key-up not already consumed by the
// chord or sequence engines.
func (m *StateMachine) HandleRelease(code OsCode, nowMs int64) []OutputEvent {
	delete(m.physicallyPressed, code)

	var events []OutputEvent
	keepTracked := false

	rec, ok := m.perKey[code]
	if ok {
		switch a := rec.action.(type) {
		case LayerAction:
			switch a.Mode {
			case LayerWhileHeld:
				m.layers.popWhileHeld(code)
			case LayerTapToggle:
				out := rec.th.onRelease(m.km, nowMs)
				if rec.tapTogglePush {
					m.layers.popWhileHeld(code)
				} else if !out.asHold {
					m.layers.toggle(a.Layer)
				}
			}
		case TapHold:
			out := rec.th.onRelease(m.km, nowMs)
			if rec.th.phase == thHeld {
				ev, _ := m.emit(a.Hold, Release)
				events = append(events, ev...)
			} else if out.asHold {
				ev, _ := m.emit(a.Hold, Press)
				events = append(events, ev...)
				ev, _ = m.emit(a.Hold, Release)
				events = append(events, ev...)
			} else {
				ev, _ := m.emit(a.Tap, Press)
				events = append(events, ev...)
				ev, _ = m.emit(a.Tap, Release)
				events = append(events, ev...)
			}
		case OneShot:
			if code == m.oneShot.getOriginSafe() {
				m.oneShot.onSelfRelease()
			}
		case TapDance:
			if rec.td != nil {
				rec.td.pressActive = false
			}
			keepTracked = true
		default:
			ev := resolveSimple(rec.action, Release)
			events = append(events, ev...)
		}
	}

	// The releasing key's own output (above) always precedes a one-shot it
	// happens to end (spec.md's literal release-ordering scenario: the
	// released key's Up event comes before the one-shot's Up event, not
	// after).
	if m.oneShot != nil && code != m.oneShot.origin && m.oneShot.otherKeyRelease() {
		ev, _ := m.emit(m.oneShot.spec.Inner, Release)
		events = append(events, ev...)
		m.oneShot = nil
	}

	if ok && !keepTracked {
		delete(m.perKey, code)
	}
	return events
}

// getOriginSafe guards against a nil receiver when HandleRelease's OneShot
// case runs after the one-shot has already ended through another path.
func (o *oneShotState) getOriginSafe() OsCode {
	if o == nil {
		return 0
	}
	return o.origin
}

// Tick advances timeout-driven resolutions: waiting tap-holds past their
// hold deadline, an expired one-shot, tap-toggle conversion to while-held,
// and tap-dance resolution once its window closes.
func (m *StateMachine) Tick(nowMs int64) []OutputEvent {
	var events []OutputEvent

	for code, rec := range m.perKey {
		if rec.th != nil && rec.th.phase == thWaiting {
			out := rec.th.onTick(m.km, nowMs)
			if out.resolved && out.asHold {
				if rec.isTapToggle {
					la := rec.action.(LayerAction)
					m.layers.pushWhileHeld(la.Layer, code)
					rec.tapTogglePush = true
				} else {
					th := rec.action.(TapHold)
					ev, _ := m.emit(th.Hold, Press)
					events = append(events, ev...)
				}
			}
		}
		if rec.td != nil && !rec.td.pressActive && nowMs >= rec.td.deadlineMs {
			idx := rec.td.count - 1
			if idx < 0 {
				idx = 0
			}
			if idx < len(rec.td.spec.Steps) {
				step := rec.td.spec.Steps[idx]
				ev, _ := m.emit(step, Press)
				events = append(events, ev...)
				ev, _ = m.emit(step, Release)
				events = append(events, ev...)
			}
			delete(m.perKey, code)
		}
	}

	if m.oneShot != nil && m.oneShot.expired(nowMs) {
		ev, _ := m.emit(m.oneShot.spec.Inner, Release)
		events = append(events, ev...)
		m.oneShot = nil
	}

	return events
}

// Reset emits synthetic releases for every non-idle key and clears all
// layer/one-shot/tap-hold state (spec.md §4.2 "Reload resets all non-Idle
// states by emitting synthetic releases").
func (m *StateMachine) Reset(nowMs int64) []OutputEvent {
	var events []OutputEvent
	for code := range m.perKey {
		events = append(events, m.HandleRelease(code, nowMs)...)
	}
	if m.oneShot != nil {
		ev, _ := m.emit(m.oneShot.spec.Inner, Release)
		events = append(events, ev...)
		m.oneShot = nil
	}
	m.layers.reset()
	m.physicallyPressed = map[OsCode]struct{}{}
	return events
}

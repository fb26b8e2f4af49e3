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

import (
	"context"
	"log/slog"
	"time"
)

// commandEnvelope pairs a submitted Command with the (possibly nil)
// channel its Response, if any, is delivered on.
type commandEnvelope struct {
	cmd  Command
	resp chan Response
}

// Orchestrator is the single-threaded cooperative driver of spec.md §4.1:
// it owns the Keymap, the layered state machine, every auxiliary engine,
// and the virtualPressed multiset, and is the only writer of the Output
// Sink. Grounded on tcell's inputLoop/PollEvent/PostEvent pairing
// (tscreen.go), generalized from "one input channel, one render step" to
// "input queue + command queue + tick + aux engines + output flush".
type Orchestrator struct {
	km       *Keymap
	sm       *StateMachine
	chords   *chordEngine
	zippy    *zippyEngine
	seq      *sequenceEngine
	macros   *macroEngine
	fakeKeys *fakeKeyRegistry

	adapter InputAdapter
	sink    OutputSink
	log     *slog.Logger

	inQ             *inputQueue
	cmdCh           chan commandEnvelope
	pressedPhysical map[OsCode]struct{}
	virtualPressed  map[OsCode]int

	lastTsMs     int64
	shuttingDown bool
}

// NewOrchestrator builds an Orchestrator around km, ready to drive adapter
// and sink once Run is called.
func NewOrchestrator(km *Keymap, adapter InputAdapter, sink OutputSink, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		km:              km,
		sm:              NewStateMachine(km),
		chords:          newChordEngine(km.ChordGroups),
		zippy:           newZippyEngine(km.ZippyChords),
		seq:             newSequenceEngine(km),
		macros:          newMacroEngine(),
		fakeKeys:        newFakeKeyRegistry(km),
		adapter:         adapter,
		sink:            sink,
		log:             log,
		inQ:             newInputQueue(128),
		cmdCh:           make(chan commandEnvelope, 16),
		pressedPhysical: map[OsCode]struct{}{},
		virtualPressed:  map[OsCode]int{},
	}
}

// SubmitInput is the producer-side bounded enqueue named in spec.md §4.1.
// It does not block, except for a release arriving at a full queue, which
// waits for room instead of being dropped. It returns ErrShuttingDown once Shutdown has run, or
// ErrEventQFull if the overflow policy dropped ev (informational only: the
// caller may log it, but it is never fatal).
func (o *Orchestrator) SubmitInput(ev InputEvent) error {
	if o.shuttingDown {
		return ErrShuttingDown
	}
	if !o.inQ.Offer(ev) {
		return ErrEventQFull
	}
	return nil
}

// SubmitCommand enqueues cmd for the next Advance and returns the channel
// its Response will arrive on (buffered, closed after the single send), or
// ErrShuttingDown once Shutdown has run.
func (o *Orchestrator) SubmitCommand(cmd Command) (<-chan Response, error) {
	if o.shuttingDown {
		return nil, ErrShuttingDown
	}
	resp := make(chan Response, 1)
	o.cmdCh <- commandEnvelope{cmd: cmd, resp: resp}
	return resp, nil
}

// clamp enforces spec.md §3 invariant 4: event timestamps observed by the
// state machine are monotonic non-decreasing.
func (o *Orchestrator) clamp(tsMs int64) int64 {
	if tsMs < o.lastTsMs {
		return o.lastTsMs
	}
	o.lastTsMs = tsMs
	return tsMs
}

// Advance runs exactly one iteration of spec.md §4.1's loop body (steps
// 2-6) at time nowMs and returns the OutputEvents to flush, already passed
// through the virtualPressed coalescing step. Run drives this in real
// time; tests and the Simulation harness call it directly with synthetic
// timestamps for determinism.
func (o *Orchestrator) Advance(nowMs int64) []OutputEvent {
	nowMs = o.clamp(nowMs)
	var out []OutputEvent

	for _, ev := range o.inQ.DrainUpTo(nowMs) {
		out = append(out, o.handlePhysical(ev.Code, ev.Dir, o.clamp(ev.TsMs))...)
	}

	for {
		select {
		case env := <-o.cmdCh:
			out = append(out, o.handleCommand(env, nowMs)...)
		default:
			goto drained
		}
	}
drained:

	out = append(out, o.sm.Tick(nowMs)...)

	if co := o.chords.tick(nowMs); len(co.replay) > 0 {
		for _, ap := range co.replay {
			events, dispatch := o.sm.HandlePress(ap.code, ap.tsMs)
			out = append(out, events...)
			out = append(out, o.routeDispatch(dispatch, nowMs)...)
		}
	}

	out = append(out, o.handleSeqResult(o.seq.tick(nowMs), nowMs)...)

	out = append(out, o.macros.Tick(nowMs)...)

	out = append(out, o.handleZippyOutcome(o.zippy.tick(nowMs), nowMs)...)

	return o.applyVirtualPressed(out)
}

// handlePhysical routes one physical direction change through the
// sequence engine, then the chord engine, then the zippy-chord engine,
// then the layered state machine, in that priority order (spec.md §4.1
// step 5 lists chord/sequence/macro/zippy as auxiliary engines sitting in
// front of direct state-machine events).
func (o *Orchestrator) handlePhysical(code OsCode, dir Direction, tsMs int64) []OutputEvent {
	if dir == Press {
		o.pressedPhysical[code] = struct{}{}
	} else {
		delete(o.pressedPhysical, code)
	}

	if o.seq.isActive() {
		if dir != Press {
			return nil
		}
		mods := modMaskFor(o.pressedPhysical)
		return o.handleSeqResult(o.seq.step(code, mods, tsMs), tsMs)
	}

	if dir == Press {
		if co := o.chords.press(code, tsMs); co.consumed {
			return o.handleChordOutcome(co, tsMs)
		}
		if zo := o.zippy.press(code, tsMs); zo.consumed {
			return o.handleZippyOutcome(zo, tsMs)
		}
		events, dispatch := o.sm.HandlePress(code, tsMs)
		return append(events, o.routeDispatch(dispatch, tsMs)...)
	}
	if co := o.chords.release(code, tsMs); co.consumed {
		return o.handleChordOutcome(co, tsMs)
	}
	o.zippy.release(code)
	return o.sm.HandleRelease(code, tsMs)
}

func (o *Orchestrator) handleChordOutcome(co chordOutcome, nowMs int64) []OutputEvent {
	var out []OutputEvent
	if co.engage != nil {
		ev, dispatch := o.sm.emit(co.engage.Action, Press)
		out = append(out, ev...)
		out = append(out, o.routeDispatch(dispatch, nowMs)...)
	}
	if co.release != nil {
		ev, _ := o.sm.emit(co.release.Action, Release)
		out = append(out, ev...)
	}
	for _, ap := range co.replay {
		out = append(out, o.handlePhysical(ap.code, Press, ap.tsMs)...)
	}
	return out
}

// handleZippyOutcome submits a fired zippy chord's script to the macro
// player (the same engine an ordinary Macro dispatch uses, so its
// CleanupOnComplete/DrainReleaseOnly behavior applies here too) and
// replays any presses the engine absorbed without completing.
func (o *Orchestrator) handleZippyOutcome(zo zippyOutcome, nowMs int64) []OutputEvent {
	var out []OutputEvent
	if zo.fire != nil {
		o.macros.Submit(Macro{Script: zo.fire.Script}, nowMs)
	}
	for _, ap := range zo.replay {
		events, dispatch := o.sm.HandlePress(ap.code, ap.tsMs)
		out = append(out, events...)
		out = append(out, o.routeDispatch(dispatch, nowMs)...)
	}
	return out
}

func (o *Orchestrator) handleSeqResult(res sequenceResult, nowMs int64) []OutputEvent {
	if res.matched {
		evPress, dispatch := o.sm.emit(res.action, Press)
		out := append(evPress, o.routeDispatch(dispatch, nowMs)...)
		evRelease, _ := o.sm.emit(res.action, Release)
		return append(out, evRelease...)
	}
	if res.aborted && o.seq.failureIndicator != 0 {
		return []OutputEvent{KeyOut(o.seq.failureIndicator, Press), KeyOut(o.seq.failureIndicator, Release)}
	}
	return nil
}

// routeDispatch hands an Action the state machine couldn't resolve to
// direct OutputEvents off to the engine that owns it.
func (o *Orchestrator) routeDispatch(dispatch []Action, nowMs int64) []OutputEvent {
	var out []OutputEvent
	for _, d := range dispatch {
		switch v := d.(type) {
		case Macro:
			o.macros.Submit(v, nowMs)
		case FakeKeyAction:
			ev, err := o.fakeKeys.Resolve(v)
			if err != nil {
				o.log.Warn("fake key binding failed", "error", err)
				continue
			}
			out = append(out, ev...)
		case CustomAction:
			out = append(out, o.runCustomAction(v)...)
		case Sequence:
			o.seq.start(nowMs)
		}
	}
	return out
}

// runCustomAction executes a CustomAction's side effect. The core doesn't
// know what commands a build registers; by default an unrecognized Cmd is
// a silent no-op, matching spec.md's "opaque side-effect executed by
// orchestrator" without prescribing a registry.
func (o *Orchestrator) runCustomAction(a CustomAction) []OutputEvent {
	o.log.Debug("custom action dispatched", "cmd", a.Cmd)
	return nil
}

// applyVirtualPressed is the single chokepoint enforcing spec.md §3
// invariants 1 and 2: a key's OS-level press/release is coalesced across
// every source (state machine, macro, one-shot, fake key) so it is
// actually released only once every source referencing it has let go, and
// a release for a key not currently down is suppressed rather than going
// negative.
func (o *Orchestrator) applyVirtualPressed(events []OutputEvent) []OutputEvent {
	var out []OutputEvent
	for _, ev := range events {
		if ev.Kind != OutKey {
			out = append(out, ev)
			continue
		}
		if ev.Dir == Press {
			o.virtualPressed[ev.Code]++
			if o.virtualPressed[ev.Code] == 1 {
				out = append(out, ev)
			}
			continue
		}
		if o.virtualPressed[ev.Code] <= 0 {
			continue
		}
		o.virtualPressed[ev.Code]--
		if o.virtualPressed[ev.Code] == 0 {
			out = append(out, ev)
		}
	}
	return out
}

func (o *Orchestrator) respond(env commandEnvelope, r Response) {
	if env.resp == nil {
		return
	}
	env.resp <- r
	close(env.resp)
}

func (o *Orchestrator) handleCommand(env commandEnvelope, nowMs int64) []OutputEvent {
	switch c := env.cmd.(type) {
	case ChangeLayer:
		if err := o.sm.ChangeLayer(c.Name); err != nil {
			o.respond(env, ErrorResponse{Err: err})
		} else {
			o.respond(env, nil)
		}
		return nil
	case RequestLayerNames:
		o.respond(env, LayerNamesResponse{Names: o.km.LayerNames()})
		return nil
	case RequestCurrentLayerName:
		o.respond(env, CurrentLayerResponse{Name: o.sm.CurrentLayerName()})
		return nil
	case RequestCurrentLayerInfo:
		info := formatLayerInfo(o.km, o.km.LayerIndex(o.sm.CurrentLayerName()))
		o.respond(env, LayerInfoResponse{Info: info})
		return nil
	case Reload:
		return o.reload(c.NewKeymap, nowMs, env)
	case ReloadNext:
		return o.reload(c.NewKeymap, nowMs, env)
	case ReloadPrev:
		return o.reload(c.NewKeymap, nowMs, env)
	case ReloadNum:
		return o.reload(c.NewKeymap, nowMs, env)
	case ReloadFile:
		return o.reload(c.NewKeymap, nowMs, env)
	case RunFakeKeyOp:
		out, err := o.fakeKeys.Resolve(FakeKeyAction{Ref: c.Ref, Op: c.Op})
		if err != nil {
			o.respond(env, ErrorResponse{Err: err})
			return nil
		}
		o.respond(env, nil)
		return out
	case SetMouse:
		ev, _ := o.sm.emit(c.Action, Press)
		o.respond(env, nil)
		return ev
	case Flush:
		o.respond(env, FlushResponse{})
		return nil
	case RequestVirtualPressed:
		snapshot := make(map[OsCode]int, len(o.virtualPressed))
		for k, v := range o.virtualPressed {
			snapshot[k] = v
		}
		o.respond(env, VirtualPressedResponse{Counts: snapshot})
		return nil
	default:
		return nil
	}
}

// reload installs newKM per spec.md's reload sequence: release every
// synthetic key with no corresponding physical press, carry forward the
// per-key state of keys still physically held (so their eventual release
// plays out against the binding they were pressed with), then swap in the
// fresh engines.
func (o *Orchestrator) reload(newKM *Keymap, nowMs int64, env commandEnvelope) []OutputEvent {
	if newKM == nil {
		o.respond(env, ErrorResponse{Err: ErrBadKeymap})
		return nil
	}
	if err := newKM.index(); err != nil {
		o.respond(env, ErrorResponse{Err: err})
		return nil
	}

	var events []OutputEvent

	for code := range o.sm.perKey {
		if _, held := o.pressedPhysical[code]; held {
			continue
		}
		events = append(events, o.sm.HandleRelease(code, nowMs)...)
	}
	if o.sm.oneShot != nil {
		if _, held := o.pressedPhysical[o.sm.oneShot.origin]; !held {
			ev, _ := o.sm.emit(o.sm.oneShot.spec.Inner, Release)
			events = append(events, ev...)
			o.sm.oneShot = nil
		}
	}

	carried := map[OsCode]*keyRecord{}
	for code, rec := range o.sm.perKey {
		if _, held := o.pressedPhysical[code]; held {
			carried[code] = rec
		}
	}

	o.chords.reset()
	o.zippy.reset()
	o.seq.reset()

	o.km = newKM
	newSM := NewStateMachine(newKM)
	for code, rec := range carried {
		newSM.perKey[code] = rec
	}
	o.sm = newSM
	o.chords = newChordEngine(newKM.ChordGroups)
	o.zippy = newZippyEngine(newKM.ZippyChords)
	o.seq = newSequenceEngine(newKM)
	o.fakeKeys = newFakeKeyRegistry(newKM)

	o.respond(env, nil)
	return events
}

// Shutdown implements spec.md §5 "Cancellation": drains release-only
// macros and emits a release for every key still in virtualPressed.
func (o *Orchestrator) Shutdown() []OutputEvent {
	o.shuttingDown = true
	var events []OutputEvent
	events = append(events, o.applyVirtualPressed(o.macros.DrainReleaseOnly())...)
	for code, count := range o.virtualPressed {
		if count > 0 {
			events = append(events, KeyOut(code, Release))
		}
	}
	o.virtualPressed = map[OsCode]int{}
	return events
}

// Run is the production entry point: it pumps the adapter's Events channel
// into SubmitInput, drives Advance once per millisecond of wall-clock
// time, and writes every resulting OutputEvent to the sink. The adapter's
// own Run is started on a separate goroutine. Run returns when ctx is
// canceled, after running Shutdown, or with the adapter's error if the
// adapter's Run fails.
func (o *Orchestrator) Run(ctx context.Context) error {
	start := time.Now()
	nowMs := func() int64 { return time.Since(start).Milliseconds() }

	adapterErr := make(chan error, 1)
	go func() { adapterErr <- o.adapter.Run(ctx) }()
	defer o.adapter.Close()

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.flush(o.Shutdown())
			return nil
		case err := <-adapterErr:
			if err != nil {
				return err
			}
			adapterErr = nil
		case ev := <-o.adapter.Events():
			if err := o.SubmitInput(ev); err != nil {
				o.log.Warn("input event dropped", "error", err)
			}
		case <-ticker.C:
			o.flush(o.Advance(nowMs()))
		}
	}
}

func (o *Orchestrator) flush(events []OutputEvent) {
	for _, ev := range events {
		if err := o.sink.Write(ev); err != nil {
			o.log.Warn("output sink write failed", "error", &SinkError{Event: ev, Err: err})
		}
	}
}

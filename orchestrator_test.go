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

import "testing"

func simpleKeymap(t *testing.T, layers []Layer) *Keymap {
	t.Helper()
	defsrc := []OsCode{OsCodeA, OsCodeB, OsCodeCapsLock}
	km, err := NewKeymap(defsrc, layers, nil, nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("NewKeymap: %v", err)
	}
	return km
}

func newTestOrchestrator(t *testing.T, km *Keymap) (*Orchestrator, *SimSink) {
	t.Helper()
	sink := NewSimSink()
	o := NewOrchestrator(km, NewSimAdapter(), sink, nil)
	return o, sink
}

func TestOrchestratorPassthrough(t *testing.T) {
	km := simpleKeymap(t, []Layer{{
		Name: "base",
		Actions: map[OsCode]Action{
			OsCodeA: KeyCode{Code: OsCodeA},
		},
	}})
	o, sink := newTestOrchestrator(t, km)

	o.SubmitInput(InputEvent{Code: OsCodeA, Dir: Press, TsMs: 0})
	o.flush(o.Advance(0))
	o.SubmitInput(InputEvent{Code: OsCodeA, Dir: Release, TsMs: 5})
	o.flush(o.Advance(5))

	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Code != OsCodeA || events[0].Dir != Press {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Code != OsCodeA || events[1].Dir != Release {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestOrchestratorTapHoldResolvesAsTapWhenReleasedEarly(t *testing.T) {
	km := simpleKeymap(t, []Layer{{
		Name: "base",
		Actions: map[OsCode]Action{
			OsCodeCapsLock: TapHold{
				Tap:           KeyCode{Code: OsCodeEsc},
				Hold:          KeyCode{Code: OsCodeLeftCtrl},
				TapTimeoutMs:  200,
				HoldTimeoutMs: 200,
			},
		},
	}})
	o, sink := newTestOrchestrator(t, km)

	o.SubmitInput(InputEvent{Code: OsCodeCapsLock, Dir: Press, TsMs: 0})
	o.flush(o.Advance(0))
	o.SubmitInput(InputEvent{Code: OsCodeCapsLock, Dir: Release, TsMs: 50})
	o.flush(o.Advance(50))

	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events (tap), got %d: %+v", len(events), events)
	}
	if events[0].Code != OsCodeEsc || events[0].Dir != Press {
		t.Errorf("expected tap action Esc press, got %+v", events[0])
	}
	if events[1].Code != OsCodeEsc || events[1].Dir != Release {
		t.Errorf("expected tap action Esc release, got %+v", events[1])
	}
}

func TestOrchestratorTapHoldResolvesAsHoldPastTimeout(t *testing.T) {
	km := simpleKeymap(t, []Layer{{
		Name: "base",
		Actions: map[OsCode]Action{
			OsCodeCapsLock: TapHold{
				Tap:           KeyCode{Code: OsCodeEsc},
				Hold:          KeyCode{Code: OsCodeLeftCtrl},
				TapTimeoutMs:  200,
				HoldTimeoutMs: 200,
			},
		},
	}})
	o, sink := newTestOrchestrator(t, km)

	o.SubmitInput(InputEvent{Code: OsCodeCapsLock, Dir: Press, TsMs: 0})
	o.flush(o.Advance(0))
	o.flush(o.Advance(250)) // past hold timeout, still physically held
	o.SubmitInput(InputEvent{Code: OsCodeCapsLock, Dir: Release, TsMs: 300})
	o.flush(o.Advance(300))

	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events (hold), got %d: %+v", len(events), events)
	}
	if events[0].Code != OsCodeLeftCtrl || events[0].Dir != Press {
		t.Errorf("expected hold action LeftCtrl press, got %+v", events[0])
	}
	if events[1].Code != OsCodeLeftCtrl || events[1].Dir != Release {
		t.Errorf("expected hold action LeftCtrl release, got %+v", events[1])
	}
}

func TestOrchestratorVirtualPressedNeverNegative(t *testing.T) {
	km := simpleKeymap(t, []Layer{{Name: "base", Actions: map[OsCode]Action{}}})
	o, sink := newTestOrchestrator(t, km)

	// A release with no matching press must not be forwarded (spec.md §3
	// invariant 2): the key was never added to virtualPressed by a press.
	o.SubmitInput(InputEvent{Code: OsCodeB, Dir: Release, TsMs: 0})
	o.flush(o.Advance(0))

	if len(sink.Events()) != 0 {
		t.Fatalf("expected no output for an unmatched release, got %+v", sink.Events())
	}
}

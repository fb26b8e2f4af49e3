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

func testTapDanceKeymap(t *testing.T) *Keymap {
	t.Helper()
	layers := []Layer{
		{Name: "base", Actions: map[OsCode]Action{
			OsCodeA: TapDance{
				Steps:     []Action{KeyCode{Code: OsCodeEsc}, KeyCode{Code: OsCodeTab}},
				TimeoutMs: 100,
			},
		}},
	}
	km, err := NewKeymap([]OsCode{OsCodeA}, layers, nil, nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("NewKeymap: %v", err)
	}
	return km
}

func TestTapDanceSingleTapResolvesFirstStep(t *testing.T) {
	km := testTapDanceKeymap(t)
	m := NewStateMachine(km)

	m.HandlePress(OsCodeA, 0)
	m.HandleRelease(OsCodeA, 10)
	if out := m.Tick(50); out != nil {
		t.Fatalf("got %+v before the tap-dance window closes, want nothing yet", out)
	}
	out := m.Tick(110)
	if len(out) != 2 || out[0].Code != OsCodeEsc || out[1].Code != OsCodeEsc {
		t.Fatalf("got %+v, want a single press+release of the first step (esc)", out)
	}
}

func TestTapDanceDoubleTapResolvesSecondStep(t *testing.T) {
	km := testTapDanceKeymap(t)
	m := NewStateMachine(km)

	m.HandlePress(OsCodeA, 0)
	m.HandleRelease(OsCodeA, 10)
	m.HandlePress(OsCodeA, 20)
	m.HandleRelease(OsCodeA, 30)
	out := m.Tick(130)
	if len(out) != 2 || out[0].Code != OsCodeTab {
		t.Fatalf("got %+v, want the second step (tab) after two taps within the window", out)
	}
}

func TestTapDanceOverflowClampsToLastStep(t *testing.T) {
	km := testTapDanceKeymap(t)
	m := NewStateMachine(km)

	for i := 0; i < 5; i++ {
		ts := int64(i * 10)
		m.HandlePress(OsCodeA, ts)
		m.HandleRelease(OsCodeA, ts+5)
	}
	out := m.Tick(200)
	if len(out) != 2 || out[0].Code != OsCodeTab {
		t.Fatalf("got %+v, want the overflow clamped to the last configured step (tab)", out)
	}
}

func TestStateMachineResetEmitsReleasesAndClearsState(t *testing.T) {
	km := testLayerKeymap(t)
	m := NewStateMachine(km)

	m.HandlePress(OsCodeA, 0)
	out := m.Reset(10)
	if len(out) != 1 || out[0].Dir != Release {
		t.Fatalf("got %+v, want a synthetic release for the still-pressed key", out)
	}
	if len(m.perKey) != 0 {
		t.Fatalf("got %d tracked keys after reset, want none", len(m.perKey))
	}
	if m.layers.base != 0 || len(m.layers.held) != 0 || len(m.layers.toggled) != 0 {
		t.Fatalf("got layer state %+v after reset, want the plain base layer", m.layers)
	}
}

func TestStateMachineResetReleasesOneShot(t *testing.T) {
	layers := []Layer{
		{Name: "base", Actions: map[OsCode]Action{
			OsCodeCapsLock: OneShot{Inner: KeyCode{Code: OsCodeLeftShift}, TimeoutMs: 1000},
		}},
	}
	km, err := NewKeymap([]OsCode{OsCodeCapsLock}, layers, nil, nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("NewKeymap: %v", err)
	}
	m := NewStateMachine(km)
	m.HandlePress(OsCodeCapsLock, 0)
	m.HandleRelease(OsCodeCapsLock, 5)

	out := m.Reset(10)
	var sawRelease bool
	for _, ev := range out {
		if ev.Code == OsCodeLeftShift && ev.Dir == Release {
			sawRelease = true
		}
	}
	if !sawRelease {
		t.Fatalf("got %+v, want the asserted one-shot inner key released on reset", out)
	}
}

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

func TestMacroEngineStepsOneAtomPerTick(t *testing.T) {
	e := newMacroEngine()
	e.Submit(Macro{Script: []MacroAtom{
		{Kind: MacroPress, Code: OsCodeA},
		{Kind: MacroRelease, Code: OsCodeA},
	}}, 0)

	out := e.Tick(0)
	if len(out) != 1 || out[0].Dir != Press {
		t.Fatalf("first tick: got %+v, want a single press", out)
	}
	if !e.Active() {
		t.Fatalf("got inactive after one of two atoms, want still active")
	}

	out = e.Tick(1)
	if len(out) != 1 || out[0].Dir != Release {
		t.Fatalf("second tick: got %+v, want a single release", out)
	}
	if e.Active() {
		t.Fatalf("got active after the script completed, want inactive")
	}
}

func TestMacroDelayDefersSubsequentAtoms(t *testing.T) {
	e := newMacroEngine()
	e.Submit(Macro{Script: []MacroAtom{
		{Kind: MacroDelay, DelayMs: 100},
		{Kind: MacroTap, Code: OsCodeB},
	}}, 0)

	if out := e.Tick(0); out != nil {
		t.Fatalf("got %+v on the delay tick, want no output", out)
	}
	if out := e.Tick(50); out != nil {
		t.Fatalf("got %+v before the delay elapses, want no output", out)
	}
	out := e.Tick(100)
	if len(out) != 2 || out[0].Dir != Press || out[1].Dir != Release {
		t.Fatalf("got %+v at the deadline, want the tap's press+release", out)
	}
}

func TestMacroCleanupOnCompleteReleasesHeldKeys(t *testing.T) {
	e := newMacroEngine()
	e.Submit(Macro{
		Script:            []MacroAtom{{Kind: MacroPress, Code: OsCodeA}},
		CleanupOnComplete: true,
	}, 0)

	out := e.Tick(0)
	if len(out) != 2 {
		t.Fatalf("got %+v, want the press plus an immediate cleanup release", out)
	}
	var sawPress, sawRelease bool
	for _, ev := range out {
		if ev.Dir == Press {
			sawPress = true
		}
		if ev.Dir == Release {
			sawRelease = true
		}
	}
	_ = sawPress
	if !sawRelease {
		t.Fatalf("got %+v, want a cleanup release once the script runs out of atoms", out)
	}
	if e.Active() {
		t.Fatalf("got active after cleanup, want the run removed")
	}
}

func TestMacroDrainReleaseOnlyStopsFinishingRuns(t *testing.T) {
	e := newMacroEngine()
	e.Submit(Macro{Script: []MacroAtom{
		{Kind: MacroPress, Code: OsCodeA},
		{Kind: MacroRelease, Code: OsCodeA},
	}}, 0)
	e.Tick(0) // advance past the press, leaving only a release queued

	out := e.DrainReleaseOnly()
	if len(out) != 1 || out[0].Dir != Release {
		t.Fatalf("got %+v, want the queued release drained immediately", out)
	}
	if e.Active() {
		t.Fatalf("got active after draining a release-only run, want it stopped")
	}
}

func TestMacroDrainReleaseOnlyLeavesNonReleaseRunsAlone(t *testing.T) {
	e := newMacroEngine()
	e.Submit(Macro{Script: []MacroAtom{
		{Kind: MacroDelay, DelayMs: 100},
		{Kind: MacroPress, Code: OsCodeA},
	}}, 0)

	out := e.DrainReleaseOnly()
	if out != nil {
		t.Fatalf("got %+v, want nothing drained from a run with non-release atoms left", out)
	}
	if !e.Active() {
		t.Fatalf("got inactive, want the run left running")
	}
}

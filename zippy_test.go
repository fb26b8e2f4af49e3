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

func typeScript(codes ...OsCode) []MacroAtom {
	script := make([]MacroAtom, 0, len(codes))
	for _, c := range codes {
		script = append(script, MacroAtom{Kind: MacroTap, Code: c})
	}
	return script
}

func TestZippyChordTypesString(t *testing.T) {
	chords := []ZippyChord{
		{ID: 1, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Script: typeScript(OsCodeH, OsCodeI)},
	}
	e := newZippyEngine(chords)

	if out := e.press(OsCodeJ, 0); !out.consumed || out.fire != nil {
		t.Fatalf("first member press: got %+v, want consumed with no fire yet", out)
	}
	out := e.press(OsCodeK, 10)
	if !out.consumed || out.fire == nil || out.fire.ID != 1 {
		t.Fatalf("completing press: got %+v, want fire of chord 1", out)
	}
	if len(out.fire.Script) != 2 {
		t.Fatalf("got script %+v, want the configured 2-atom \"hi\" script", out.fire.Script)
	}
}

func TestZippyChordFiresWithoutWaitingForRelease(t *testing.T) {
	chords := []ZippyChord{
		{ID: 1, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Script: typeScript(OsCodeH)},
	}
	e := newZippyEngine(chords)

	e.press(OsCodeJ, 0)
	out := e.press(OsCodeK, 5)
	if out.fire == nil {
		t.Fatalf("got %+v, want the chord to fire on the completing press", out)
	}
	// A zippy chord doesn't stay engaged: releasing its members should not
	// itself consume anything (unlike chordEngine.release).
	e.release(OsCodeJ)
	e.release(OsCodeK)
}

func TestZippyChordTieBreakLargerMemberSetWins(t *testing.T) {
	chords := []ZippyChord{
		{ID: 1, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Script: typeScript(OsCodeH)},
		{ID: 2, Members: membersOf(OsCodeJ, OsCodeK, OsCodeL), TimeoutMs: 50, Script: typeScript(OsCodeI)},
	}
	e := newZippyEngine(chords)

	e.press(OsCodeJ, 0)
	e.press(OsCodeL, 5)
	out := e.press(OsCodeK, 10)
	if out.fire == nil || out.fire.ID != 2 {
		t.Fatalf("got fire %+v, want larger-member-set chord 2 to win the tie", out.fire)
	}
}

func TestZippyChordTimeoutReplaysAbsorbedPresses(t *testing.T) {
	chords := []ZippyChord{
		{ID: 1, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Script: typeScript(OsCodeH)},
	}
	e := newZippyEngine(chords)

	e.press(OsCodeJ, 0)
	if out := e.tick(30); out.replay != nil {
		t.Fatalf("tick before deadline: got replay %+v, want none", out.replay)
	}
	out := e.tick(51)
	if len(out.replay) != 1 || out.replay[0].code != OsCodeJ {
		t.Fatalf("tick past deadline: got replay %+v, want single absorbed press of J", out.replay)
	}
}

func TestZippyChordNonMemberPressPassesThrough(t *testing.T) {
	chords := []ZippyChord{
		{ID: 1, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Script: typeScript(OsCodeH)},
	}
	e := newZippyEngine(chords)

	out := e.press(OsCodeA, 0)
	if out.consumed {
		t.Fatalf("got consumed=true for a key in no zippy chord, want false")
	}
}

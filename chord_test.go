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

func membersOf(codes ...OsCode) map[OsCode]struct{} {
	m := make(map[OsCode]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

func TestChordEngineCompletesAndReleases(t *testing.T) {
	groups := []ChordGroup{
		{ID: 1, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Action: KeyCode{Code: OsCodeEsc}},
	}
	e := newChordEngine(groups)

	if out := e.press(OsCodeJ, 0); !out.consumed || out.engage != nil {
		t.Fatalf("first member press: got %+v, want consumed with no engage yet", out)
	}
	out := e.press(OsCodeK, 10)
	if !out.consumed || out.engage == nil || out.engage.ID != 1 {
		t.Fatalf("completing press: got %+v, want engage of group 1", out)
	}

	if out := e.release(OsCodeJ, 20); !out.consumed || out.release != nil {
		t.Fatalf("first release: got %+v, want consumed, not yet released", out)
	}
	out = e.release(OsCodeK, 25)
	if !out.consumed || out.release == nil || out.release.ID != 1 {
		t.Fatalf("final release: got %+v, want release of group 1", out)
	}
}

func TestChordEngineTieBreakLargerMemberSetWins(t *testing.T) {
	groups := []ChordGroup{
		{ID: 1, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Action: KeyCode{Code: OsCodeEsc}},
		{ID: 2, Members: membersOf(OsCodeJ, OsCodeK, OsCodeL), TimeoutMs: 50, Action: KeyCode{Code: OsCodeTab}},
	}
	e := newChordEngine(groups)

	e.press(OsCodeJ, 0)
	e.press(OsCodeL, 5)
	out := e.press(OsCodeK, 10)
	if out.engage == nil || out.engage.ID != 2 {
		t.Fatalf("got engage %+v, want larger-member-set group 2 to win the tie", out.engage)
	}
}

func TestChordEngineTieBreakLowestIDWins(t *testing.T) {
	groups := []ChordGroup{
		{ID: 5, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Action: KeyCode{Code: OsCodeEsc}},
		{ID: 2, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Action: KeyCode{Code: OsCodeTab}},
	}
	e := newChordEngine(groups)

	e.press(OsCodeJ, 0)
	out := e.press(OsCodeK, 5)
	if out.engage == nil || out.engage.ID != 2 {
		t.Fatalf("got engage %+v, want lowest id (2) to win an equal-size tie", out.engage)
	}
}

func TestChordEngineTimeoutReplaysAbsorbedPresses(t *testing.T) {
	groups := []ChordGroup{
		{ID: 1, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Action: KeyCode{Code: OsCodeEsc}},
	}
	e := newChordEngine(groups)

	e.press(OsCodeJ, 0)
	if out := e.tick(30); out.replay != nil {
		t.Fatalf("tick before deadline: got replay %+v, want none", out.replay)
	}
	out := e.tick(51)
	if len(out.replay) != 1 || out.replay[0].code != OsCodeJ {
		t.Fatalf("tick past deadline: got replay %+v, want single absorbed press of J", out.replay)
	}
}

func TestChordEngineNonMemberPressPassesThrough(t *testing.T) {
	groups := []ChordGroup{
		{ID: 1, Members: membersOf(OsCodeJ, OsCodeK), TimeoutMs: 50, Action: KeyCode{Code: OsCodeEsc}},
	}
	e := newChordEngine(groups)

	out := e.press(OsCodeA, 0)
	if out.consumed {
		t.Fatalf("got consumed=true for a key in no chord group, want false")
	}
}

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

import "sort"

// absorbedPress is a physical press the chord engine swallowed while a
// candidate chord was pending; replayed verbatim if the candidacy times out
// (spec.md §4.3).
type absorbedPress struct {
	code OsCode
	tsMs int64
}

// chordCandidate is one chord group currently eligible to complete, i.e. at
// least one of its members has been pressed since the pending episode
// started.
type chordCandidate struct {
	group      *ChordGroup
	deadlineMs int64
}

// chordEngine recognizes ordinary chord groups (spec.md §4.3): a completed
// chord stays engaged until every member key is released. The
// fire-and-release-immediately "zippy chord" variant named alongside it in
// spec.md §2 is a separate engine; see zippy.go.
type chordEngine struct {
	byMember map[OsCode][]*ChordGroup

	// pending episode state: non-nil candidates means the engine is
	// accumulating presses toward one or more chord groups.
	candidates map[int]*chordCandidate
	pressedSet map[OsCode]int64 // member -> first press ts, this episode
	absorbed   []absorbedPress

	// engaged chord: a completed chord still waiting for all of its
	// members to be released.
	engagedGroup     *ChordGroup
	engagedRemaining map[OsCode]struct{}
}

func newChordEngine(groups []ChordGroup) *chordEngine {
	e := &chordEngine{byMember: map[OsCode][]*ChordGroup{}}
	for i := range groups {
		g := &groups[i]
		for m := range g.Members {
			e.byMember[m] = append(e.byMember[m], g)
		}
	}
	return e
}

// chordOutcome reports what a press/release/tick produced.
type chordOutcome struct {
	consumed bool // true if the chord engine handled this event itself
	engage   *ChordGroup
	release  *ChordGroup
	replay   []absorbedPress
}

// press feeds a physical key-down into the chord engine. If it returns
// consumed == false, the caller must resolve code through the normal
// layered state machine instead.
func (e *chordEngine) press(code OsCode, tsMs int64) chordOutcome {
	if e.engagedGroup != nil {
		if _, member := e.engagedRemaining[code]; member {
			return chordOutcome{consumed: true}
		}
		return chordOutcome{}
	}

	groups := e.byMember[code]
	if len(groups) == 0 {
		return chordOutcome{}
	}

	if e.pressedSet == nil {
		e.pressedSet = map[OsCode]int64{}
		e.candidates = map[int]*chordCandidate{}
	}
	if _, already := e.pressedSet[code]; !already {
		e.pressedSet[code] = tsMs
		e.absorbed = append(e.absorbed, absorbedPress{code: code, tsMs: tsMs})
	}
	for _, g := range groups {
		if _, tracked := e.candidates[g.ID]; !tracked {
			e.candidates[g.ID] = &chordCandidate{group: g, deadlineMs: tsMs + g.TimeoutMs}
		}
	}

	winner := e.completedWinner(tsMs)
	if winner == nil {
		return chordOutcome{consumed: true}
	}
	e.engage(winner)
	return chordOutcome{consumed: true, engage: winner}
}

// completedWinner finds the best chord group, among all current
// candidates, whose member set is now fully pressed. Tie-break per
// spec.md §4.3: earliest-completing group wins; since all candidates are
// evaluated at the same tsMs here, "earliest" collapses to "completes on
// this press", so the remaining rule is largest member set, then lowest id.
func (e *chordEngine) completedWinner(tsMs int64) *ChordGroup {
	var winners []*ChordGroup
	for _, c := range e.candidates {
		if e.allMembersPressed(c.group) {
			winners = append(winners, c.group)
		}
	}
	if len(winners) == 0 {
		return nil
	}
	sort.Slice(winners, func(i, j int) bool {
		if len(winners[i].Members) != len(winners[j].Members) {
			return len(winners[i].Members) > len(winners[j].Members)
		}
		return winners[i].ID < winners[j].ID
	})
	return winners[0]
}

func (e *chordEngine) allMembersPressed(g *ChordGroup) bool {
	for m := range g.Members {
		if _, ok := e.pressedSet[m]; !ok {
			return false
		}
	}
	return true
}

func (e *chordEngine) engage(g *ChordGroup) {
	remaining := make(map[OsCode]struct{}, len(g.Members))
	for m := range g.Members {
		remaining[m] = struct{}{}
	}
	e.engagedGroup = g
	e.engagedRemaining = remaining
	e.candidates = nil
	e.pressedSet = nil
	e.absorbed = nil
}

// release feeds a physical key-up into the chord engine.
func (e *chordEngine) release(code OsCode, tsMs int64) chordOutcome {
	if e.engagedGroup == nil {
		return chordOutcome{}
	}
	if _, member := e.engagedRemaining[code]; !member {
		return chordOutcome{}
	}
	delete(e.engagedRemaining, code)
	if len(e.engagedRemaining) > 0 {
		return chordOutcome{consumed: true}
	}
	g := e.engagedGroup
	e.engagedGroup = nil
	e.engagedRemaining = nil
	return chordOutcome{consumed: true, release: g}
}

// tick expires any candidate whose window has closed. Once every tracked
// candidate has expired without completing, the absorbed presses are
// replayed in arrival order (spec.md §4.3, tested by scenario F of §8).
func (e *chordEngine) tick(nowMs int64) chordOutcome {
	if e.candidates == nil {
		return chordOutcome{}
	}
	for id, c := range e.candidates {
		if nowMs >= c.deadlineMs {
			delete(e.candidates, id)
		}
	}
	if len(e.candidates) > 0 {
		return chordOutcome{}
	}
	replay := e.absorbed
	e.absorbed = nil
	e.pressedSet = nil
	e.candidates = nil
	if len(replay) == 0 {
		return chordOutcome{}
	}
	return chordOutcome{replay: replay}
}

// reset clears all in-flight chord state (used on reload).
func (e *chordEngine) reset() {
	e.candidates = nil
	e.pressedSet = nil
	e.absorbed = nil
	e.engagedGroup = nil
	e.engagedRemaining = nil
}

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

// ZippyChord is a zippy-chord group (spec.md §2 "Auxiliary Engines": chord
// recognizer, sequence/leader recognizer, macro player, zippy-chord
// engine). A ZippyChord differs from an ordinary ChordGroup in one way:
// it fires the instant its member set is fully pressed rather than
// waiting for a matching release, so the same physical keys are free
// again immediately and the chord reads as "typing a whole word/ngram at
// once" rather than "a combo you hold".
type ZippyChord struct {
	ID        int
	Members   map[OsCode]struct{}
	TimeoutMs int64
	Script    []MacroAtom
}

// absorbedZippyPress is a physical press the zippy engine swallowed while
// a candidate was pending; replayed verbatim if every candidate it could
// have belonged to times out without completing.
type absorbedZippyPress struct {
	code OsCode
	tsMs int64
}

type zippyCandidate struct {
	chord      *ZippyChord
	deadlineMs int64
}

// zippyEngine recognizes ZippyChords. It is ticked as its own auxiliary
// engine, distinct from chordEngine: spec.md §4.1 step 5 lists the fixed
// tick order "chord, sequence, macro, zippy", and unlike chordEngine it
// never holds an engaged group waiting for release.
type zippyEngine struct {
	byMember map[OsCode][]*ZippyChord

	candidates map[int]*zippyCandidate
	pressedSet map[OsCode]int64
	absorbed   []absorbedZippyPress
}

func newZippyEngine(chords []ZippyChord) *zippyEngine {
	e := &zippyEngine{byMember: map[OsCode][]*ZippyChord{}}
	for i := range chords {
		c := &chords[i]
		for m := range c.Members {
			e.byMember[m] = append(e.byMember[m], c)
		}
	}
	return e
}

// zippyOutcome reports what a press/tick produced.
type zippyOutcome struct {
	consumed bool
	fire     *ZippyChord
	replay   []absorbedZippyPress
}

// press feeds a physical key-down into the zippy engine. If it returns
// consumed == false, code isn't a zippy-chord member at all and the
// caller must resolve it through the normal layered state machine.
func (e *zippyEngine) press(code OsCode, tsMs int64) zippyOutcome {
	chords := e.byMember[code]
	if len(chords) == 0 {
		return zippyOutcome{}
	}

	if e.pressedSet == nil {
		e.pressedSet = map[OsCode]int64{}
		e.candidates = map[int]*zippyCandidate{}
	}
	if _, already := e.pressedSet[code]; !already {
		e.pressedSet[code] = tsMs
		e.absorbed = append(e.absorbed, absorbedZippyPress{code: code, tsMs: tsMs})
	}
	for _, c := range chords {
		if _, tracked := e.candidates[c.ID]; !tracked {
			e.candidates[c.ID] = &zippyCandidate{chord: c, deadlineMs: tsMs + c.TimeoutMs}
		}
	}

	winner := e.completedWinner()
	if winner == nil {
		return zippyOutcome{consumed: true}
	}
	e.clear()
	return zippyOutcome{consumed: true, fire: winner}
}

// completedWinner applies the same tie-break chordEngine uses: largest
// member set wins, then lowest ID.
func (e *zippyEngine) completedWinner() *ZippyChord {
	var winners []*ZippyChord
	for _, c := range e.candidates {
		if e.allMembersPressed(c.chord) {
			winners = append(winners, c.chord)
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

func (e *zippyEngine) allMembersPressed(c *ZippyChord) bool {
	for m := range c.Members {
		if _, ok := e.pressedSet[m]; !ok {
			return false
		}
	}
	return true
}

// clear drops all pending-episode state once a chord has fired; nothing
// needs replaying since the episode resolved successfully.
func (e *zippyEngine) clear() {
	e.candidates = nil
	e.pressedSet = nil
	e.absorbed = nil
}

// release just forgets code: a zippy chord never holds an engaged state
// across release the way an ordinary chord does, so there is nothing to
// consume here.
func (e *zippyEngine) release(code OsCode) {
	if e.pressedSet != nil {
		delete(e.pressedSet, code)
	}
}

// tick expires candidates past their window and, once none remain
// pending, replays absorbed presses so they resolve as ordinary keys
// instead of vanishing (mirrors chordEngine.tick).
func (e *zippyEngine) tick(nowMs int64) zippyOutcome {
	if e.candidates == nil {
		return zippyOutcome{}
	}
	for id, c := range e.candidates {
		if nowMs >= c.deadlineMs {
			delete(e.candidates, id)
		}
	}
	if len(e.candidates) > 0 {
		return zippyOutcome{}
	}
	replay := e.absorbed
	e.absorbed = nil
	e.pressedSet = nil
	e.candidates = nil
	if len(replay) == 0 {
		return zippyOutcome{}
	}
	return zippyOutcome{replay: replay}
}

// reset clears all in-flight zippy state (used on reload).
func (e *zippyEngine) reset() {
	e.candidates = nil
	e.pressedSet = nil
	e.absorbed = nil
}

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

func testSequenceKeymap(t *testing.T, trie *SequenceTrie, backtrack bool) *Keymap {
	t.Helper()
	layers := []Layer{{Name: "base", Actions: map[OsCode]Action{}}}
	opts := DefaultOptions()
	opts.BacktrackModCancel = backtrack
	opts.SequenceTimeoutMs = 1000
	km, err := NewKeymap([]OsCode{OsCodeA}, layers, nil, trie, nil, opts)
	if err != nil {
		t.Fatalf("NewKeymap: %v", err)
	}
	return km
}

func TestSequenceTrieMatchesConfiguredRun(t *testing.T) {
	trie := NewSequenceTrie()
	trie.Add([]OsCode{OsCodeG, OsCodeI}, nil, KeyCode{Code: OsCodeTab})
	km := testSequenceKeymap(t, trie, false)
	e := newSequenceEngine(km)

	e.start(0)
	if out := e.step(OsCodeG, 0, 10); out.matched || out.aborted {
		t.Fatalf("got %+v after first of two steps, want neither matched nor aborted", out)
	}
	out := e.step(OsCodeI, 0, 20)
	if !out.matched || out.action.(KeyCode).Code != OsCodeTab {
		t.Fatalf("got %+v, want the trie's bound action", out)
	}
	if e.isActive() {
		t.Fatalf("got active after a match, want sequence mode exited")
	}
}

func TestSequenceStepOffTrieAborts(t *testing.T) {
	trie := NewSequenceTrie()
	trie.Add([]OsCode{OsCodeG, OsCodeI}, nil, KeyCode{Code: OsCodeTab})
	km := testSequenceKeymap(t, trie, false)
	e := newSequenceEngine(km)

	e.start(0)
	out := e.step(OsCodeB, 0, 10)
	if !out.aborted {
		t.Fatalf("got %+v, want abort for a key not in the trie", out)
	}
	if e.isActive() {
		t.Fatalf("got active after abort, want sequence mode exited")
	}
}

func TestSequenceTimeoutAborts(t *testing.T) {
	trie := NewSequenceTrie()
	trie.Add([]OsCode{OsCodeG, OsCodeI}, nil, KeyCode{Code: OsCodeTab})
	km := testSequenceKeymap(t, trie, false)
	e := newSequenceEngine(km)

	e.start(0)
	out := e.tick(500)
	if out.aborted {
		t.Fatalf("got aborted before the 1000ms deadline, want still active")
	}
	out = e.tick(1000)
	if !out.aborted {
		t.Fatalf("got %+v at the deadline, want aborted", out)
	}
}

func TestSequenceBacktrackModCancelRetriesPlainBits(t *testing.T) {
	trie := NewSequenceTrie()
	trie.Add([]OsCode{OsCodeG}, []ModMask{0}, KeyCode{Code: OsCodeTab})
	km := testSequenceKeymap(t, trie, true)
	e := newSequenceEngine(km)

	e.start(0)
	out := e.step(OsCodeG, ModShift, 10)
	if !out.matched {
		t.Fatalf("got %+v, want the shifted press to retry against the plain-bit entry", out)
	}
}

func TestSequenceWithoutBacktrackModCancelAbortsOnModMismatch(t *testing.T) {
	trie := NewSequenceTrie()
	trie.Add([]OsCode{OsCodeG}, []ModMask{0}, KeyCode{Code: OsCodeTab})
	km := testSequenceKeymap(t, trie, false)
	e := newSequenceEngine(km)

	e.start(0)
	out := e.step(OsCodeG, ModShift, 10)
	if !out.aborted {
		t.Fatalf("got %+v, want abort since the shifted key doesn't match the plain-only entry", out)
	}
}

func TestSequenceEngineResetClearsInProgress(t *testing.T) {
	trie := NewSequenceTrie()
	trie.Add([]OsCode{OsCodeG, OsCodeI}, nil, KeyCode{Code: OsCodeTab})
	km := testSequenceKeymap(t, trie, false)
	e := newSequenceEngine(km)

	e.start(0)
	e.step(OsCodeG, 0, 10)
	e.reset()
	if e.isActive() {
		t.Fatalf("got active after reset, want sequence mode cleared")
	}
}

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

// seqKey packs an OsCode with the modifier bits that were concurrently held
// when it was recorded into a sequence run (spec.md §4.4 "optional
// modifier-high-bits... to support shifted chord outputs in sequences").
// This mirrors how tcell's own key decoder (tscreen.go prepareKeys/
// scanInput) walks a byte-run trie; here the alphabet is (OsCode, ModMask)
// pairs instead of terminal escape bytes.
type seqKey uint32

func makeSeqKey(code OsCode, mod ModMask) seqKey {
	return seqKey(code) | seqKey(mod)<<16
}

func (k seqKey) plain() seqKey {
	return k &^ (seqKey(0xF) << 16)
}

// seqNode is one node of the SequenceTrie.
type seqNode struct {
	children map[seqKey]*seqNode
	action   Action // non-nil at a terminal node
}

// SequenceTrie holds every configured leader sequence, keyed by the run of
// keys (with modifier state) that must follow the leader key (spec.md §3,
// §4.4).
type SequenceTrie struct {
	root *seqNode
}

// NewSequenceTrie returns an empty trie.
func NewSequenceTrie() *SequenceTrie {
	return &SequenceTrie{root: &seqNode{}}
}

// Add registers action to fire when, in order, codes (each optionally
// tagged with the modifiers held at the time) are pressed after the leader.
func (t *SequenceTrie) Add(codes []OsCode, mods []ModMask, action Action) {
	n := t.root
	for i, c := range codes {
		m := ModMask(0)
		if i < len(mods) {
			m = mods[i]
		}
		k := makeSeqKey(c, m)
		if n.children == nil {
			n.children = map[seqKey]*seqNode{}
		}
		child, ok := n.children[k]
		if !ok {
			child = &seqNode{}
			n.children[k] = child
		}
		n = child
	}
	n.action = action
}

// sequenceState is the live cursor of an in-progress leader sequence,
// mirroring RuntimeState.sequence_state of spec.md §3.
type sequenceState struct {
	node       *seqNode
	deadlineMs int64
}

// sequenceEngine drives zero-or-one active sequence at a time (spec.md §4.4
// names a single "sequence mode"; simultaneous leader sequences are not
// part of the described model).
type sequenceEngine struct {
	trie   *SequenceTrie
	active *sequenceState
	// failureIndicator, if non-zero, is tapped on abort. newSequenceEngine
	// never sets it and Options has no field for it, so it stays zero and an
	// abort exits silently.
	failureIndicator OsCode
	backtrackModCancel bool
	timeoutMs          int64
}

func newSequenceEngine(km *Keymap) *sequenceEngine {
	return &sequenceEngine{
		trie:               km.Sequences,
		backtrackModCancel: km.Options.BacktrackModCancel,
		timeoutMs:          km.Options.SequenceTimeoutMs,
	}
}

// isActive reports whether a sequence is currently being accumulated.
func (e *sequenceEngine) isActive() bool {
	return e.active != nil
}

// start enters sequence mode at time nowMs.
func (e *sequenceEngine) start(nowMs int64) {
	if e.trie == nil {
		e.trie = NewSequenceTrie()
	}
	e.active = &sequenceState{node: e.trie.root, deadlineMs: nowMs + e.timeoutMs}
}

// sequenceResult reports what a step or tick produced.
type sequenceResult struct {
	matched bool
	action  Action
	aborted bool
}

// step feeds one key press into the active sequence. mods is the modifier
// mask concurrently held at the time of the press.
func (e *sequenceEngine) step(code OsCode, mods ModMask, nowMs int64) sequenceResult {
	st := e.active
	if st == nil {
		return sequenceResult{}
	}
	if nowMs >= st.deadlineMs {
		e.active = nil
		return sequenceResult{aborted: true}
	}
	k := makeSeqKey(code, mods)
	if child, ok := st.node.children[k]; ok {
		return e.advance(st, child, nowMs)
	}
	if e.backtrackModCancel && mods != 0 {
		if child, ok := st.node.children[k.plain()]; ok {
			return e.advance(st, child, nowMs)
		}
	}
	e.active = nil
	return sequenceResult{aborted: true}
}

func (e *sequenceEngine) advance(st *sequenceState, next *seqNode, nowMs int64) sequenceResult {
	if next.action != nil && len(next.children) == 0 {
		e.active = nil
		return sequenceResult{matched: true, action: next.action}
	}
	st.node = next
	st.deadlineMs = nowMs + e.timeoutMs
	if next.action != nil {
		// Terminal node with further children (a prefix of a longer run):
		// spec.md doesn't define longest-match-wins tie-breaking explicitly,
		// so the shorter, already-complete run wins immediately, since
		// nothing distinguishes "done" from "could continue" otherwise.
		e.active = nil
		return sequenceResult{matched: true, action: next.action}
	}
	return sequenceResult{}
}

// tick expires the active sequence if its deadline has passed.
func (e *sequenceEngine) tick(nowMs int64) sequenceResult {
	if e.active == nil {
		return sequenceResult{}
	}
	if nowMs >= e.active.deadlineMs {
		e.active = nil
		return sequenceResult{aborted: true}
	}
	return sequenceResult{}
}

// reset cancels any in-progress sequence without reporting an abort (used
// on reload, per spec.md §3 "Lifecycle").
func (e *sequenceEngine) reset() {
	e.active = nil
}

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

import "fmt"

// Layer is one named row of the layer stack: a sparse map from defsrc
// OsCode to the Action bound on that layer (spec.md §3). A missing entry
// resolves as Transparent, matching how a real keymap's layer table leaves
// most keys unbound.
type Layer struct {
	Name    string
	Actions map[OsCode]Action
}

// Action returns the bound action for code, or Transparent if code has no
// binding on this layer.
func (l Layer) Action(code OsCode) Action {
	if a, ok := l.Actions[code]; ok {
		return a
	}
	return Transparent{}
}

// ChordGroup is a set of keys that, pressed within Timeout of each other,
// fire Action as a single virtual press (spec.md §3, §4.3).
type ChordGroup struct {
	ID        int
	Members   map[OsCode]struct{}
	TimeoutMs int64
	Action    Action
}

// Options carries the Keymap's global tunables (spec.md §3).
type Options struct {
	DefaultTapTimeoutMs  int64
	DefaultHoldTimeoutMs int64
	ChordTimeoutMs       int64
	SequenceTimeoutMs    int64
	// BacktrackModCancel: on an unmatched sequence step that used modifier
	// bits, retry once with plain bits before aborting (spec.md §4.4).
	BacktrackModCancel bool
	// ProcessUnmappedKeys: when false, OsCodes outside Defsrc are dropped by
	// the adapter and Transparent on the base layer resolves to NoOp for
	// codes outside Defsrc (spec.md §3 invariant 6).
	ProcessUnmappedKeys bool
	// Platform carries OS-specific flags the parser validated but the core
	// doesn't interpret itself (spec.md §3), e.g. a Linux device glob or a
	// Windows low-level-hook priority.
	Platform map[string]string
}

// DefaultOptions returns the Options a Keymap gets if the parser doesn't
// override them, matching the timeouts spec.md's scenarios assume.
func DefaultOptions() Options {
	return Options{
		DefaultTapTimeoutMs:  200,
		DefaultHoldTimeoutMs: 200,
		ChordTimeoutMs:       50,
		SequenceTimeoutMs:    1000,
		BacktrackModCancel:   false,
		ProcessUnmappedKeys:  true,
	}
}

// Keymap is the immutable parsed configuration (spec.md §3): the ordered
// source key list, the layer stack, chord groups, the sequence trie, the
// fake-key/alias table, and global options. Layers reference each other by
// index, never by pointer (spec.md §9), so a Keymap is trivially shareable
// across the Orchestrator and any reload.
type Keymap struct {
	Defsrc      []OsCode
	Layers      []Layer
	ChordGroups []ChordGroup
	// ZippyChords holds the keymap's zippy-chord groups: unlike ChordGroups,
	// a completed zippy chord fires immediately and never waits for its
	// members to be released (spec.md §2 "zippy-chord engine"). Left nil by
	// NewKeymap and populated separately so existing call sites that build a
	// Keymap without any zippy chords are unaffected.
	ZippyChords []ZippyChord
	Sequences   *SequenceTrie
	Aliases     map[string]OsCode
	Options     Options

	defsrcIndex map[OsCode]int
}

// NewKeymap builds a Keymap and indexes Defsrc for fast membership tests.
// It does not deep-copy its arguments; callers (the parser) are expected to
// hand over values they no longer mutate, preserving the "constructed once,
// never mutated" lifecycle of spec.md §3.
func NewKeymap(defsrc []OsCode, layers []Layer, chords []ChordGroup, seq *SequenceTrie, aliases map[string]OsCode, opts Options) (*Keymap, error) {
	km := &Keymap{
		Defsrc:      defsrc,
		Layers:      layers,
		ChordGroups: chords,
		Sequences:   seq,
		Aliases:     aliases,
		Options:     opts,
	}
	if err := km.index(); err != nil {
		return nil, err
	}
	return km, nil
}

func (km *Keymap) index() error {
	if len(km.Layers) == 0 {
		return fmt.Errorf("%w: keymap has no layers", ErrBadKeymap)
	}
	km.defsrcIndex = make(map[OsCode]int, len(km.Defsrc))
	for i, c := range km.Defsrc {
		if !c.Valid() {
			return fmt.Errorf("%w: defsrc entry %d out of range", ErrBadKeymap, c)
		}
		if _, dup := km.defsrcIndex[c]; dup {
			return fmt.Errorf("%w: defsrc entry %s duplicated", ErrBadKeymap, c)
		}
		km.defsrcIndex[c] = i
	}
	for _, l := range km.Layers {
		for code, act := range l.Actions {
			if la, ok := act.(LayerAction); ok {
				if la.Layer < 0 || la.Layer >= len(km.Layers) {
					return fmt.Errorf("%w: layer %q binds %s to out-of-range layer %d", ErrBadKeymap, l.Name, code, la.Layer)
				}
			}
		}
	}
	if km.Aliases == nil {
		km.Aliases = map[string]OsCode{}
	}
	return nil
}

// InDefsrc reports whether code is one of the keys this keymap intercepts,
// and its position in Defsrc.
func (km *Keymap) InDefsrc(code OsCode) (int, bool) {
	i, ok := km.defsrcIndex[code]
	return i, ok
}

// LayerIndex returns the index of the named layer, or -1 if there is none.
func (km *Keymap) LayerIndex(name string) int {
	for i, l := range km.Layers {
		if l.Name == name {
			return i
		}
	}
	return -1
}

// LayerNames returns the ordered list of layer names (spec.md §6,
// RequestLayerNames).
func (km *Keymap) LayerNames() []string {
	names := make([]string, len(km.Layers))
	for i, l := range km.Layers {
		names[i] = l.Name
	}
	return names
}

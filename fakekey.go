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

// fakeKeyRegistry resolves FakeKeyAction references through Keymap.Aliases
// and tracks per-name toggle state (spec.md §3's FakeKey action).
type fakeKeyRegistry struct {
	aliases map[string]OsCode
	toggled map[string]bool
}

func newFakeKeyRegistry(km *Keymap) *fakeKeyRegistry {
	return &fakeKeyRegistry{aliases: km.Aliases, toggled: map[string]bool{}}
}

// Resolve turns a FakeKeyAction into the OutputEvents it produces. An
// unknown Ref reports ErrUnknownFakeKey rather than silently doing nothing,
// since a binding referencing a missing alias is a configuration mistake the
// caller (a keymap binding, or RunFakeKeyOp over the control channel) should
// see rather than have swallowed.
func (r *fakeKeyRegistry) Resolve(a FakeKeyAction) ([]OutputEvent, error) {
	code, ok := r.aliases[a.Ref]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFakeKey, a.Ref)
	}
	switch a.Op {
	case FakeKeyPress:
		return []OutputEvent{KeyOut(code, Press)}, nil
	case FakeKeyRelease:
		return []OutputEvent{KeyOut(code, Release)}, nil
	case FakeKeyTap:
		return []OutputEvent{KeyOut(code, Press), KeyOut(code, Release)}, nil
	case FakeKeyToggle:
		r.toggled[a.Ref] = !r.toggled[a.Ref]
		if r.toggled[a.Ref] {
			return []OutputEvent{KeyOut(code, Press)}, nil
		}
		return []OutputEvent{KeyOut(code, Release)}, nil
	default:
		// FakeKeyDelay is meaningful only inside a Macro script (MacroDelay);
		// as a direct key binding it has nothing to delay, so it's a no-op.
		return nil, nil
	}
}

// Pressed reports whether the named fake key is currently toggled on.
func (r *fakeKeyRegistry) Pressed(ref string) bool {
	return r.toggled[ref]
}

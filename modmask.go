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

// ModMask is a bitmask of concurrently-held modifier keys, used by the
// sequence engine to set "modifier-high-bits" on recorded steps (spec.md
// §4.4), mirroring tcell's ModMask for terminal key events.
type ModMask uint8

const (
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// modMaskFor derives the modifier mask currently asserted from the set of
// physically-pressed OsCodes.
func modMaskFor(pressed map[OsCode]struct{}) ModMask {
	var m ModMask
	_, lshift := pressed[OsCodeLeftShift]
	_, rshift := pressed[OsCodeRightShift]
	if lshift || rshift {
		m |= ModShift
	}
	_, lctrl := pressed[OsCodeLeftCtrl]
	_, rctrl := pressed[OsCodeRightCtrl]
	if lctrl || rctrl {
		m |= ModCtrl
	}
	_, lalt := pressed[OsCodeLeftAlt]
	_, ralt := pressed[OsCodeRightAlt]
	if lalt || ralt {
		m |= ModAlt
	}
	_, lmeta := pressed[OsCodeLeftMeta]
	_, rmeta := pressed[OsCodeRightMeta]
	if lmeta || rmeta {
		m |= ModMeta
	}
	return m
}

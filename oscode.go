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

// OsCode is a platform-agnostic key/button identifier in [0, OsCodeMax).
// Every physical key and every supported virtual output (mouse button,
// media key, unicode sentinel, fake key) has a distinct OsCode. Adapters
// and sinks translate between OsCode and the host OS's native codes; the
// numbering here follows the Linux evdev keycode space (KEY_* in
// linux/input-event-codes.h) because it already enumerates exactly the
// domain spec.md §3 describes, and every adapter/sink, including non-Linux
// ones, is written against this numbering as its lingua franca.
type OsCode uint16

// OsCodeMax is the exclusive upper bound for a valid OsCode, per spec.md §3.
const OsCodeMax OsCode = 1024

// Standard key OsCodes, numbered identically to Linux evdev KEY_* codes.
const (
	OsCodeEsc OsCode = 1 + iota
	OsCode1
	OsCode2
	OsCode3
	OsCode4
	OsCode5
	OsCode6
	OsCode7
	OsCode8
	OsCode9
	OsCode0
	OsCodeMinus
	OsCodeEqual
	OsCodeBackspace
	OsCodeTab
	OsCodeQ
	OsCodeW
	OsCodeE
	OsCodeR
	OsCodeT
	OsCodeY
	OsCodeU
	OsCodeI
	OsCodeO
	OsCodeP
	OsCodeLeftBrace
	OsCodeRightBrace
	OsCodeEnter
	OsCodeLeftCtrl
	OsCodeA
	OsCodeS
	OsCodeD
	OsCodeF
	OsCodeG
	OsCodeH
	OsCodeJ
	OsCodeK
	OsCodeL
	OsCodeSemicolon
	OsCodeApostrophe
	OsCodeGrave
	OsCodeLeftShift
	OsCodeBackslash
	OsCodeZ
	OsCodeX
	OsCodeC
	OsCodeV
	OsCodeB
	OsCodeN
	OsCodeM
	OsCodeComma
	OsCodeDot
	OsCodeSlash
	OsCodeRightShift
	OsCodeKpAsterisk
	OsCodeLeftAlt
	OsCodeSpace
	OsCodeCapsLock
	OsCodeF1
	OsCodeF2
	OsCodeF3
	OsCodeF4
	OsCodeF5
	OsCodeF6
	OsCodeF7
	OsCodeF8
	OsCodeF9
	OsCodeF10
	OsCodeNumLock
	OsCodeScrollLock
)

// Remaining commonly used keys, numbered per their evdev KEY_* values.
const (
	OsCodeF11           OsCode = 87
	OsCodeF12           OsCode = 88
	OsCodeRightCtrl     OsCode = 97
	OsCodeRightAlt      OsCode = 100
	OsCodeHome          OsCode = 102
	OsCodeUp            OsCode = 103
	OsCodePageUp        OsCode = 104
	OsCodeLeft          OsCode = 105
	OsCodeRight         OsCode = 106
	OsCodeEnd           OsCode = 107
	OsCodeDown          OsCode = 108
	OsCodePageDown      OsCode = 109
	OsCodeInsert        OsCode = 110
	OsCodeDelete        OsCode = 111
	OsCodeLeftMeta      OsCode = 125
	OsCodeRightMeta     OsCode = 126
	OsCodeCompose       OsCode = 127
)

// Virtual OsCodes: mouse buttons, scroll axes, and an opaque unicode
// sentinel, reserved at the top of the OsCode space so they never collide
// with a physical keycode (spec.md §3: "every supported virtual output...
// has a distinct OsCode").
const (
	OsCodeMouseLeft OsCode = 900 + iota
	OsCodeMouseRight
	OsCodeMouseMiddle
	OsCodeMouseButton4
	OsCodeMouseButton5
	OsCodeMouseScrollUp
	OsCodeMouseScrollDown
	OsCodeMouseScrollLeft
	OsCodeMouseScrollRight
	OsCodeUnicodeSentinel
)

// osCodeNames gives String() a human name for the keys most often seen in
// keymaps and test failures; codes outside this table print numerically.
var osCodeNames = map[OsCode]string{
	OsCodeEsc: "esc", OsCodeTab: "tab", OsCodeBackspace: "bksp",
	OsCodeEnter: "ret", OsCodeLeftCtrl: "lctl", OsCodeRightCtrl: "rctl",
	OsCodeLeftShift: "lsft", OsCodeRightShift: "rsft",
	OsCodeLeftAlt: "lalt", OsCodeRightAlt: "ralt",
	OsCodeLeftMeta: "lmet", OsCodeRightMeta: "rmet",
	OsCodeSpace: "spc", OsCodeCapsLock: "caps",
	OsCodeA: "a", OsCodeB: "b", OsCodeC: "c", OsCodeD: "d", OsCodeE: "e",
	OsCodeF: "f", OsCodeG: "g", OsCodeH: "h", OsCodeI: "i", OsCodeJ: "j",
	OsCodeK: "k", OsCodeL: "l", OsCodeM: "m", OsCodeN: "n", OsCodeO: "o",
	OsCodeP: "p", OsCodeQ: "q", OsCodeR: "r", OsCodeS: "s", OsCodeT: "t",
	OsCodeU: "u", OsCodeV: "v", OsCodeW: "w", OsCodeX: "x", OsCodeY: "y",
	OsCodeZ: "z",
	OsCodeMouseLeft: "mlft", OsCodeMouseRight: "mrgt", OsCodeMouseMiddle: "mmid",
	OsCodeUnicodeSentinel: "unicode",
}

// String renders a human-readable key name, falling back to a numeric form
// for codes keylayer doesn't have a short name for.
func (c OsCode) String() string {
	if name, ok := osCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("oscode(%d)", uint16(c))
}

// Valid reports whether c is within the legal OsCode range.
func (c OsCode) Valid() bool {
	return c < OsCodeMax
}

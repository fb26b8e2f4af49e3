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

import (
	"context"
	"time"

	"github.com/pkg/term"
)

// ttyByteCode maps the handful of bytes a raw terminal can actually deliver
// to an OsCode, for driving a Keymap from an interactive shell without any
// platform device permissions. It is deliberately small: enough to poke at
// letters, digits, and a few control keys while testing a keymap, not a
// full terminal-input decoder (that job belongs to a real platform adapter,
// not this one).
var ttyByteCode = map[byte]OsCode{
	'\r': OsCodeEnter, '\n': OsCodeEnter,
	'\t': OsCodeTab, 0x7f: OsCodeBackspace, 0x1b: OsCodeEsc,
	' ': OsCodeSpace,
	'a': OsCodeA, 'b': OsCodeB, 'c': OsCodeC, 'd': OsCodeD, 'e': OsCodeE,
	'f': OsCodeF, 'g': OsCodeG, 'h': OsCodeH, 'i': OsCodeI, 'j': OsCodeJ,
	'k': OsCodeK, 'l': OsCodeL, 'm': OsCodeM, 'n': OsCodeN, 'o': OsCodeO,
	'p': OsCodeP, 'q': OsCodeQ, 'r': OsCodeR, 's': OsCodeS, 't': OsCodeT,
	'u': OsCodeU, 'v': OsCodeV, 'w': OsCodeW, 'x': OsCodeX, 'y': OsCodeY,
	'z': OsCodeZ,
}

// TTYAdapter is a dev-mode InputAdapter that reads a raw-mode tty
// and turns each byte into an immediate press/release pair, since a
// terminal never reports key-up. Grounded on tcell's own reliance on
// github.com/pkg/term for a non-/dev/tty POSIX backend (driver.go's
// TermDriver indirection); used here for local testing of a keymap without
// the permissions a real evdev/uinput or OS hook adapter needs.
type TTYAdapter struct {
	t     *term.Term
	start time.Time
	evch  chan InputEvent
	devch chan DeviceEvent
}

// NewTTYAdapter opens path (commonly "/dev/tty") in raw mode.
func NewTTYAdapter(path string) (*TTYAdapter, error) {
	t, err := term.Open(path, term.RawMode)
	if err != nil {
		return nil, err
	}
	return &TTYAdapter{
		t:     t,
		start: time.Now(),
		evch:  make(chan InputEvent, 64),
		devch: make(chan DeviceEvent, 1),
	}, nil
}

func (a *TTYAdapter) Events() <-chan InputEvent       { return a.evch }
func (a *TTYAdapter) DeviceEvents() <-chan DeviceEvent { return a.devch }

func (a *TTYAdapter) Run(ctx context.Context) error {
	a.devch <- DeviceEvent{Source: "tty", Attached: true}
	defer func() { a.devch <- DeviceEvent{Source: "tty", Attached: false} }()

	buf := make([]byte, 16)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		n, err := a.t.Read(buf)
		if err != nil {
			return err
		}
		for _, b := range buf[:n] {
			code, ok := ttyByteCode[b]
			if !ok {
				continue
			}
			tsMs := time.Since(a.start).Milliseconds()
			select {
			case a.evch <- InputEvent{Code: code, Dir: Press, TsMs: tsMs, Source: "tty"}:
			case <-ctx.Done():
				return nil
			}
			select {
			case a.evch <- InputEvent{Code: code, Dir: Release, TsMs: tsMs + 1, Source: "tty"}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (a *TTYAdapter) Close() error {
	a.t.Restore()
	return a.t.Close()
}

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

//go:build darwin

package keylayer

import (
	"context"
	"errors"
)

// DarwinAdapter is the macOS input side of spec.md §4.6: a CGEventTap
// listening for kCGEventKeyDown/kCGEventKeyUp, run on a CFRunLoop owned by
// its own goroutine. Building the actual tap needs CGo bindings to
// ApplicationServices/CoreGraphics that no example in this codebase's
// lineage supplies in complete, teacher-quality form (unlike the Linux
// evdev path, grounded on andrieee44-mylib, or the Windows low-level-hook
// path, grounded on tcell's own Win32 console calls) — so this stays a
// real, buildable stub documenting exactly the syscalls a full
// implementation would add, rather than a fabricated CGo binding nobody
// has verified.
type DarwinAdapter struct{}

// NewDarwinAdapter returns a DarwinAdapter. Run always fails until the
// CGEventTap bridge described above is implemented.
func NewDarwinAdapter() *DarwinAdapter { return &DarwinAdapter{} }

func (a *DarwinAdapter) Events() <-chan InputEvent       { return nil }
func (a *DarwinAdapter) DeviceEvents() <-chan DeviceEvent { return nil }

func (a *DarwinAdapter) Run(ctx context.Context) error {
	return errors.New("keylayer: darwin input adapter requires a CGEventTap bridge, not yet implemented")
}

func (a *DarwinAdapter) Close() error { return nil }

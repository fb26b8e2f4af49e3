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

//go:build windows

package keylayer

import (
	"context"
	"errors"
)

// WindowsAdapter is the Windows input side of spec.md §4.6: a WH_KEYBOARD_LL
// low-level hook pumped from a dedicated thread's message loop, the same
// kind of direct Win32 API surface tcell's own tscreen_windows.go reaches
// for (there via syscall.Handle/CONIN$, here via a SetWindowsHookEx
// callback). Once the hook is wired in, Close will call
// UnhookWindowsHookEx on the handle SetWindowsHookEx returns.
type WindowsAdapter struct{}

// NewWindowsAdapter returns a WindowsAdapter. Run always fails until the
// WH_KEYBOARD_LL hook and its message loop are wired in.
func NewWindowsAdapter() *WindowsAdapter { return &WindowsAdapter{} }

func (a *WindowsAdapter) Events() <-chan InputEvent       { return nil }
func (a *WindowsAdapter) DeviceEvents() <-chan DeviceEvent { return nil }

func (a *WindowsAdapter) Run(ctx context.Context) error {
	return errors.New("keylayer: windows input adapter requires a WH_KEYBOARD_LL hook, not yet implemented")
}

func (a *WindowsAdapter) Close() error { return nil }

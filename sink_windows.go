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

import "errors"

// WindowsSink is the Windows output side of spec.md §4.7: synthesizing key
// and mouse input via SendInput. Like WindowsAdapter, this stays a stub
// until the SendInput bridge is implemented; see adapter_windows.go.
type WindowsSink struct{}

// NewWindowsSink returns a WindowsSink. Write always fails until the
// SendInput bridge is implemented.
func NewWindowsSink() *WindowsSink { return &WindowsSink{} }

func (s *WindowsSink) Write(ev OutputEvent) error {
	return errors.New("keylayer: windows output sink requires a SendInput bridge, not yet implemented")
}

func (s *WindowsSink) Close() error { return nil }

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

import "errors"

// DarwinSink is the macOS output side of spec.md §4.7: synthesizing key and
// mouse events via CGEventCreateKeyboardEvent/CGEventPost. Like
// DarwinAdapter, this stays a stub until a verified CGo bridge exists; see
// adapter_darwin.go for why.
type DarwinSink struct{}

// NewDarwinSink returns a DarwinSink. Write always fails until the
// CGEventPost bridge is implemented.
func NewDarwinSink() *DarwinSink { return &DarwinSink{} }

func (s *DarwinSink) Write(ev OutputEvent) error {
	return errors.New("keylayer: darwin output sink requires a CGEventPost bridge, not yet implemented")
}

func (s *DarwinSink) Close() error { return nil }

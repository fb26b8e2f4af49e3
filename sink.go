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
	"golang.org/x/text/unicode/norm"
)

// OutputSink accepts synthetic key/mouse events and writes them to the OS
// virtual device (spec.md §4.7). Write must never reorder a release before
// its matching press; a failure is reported to the caller, which logs and
// drops rather than crashing the Orchestrator loop (spec.md §4.1 "Failure
// model").
type OutputSink interface {
	Write(ev OutputEvent) error
	Close() error
}

// ComposeUnicode is a platform-independent fallback for an OutputSink that
// cannot inject a code point directly (none of the sinks in this package
// call it; LinuxSink uses its CP437 fallback instead): it decomposes r
// to NFD (base rune plus combining marks) so a layout that only has a
// dead-key sequence for the accent, not the precomposed letter itself, can
// still type it as a sequence of taps. Grounded on the teacher's
// charset-fallback layering in gdamore/encoding, applied here to Unicode
// composition instead of legacy 8-bit charsets.
func ComposeUnicode(r rune) []rune {
	decomposed := norm.NFD.String(string(r))
	out := make([]rune, 0, len(decomposed))
	for _, rr := range decomposed {
		out = append(out, rr)
	}
	if len(out) == 0 {
		return []rune{r}
	}
	return out
}

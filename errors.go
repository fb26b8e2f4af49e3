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

import "errors"

// Sentinel errors, per spec.md §7's error table. Each corresponds to a row
// in that table; see the comment above each for the propagation policy.
var (
	// ErrNoDevice indicates an Input Adapter could not open any device at
	// startup. Fatal: spec.md §6 "Process exit codes" ties this to a
	// non-zero exit.
	ErrNoDevice = errors.New("keylayer: no input device could be opened")

	// ErrNoCharset indicates the locale's charset has no registered
	// encoding, so an OutputSink cannot compose a legacy-charset fallback
	// for Unicode emission and must drop the code point.
	ErrNoCharset = errors.New("keylayer: character set not supported")

	// ErrEventQFull indicates the bounded input queue is full. The overflow
	// policy (spec.md §4.1) is drop-newest except releases, which are never
	// dropped; this error is informational/logged, never fatal.
	ErrEventQFull = errors.New("keylayer: input queue full")

	// ErrUnknownLayer is returned by ChangeLayer for an unrecognized layer
	// name (spec.md §6, control channel).
	ErrUnknownLayer = errors.New("keylayer: unknown layer")

	// ErrBadKeymap is returned by Reload when the supplied Keymap is nil or
	// fails validation; the orchestrator keeps the old Keymap (spec.md §7).
	ErrBadKeymap = errors.New("keylayer: invalid keymap")

	// ErrUnknownFakeKey is returned by FakeKeyOp for an alias not present
	// in the keymap's alias table.
	ErrUnknownFakeKey = errors.New("keylayer: unknown fake key")

	// ErrShuttingDown is returned by SubmitCommand/SubmitInput once the
	// orchestrator has begun shutdown.
	ErrShuttingDown = errors.New("keylayer: orchestrator is shutting down")
)

// SinkError wraps a failed Output Sink write. Per spec.md §7 ("Sink-write")
// the orchestrator logs and drops on this error; it never propagates as a
// panic or a control-channel Error{} response.
type SinkError struct {
	Event OutputEvent
	Err   error
}

func (e *SinkError) Error() string {
	return "keylayer: output sink write failed for " + e.Event.String() + ": " + e.Err.Error()
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

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
	"errors"
	"sync"
)

// SimAdapter is an in-process InputAdapter driven entirely by test code
// rather than an OS device, grounded on the teacher's own
// NewSimulationScreen/InjectKey pattern: the same "inject synthetic events
// on a channel a real backend would otherwise own" technique, applied here
// to raw key/mouse events instead of terminal escape sequences.
type SimAdapter struct {
	mu      sync.Mutex
	evch    chan InputEvent
	devch   chan DeviceEvent
	closed  bool
	started bool
}

// NewSimAdapter returns a SimAdapter ready to accept injected events.
func NewSimAdapter() *SimAdapter {
	return &SimAdapter{
		evch:  make(chan InputEvent, 128),
		devch: make(chan DeviceEvent, 8),
	}
}

func (s *SimAdapter) Run(ctx context.Context) error {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	<-ctx.Done()
	return nil
}

func (s *SimAdapter) Events() <-chan InputEvent { return s.evch }

func (s *SimAdapter) DeviceEvents() <-chan DeviceEvent { return s.devch }

func (s *SimAdapter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.evch)
		close(s.devch)
	}
	return nil
}

// InjectKey posts a single key event as though it came from the OS, at the
// given millisecond timestamp. It is safe to call before Run: the channel
// is buffered, so a test can queue a whole scenario up front.
func (s *SimAdapter) InjectKey(code OsCode, dir Direction, tsMs int64) {
	s.evch <- InputEvent{Code: code, Dir: dir, TsMs: tsMs}
}

// InjectDevice posts a connectivity transition (SPEC_FULL.md §6).
func (s *SimAdapter) InjectDevice(source string, attached bool) {
	s.devch <- DeviceEvent{Source: source, Attached: attached}
}

// SimSink is an in-process OutputSink that records every event it receives
// instead of writing to a real virtual device, grounded on the teacher's
// SimulationScreen.GetContents(): both exist so a test can assert on final
// state without a real backend.
type SimSink struct {
	mu     sync.Mutex
	events []OutputEvent
	failAt int // index at which Write starts returning an error; -1 disables
}

// NewSimSink returns an empty SimSink.
func NewSimSink() *SimSink {
	return &SimSink{failAt: -1}
}

var errSimWriteFailure = errors.New("simulated sink write failure")

func (s *SimSink) Write(ev OutputEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt >= 0 && len(s.events) >= s.failAt {
		return &SinkError{Event: ev, Err: errSimWriteFailure}
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *SimSink) Close() error { return nil }

// FailAfter lets the first n Writes succeed and makes every later one
// report an error,
// for exercising the Orchestrator's flush failure-logging path.
func (s *SimSink) FailAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt = n
}

// Events returns a copy of every event accepted so far, in write order.
func (s *SimSink) Events() []OutputEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]OutputEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Reset clears recorded events, for reuse across subtests.
func (s *SimSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

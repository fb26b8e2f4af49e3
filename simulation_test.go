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
	"errors"
	"testing"
)

func TestSimSinkRecordsInOrder(t *testing.T) {
	sink := NewSimSink()
	if err := sink.Write(KeyOut(OsCodeA, Press)); err != nil {
		t.Fatalf("write 1: %v", err)
	}
	if err := sink.Write(KeyOut(OsCodeA, Release)); err != nil {
		t.Fatalf("write 2: %v", err)
	}
	got := sink.Events()
	if len(got) != 2 || got[0].Code != OsCodeA || got[0].Dir != Press || got[1].Dir != Release {
		t.Fatalf("unexpected events: %+v", got)
	}
}

func TestSimSinkFailAfter(t *testing.T) {
	sink := NewSimSink()
	sink.FailAfter(1)
	if err := sink.Write(KeyOut(OsCodeA, Press)); err != nil {
		t.Fatalf("first write should succeed: %v", err)
	}
	err := sink.Write(KeyOut(OsCodeA, Release))
	if err == nil {
		t.Fatal("expected second write to fail")
	}
	var sinkErr *SinkError
	if !errors.As(err, &sinkErr) {
		t.Fatalf("expected *SinkError, got %T", err)
	}
}

func TestSimAdapterInjectKey(t *testing.T) {
	a := NewSimAdapter()
	a.InjectKey(OsCodeA, Press, 10)
	a.InjectKey(OsCodeA, Release, 20)
	ev1 := <-a.Events()
	ev2 := <-a.Events()
	if ev1.Code != OsCodeA || ev1.Dir != Press || ev1.TsMs != 10 {
		t.Fatalf("unexpected first event: %+v", ev1)
	}
	if ev2.Dir != Release || ev2.TsMs != 20 {
		t.Fatalf("unexpected second event: %+v", ev2)
	}
}

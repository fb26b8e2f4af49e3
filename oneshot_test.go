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

import "testing"

func TestOneShotEndsOnFirstRelease(t *testing.T) {
	spec := OneShot{Inner: KeyCode{Code: OsCodeLeftShift}, TimeoutMs: 1000}
	st := newOneShotState(spec, OsCodeCapsLock, 0)
	st.onSelfRelease()
	if !st.otherKeyRelease() {
		t.Fatalf("got false, want the default end policy to end on another key's release")
	}
	if st.otherKeyPress() {
		t.Fatalf("got true, want OnFirstRelease to not end on a mere press")
	}
}

func TestOneShotEndsOnFirstPress(t *testing.T) {
	spec := OneShot{Inner: KeyCode{Code: OsCodeLeftShift}, TimeoutMs: 1000, EndPolicy: OneShotEndOnFirstPress}
	st := newOneShotState(spec, OsCodeCapsLock, 0)
	st.onSelfRelease()
	if !st.otherKeyPress() {
		t.Fatalf("got false, want OnFirstPress to end on another key's press")
	}
}

func TestOneShotNotAwaitingCycleDoesNotEnd(t *testing.T) {
	spec := OneShot{Inner: KeyCode{Code: OsCodeLeftShift}, TimeoutMs: 1000}
	st := newOneShotState(spec, OsCodeCapsLock, 0)
	if st.otherKeyRelease() {
		t.Fatalf("got true before onSelfRelease, want the one-shot to not be asserted yet")
	}
}

func TestOneShotRepressExtendsOnlyUnderRepressPolicy(t *testing.T) {
	spec := OneShot{Inner: KeyCode{Code: OsCodeLeftShift}, TimeoutMs: 100, EndPolicy: OneShotEndOnFirstPressOrRepress}
	st := newOneShotState(spec, OsCodeCapsLock, 0)
	if !st.onRepress(50) {
		t.Fatalf("got false, want OnFirstPressOrRepress to extend the window on re-press")
	}
	if st.deadlineMs != 150 {
		t.Fatalf("got deadline %d, want it pushed to 150", st.deadlineMs)
	}

	spec2 := OneShot{Inner: KeyCode{Code: OsCodeLeftShift}, TimeoutMs: 100, EndPolicy: OneShotEndOnFirstRelease}
	st2 := newOneShotState(spec2, OsCodeCapsLock, 0)
	if st2.onRepress(50) {
		t.Fatalf("got true, want the default policy to not extend on re-press")
	}
}

func TestOneShotExpiry(t *testing.T) {
	spec := OneShot{Inner: KeyCode{Code: OsCodeLeftShift}, TimeoutMs: 100}
	st := newOneShotState(spec, OsCodeCapsLock, 0)
	if st.expired(50) {
		t.Fatalf("got true at 50ms, want not yet expired against a 100ms timeout")
	}
	if !st.expired(100) {
		t.Fatalf("got false at the deadline, want expired")
	}
}

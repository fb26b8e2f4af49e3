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

// oneShotState tracks the single in-flight OneShot assertion a StateMachine
// may have active at a time (spec.md §4.2 "OneShot"). Only one can be
// active: a second OneShot press while one is already asserted is handled by
// end_policy's re-press rule rather than stacking a second instance.
type oneShotState struct {
	spec       OneShot
	origin     OsCode
	deadlineMs int64
	// awaitingCycle becomes true once the one-shot's own press/release has
	// completed and it is now asserted, waiting for the next qualifying
	// physical cycle (or timeout, or re-press) to end it.
	awaitingCycle bool
}

func newOneShotState(spec OneShot, origin OsCode, nowMs int64) *oneShotState {
	return &oneShotState{spec: spec, origin: origin, deadlineMs: nowMs + spec.TimeoutMs}
}

// onSelfRelease marks the one-shot key's own release, which begins the
// assertion window (the inner action's press was already emitted on the
// one-shot key's own press, in the OneShot case of HandlePress in
// state_machine.go).
func (st *oneShotState) onSelfRelease() {
	st.awaitingCycle = true
}

// onRepress reports whether a fresh press of the same OneShot origin should
// extend the window (end_policy == OneShotEndOnFirstPressOrRepress) rather
// than end it.
func (st *oneShotState) onRepress(nowMs int64) (extend bool) {
	if st.spec.EndPolicy == OneShotEndOnFirstPressOrRepress {
		st.deadlineMs = nowMs + st.spec.TimeoutMs
		return true
	}
	return false
}

// otherKeyPress reports whether an unrelated physical key press should end
// this one-shot, per end_policy.
func (st *oneShotState) otherKeyPress() bool {
	return st.awaitingCycle && st.spec.EndPolicy == OneShotEndOnFirstPress
}

// otherKeyRelease reports whether an unrelated physical key release should
// end this one-shot, per end_policy (the default policy).
func (st *oneShotState) otherKeyRelease() bool {
	return st.awaitingCycle && st.spec.EndPolicy == OneShotEndOnFirstRelease
}

// expired reports whether the timeout has elapsed.
func (st *oneShotState) expired(nowMs int64) bool {
	return nowMs >= st.deadlineMs
}

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

// tapHoldPhase is the per-key tap-hold FSM state of spec.md §4.2's state
// table (WaitingTH / HeldAsHold collapse into one tracked struct here; the
// Idle/AssertedSimple rows need no dedicated state since they are handled
// directly by StateMachine).
type tapHoldPhase uint8

const (
	thWaiting tapHoldPhase = iota
	thHeld
)

// tapHoldState tracks one in-flight TapHold resolution.
type tapHoldState struct {
	spec      TapHold
	phase     tapHoldPhase
	pressTsMs int64
	origin    OsCode
}

func newTapHoldState(spec TapHold, origin OsCode, nowMs int64) *tapHoldState {
	return &tapHoldState{spec: spec, phase: thWaiting, pressTsMs: nowMs, origin: origin}
}

// tapTimeoutMs/holdTimeoutMs fall back to the Keymap defaults when the
// action left them unset (spec.md §3, TapHold fields are overrides).
func (st *tapHoldState) tapTimeoutMs(km *Keymap) int64 {
	if st.spec.TapTimeoutMs > 0 {
		return st.spec.TapTimeoutMs
	}
	return km.Options.DefaultTapTimeoutMs
}

func (st *tapHoldState) holdTimeoutMs(km *Keymap) int64 {
	if st.spec.HoldTimeoutMs > 0 {
		return st.spec.HoldTimeoutMs
	}
	return km.Options.DefaultHoldTimeoutMs
}

// thOutcome reports the effect of feeding one event into the tap-hold FSM.
// A release always ends the cycle, so callers don't need a separate "done"
// flag; they act on resolved/asHold and then drop their tracking record.
type thOutcome struct {
	resolved bool
	asHold   bool
}

// onOtherPress applies the hold-on-other-press trigger (spec.md §4.2). other
// is the OsCode of the interfering physical press.
func (st *tapHoldState) onOtherPress(km *Keymap, other OsCode, nowMs int64) thOutcome {
	if st.phase != thWaiting {
		return thOutcome{}
	}
	if nowMs < st.pressTsMs {
		return thOutcome{}
	}
	if st.spec.Policy != TapHoldHoldOnOtherPress && st.spec.Policy != TapHoldExceptKeys {
		return thOutcome{}
	}
	if nowMs >= st.pressTsMs+st.tapTimeoutMs(km) {
		return thOutcome{}
	}
	if st.spec.Policy == TapHoldExceptKeys {
		if _, excepted := st.spec.ExceptKeys[other]; excepted {
			return thOutcome{}
		}
	}
	st.phase = thHeld
	return thOutcome{resolved: true, asHold: true}
}

// onTick applies the hold-timeout trigger.
func (st *tapHoldState) onTick(km *Keymap, nowMs int64) thOutcome {
	if st.phase != thWaiting {
		return thOutcome{}
	}
	if nowMs >= st.pressTsMs+st.holdTimeoutMs(km) {
		st.phase = thHeld
		return thOutcome{resolved: true, asHold: true}
	}
	return thOutcome{}
}

// onRelease applies the tap/release-policy resolution to a release of the
// origin key. If the tap-hold already resolved as hold, it returns an
// unresolved outcome; otherwise it reports a tap or (under TapHoldRelease,
// past the tap window) a hold.
func (st *tapHoldState) onRelease(km *Keymap, nowMs int64) thOutcome {
	if st.phase == thHeld {
		return thOutcome{}
	}
	tapDeadline := st.pressTsMs + st.tapTimeoutMs(km)
	if st.spec.Policy == TapHoldRelease && nowMs >= tapDeadline {
		return thOutcome{resolved: true, asHold: true}
	}
	// Release before the tap window, or past it under every other policy
	// with no hold condition having fired: resolves as tap (spec.md §4.2
	// "Resolve to tap when k is released before t+tap_timeout_ms and no
	// hold condition has fired"; a late release under the default policy
	// falls back to tap since nothing else would ever resolve it).
	return thOutcome{resolved: true, asHold: false}
}

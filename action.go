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

// Action describes what one source key does on one layer (spec.md §3). It
// is a small closed set of variants, each its own struct with a marker
// method, the same shape tcell uses for its Event family (EventKey,
// EventMouse, EventResize, ...) rather than one large discriminated union.
type Action interface {
	isAction()
}

// KeyCode emits a single key on press, releases it on release.
type KeyCode struct {
	Code OsCode
}

func (KeyCode) isAction() {}

// MultiKeyCode presses a set of keys in order on press, and releases them
// in reverse order on release.
type MultiKeyCode struct {
	Codes []OsCode
}

func (MultiKeyCode) isAction() {}

// LayerMode selects how a LayerAction's layer reference is applied.
type LayerMode uint8

const (
	// LayerWhileHeld pushes the layer on press, pops this specific push on
	// release.
	LayerWhileHeld LayerMode = iota
	// LayerToggle flips the layer's presence on the active stack; idempotent
	// on re-toggle.
	LayerToggle
	// LayerSwitchBase moves the base-layer cursor; does not touch the stack.
	LayerSwitchBase
	// LayerTapToggle toggles on tap, behaves as LayerWhileHeld on hold.
	LayerTapToggle
)

// LayerAction switches the active layer stack or base cursor. Layer is an
// index into Keymap.Layers, never a pointer, so a Keymap stays an
// immutable, trivially shareable value even with layers that reference each
// other (spec.md §9).
type LayerAction struct {
	Layer int
	Mode  LayerMode
}

func (LayerAction) isAction() {}

// TapHoldPolicy selects how a TapHold resolves the hold condition early,
// per spec.md §4.2.
type TapHoldPolicy uint8

const (
	// TapHoldDefault resolves to hold only via the hold timeout.
	TapHoldDefault TapHoldPolicy = iota
	// TapHoldPress is a distinct policy value that taphold.go resolves
	// exactly like TapHoldDefault (hold only via the hold timeout).
	TapHoldPress
	// TapHoldRelease resolves to hold if k is released after tap_timeout_ms
	// (instead of tap).
	TapHoldRelease
	// TapHoldExceptKeys is TapHoldHoldOnOtherPress, but the trigger is
	// suppressed for keys in ExceptKeys.
	TapHoldExceptKeys
	// TapHoldHoldOnOtherPress resolves to hold as soon as any other
	// physical key is pressed before the tap window closes.
	TapHoldHoldOnOtherPress
)

// TapHold is a key that resolves differently depending on whether it was
// tapped or held past a threshold (spec.md §3, §4.2).
type TapHold struct {
	Tap           Action
	Hold          Action
	TapTimeoutMs  int64
	HoldTimeoutMs int64
	Policy        TapHoldPolicy
	// ExceptKeys suppresses the hold-on-other-press trigger when the
	// interfering key is in this set; only consulted when Policy is
	// TapHoldExceptKeys.
	ExceptKeys map[OsCode]struct{}
}

func (TapHold) isAction() {}

// TapDance picks the Nth action in Steps according to how many taps of the
// source key land within Timeout of each other (spec.md §3).
type TapDance struct {
	Steps     []Action
	TimeoutMs int64
}

func (TapDance) isAction() {}

// OneShotEndPolicy selects when a OneShot's asserted inner action ends,
// per spec.md §3 and §4.2.
type OneShotEndPolicy uint8

const (
	// OneShotEndOnFirstRelease ends when a non-oneshot key is released after
	// the one-shot key's own release; the released key need not have been
	// pressed while the one-shot was active.
	OneShotEndOnFirstRelease OneShotEndPolicy = iota
	// OneShotEndOnFirstPress ends as soon as the next non-oneshot key is
	// pressed.
	OneShotEndOnFirstPress
	// OneShotEndOnFirstPressOrRepress is like OneShotEndOnFirstPress, but a
	// re-press of the same one-shot key extends the active window instead
	// of ending it.
	OneShotEndOnFirstPressOrRepress
)

// OneShot asserts Inner until the next key cycle completes (per EndPolicy)
// or TimeoutMs elapses, whichever comes first (spec.md §3, §4.2).
type OneShot struct {
	Inner     Action
	TimeoutMs int64
	EndPolicy OneShotEndPolicy
}

func (OneShot) isAction() {}

// MacroAtomKind selects which field of a MacroAtom is populated.
type MacroAtomKind uint8

const (
	MacroPress MacroAtomKind = iota
	MacroRelease
	MacroTap
	MacroDelay
	MacroUnicode
	MacroMouse
)

// MacroAtom is one instruction of a Macro script (spec.md §4.5).
type MacroAtom struct {
	Kind    MacroAtomKind
	Code    OsCode      // MacroPress, MacroRelease, MacroTap
	DelayMs int64       // MacroDelay
	Rune    rune        // MacroUnicode
	Mouse   OutputEvent // MacroMouse; Kind must be one of the Out* mouse kinds
}

// Macro is a finite program of press/release/tap/delay/unicode/mouse atoms
// (spec.md §3, §4.5).
type Macro struct {
	Script []MacroAtom
	// CleanupOnComplete, when true, emits releases for any key the macro
	// left pressed once its script is exhausted (spec.md §4.5's "optional
	// cleanup pass configurable per macro").
	CleanupOnComplete bool
}

func (Macro) isAction() {}

// Sequence enters sequence/leader mode; subsequent key presses are matched
// against the owning Keymap's SequenceTrie (spec.md §3, §4.4).
type Sequence struct {
	// Name identifies this leader for diagnostics; lookup itself always
	// starts at the Keymap's single shared trie root.
	Name string
}

func (Sequence) isAction() {}

// Unicode emits a single Unicode code point.
type Unicode struct {
	Rune rune
}

func (Unicode) isAction() {}

// MouseButtonAction presses/releases a mouse button, following the same
// press/release semantics as KeyCode.
type MouseButtonAction struct {
	Button MouseButton
}

func (MouseButtonAction) isAction() {}

// MouseMoveAction emits a relative pointer move on press.
type MouseMoveAction struct {
	DX, DY int32
}

func (MouseMoveAction) isAction() {}

// MouseScrollAction emits a scroll tick on press.
type MouseScrollAction struct {
	Axis  ScrollAxis
	Ticks int32
}

func (MouseScrollAction) isAction() {}

// FakeKeyOp is the operation a FakeKeyAction (or a FakeKeyOp control
// command) applies to a named virtual key.
type FakeKeyOp uint8

const (
	FakeKeyPress FakeKeyOp = iota
	FakeKeyRelease
	FakeKeyTap
	FakeKeyToggle
	FakeKeyDelay
)

// FakeKeyAction drives a named virtual key (spec.md §3; the name is
// resolved through Keymap.Aliases).
type FakeKeyAction struct {
	Ref     string
	Op      FakeKeyOp
	DelayMs int64 // carried with Op == FakeKeyDelay; the fake-key registry treats that op as a no-op and does not read it
}

func (FakeKeyAction) isAction() {}

// CustomAction is an opaque side effect executed by the orchestrator
// itself (e.g. reload, layer query). It exists as a type regardless of
// build configuration, but the state machine only ever dispatches it when
// customActionsEnabled is true (see custom_enabled.go/custom_disabled.go) —
// spec.md §3's "gated behind a compile-time flag".
type CustomAction struct {
	Cmd string
}

func (CustomAction) isAction() {}

// Transparent falls through to the next-lower active layer; on the base
// layer it resolves to the defsrc key (or NoOp, if the key is outside
// defsrc and unmapped-key processing is disabled) per spec.md §3 invariant 6.
type Transparent struct{}

func (Transparent) isAction() {}

// NoOp does nothing on press or release.
type NoOp struct{}

func (NoOp) isAction() {}

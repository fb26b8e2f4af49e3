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
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Command is a control-channel request handled by the Orchestrator loop
// (spec.md §4.1 step 3). It is a closed variant set, the same shape as
// Action.
type Command interface {
	isCommand()
}

// ChangeLayer moves the base-layer cursor by name.
type ChangeLayer struct{ Name string }

func (ChangeLayer) isCommand() {}

// RequestLayerNames asks for every configured layer's name, in order.
type RequestLayerNames struct{}

func (RequestLayerNames) isCommand() {}

// RequestCurrentLayerName asks for the name of the current base layer.
type RequestCurrentLayerName struct{}

func (RequestCurrentLayerName) isCommand() {}

// RequestCurrentLayerInfo asks for a formatted summary of the current base
// layer's bindings, column-aligned for a fixed-width terminal or remote
// console (spec.md's remote-control transport is out of scope for the core,
// but the core still has to produce this string for it to display).
type RequestCurrentLayerInfo struct{}

func (RequestCurrentLayerInfo) isCommand() {}

// Reload installs NewKeymap as described in spec.md §4.1's reload sequence.
type Reload struct{ NewKeymap *Keymap }

func (Reload) isCommand() {}

// ReloadNext/ReloadPrev/ReloadNum/ReloadFile name a keymap by relative or
// absolute position in a list the parser/transport owns; the core doesn't
// resolve the name itself, it just carries the already-resolved Keymap the
// same as Reload. They exist as distinct types purely so a remote-control
// transport's intent survives into logs and Response values.
type ReloadNext struct{ NewKeymap *Keymap }

func (ReloadNext) isCommand() {}

type ReloadPrev struct{ NewKeymap *Keymap }

func (ReloadPrev) isCommand() {}

type ReloadNum struct {
	Index     int
	NewKeymap *Keymap
}

func (ReloadNum) isCommand() {}

type ReloadFile struct {
	Path      string
	NewKeymap *Keymap
}

func (ReloadFile) isCommand() {}

// RunFakeKeyOp drives a named virtual key from the control channel, the
// same operation a FakeKeyAction binding would apply.
type RunFakeKeyOp struct {
	Ref string
	Op  FakeKeyOp
}

func (RunFakeKeyOp) isCommand() {}

// SetMouse issues a direct mouse action outside of any keymap binding
// (e.g. a remote-control transport driving the pointer programmatically).
type SetMouse struct{ Action Action }

func (SetMouse) isCommand() {}

// Flush gives the submitter a synchronization point: its FlushResponse is
// sent during the command step of the next Advance, after that Advance has
// drained the input events due by then. The response is sent before that
// Advance's output is written to the sink. Grounded on tcell's Sync(),
// which forces a full repaint and waits; here the wait is over a key-event
// pipeline instead of a screen buffer.
type Flush struct{}

func (Flush) isCommand() {}

// RequestVirtualPressed asks for a snapshot of the virtualPressed multiset,
// an observability hook a remote transport can poll.
type RequestVirtualPressed struct{}

func (RequestVirtualPressed) isCommand() {}

// Response is what the Orchestrator sends back for a Command that expects
// one; commands that are pure side effects (Reload, SetMouse, ...) get no
// Response.
type Response interface {
	isResponse()
}

// LayerNamesResponse answers RequestLayerNames.
type LayerNamesResponse struct{ Names []string }

func (LayerNamesResponse) isResponse() {}

// CurrentLayerResponse answers RequestCurrentLayerName.
type CurrentLayerResponse struct{ Name string }

func (CurrentLayerResponse) isResponse() {}

// LayerInfoResponse answers RequestCurrentLayerInfo.
type LayerInfoResponse struct{ Info string }

func (LayerInfoResponse) isResponse() {}

// VirtualPressedResponse answers RequestVirtualPressed.
type VirtualPressedResponse struct{ Counts map[OsCode]int }

func (VirtualPressedResponse) isResponse() {}

// FlushResponse answers Flush once the drain has completed.
type FlushResponse struct{}

func (FlushResponse) isResponse() {}

// ErrorResponse wraps a command that failed (e.g. ChangeLayer to an unknown
// name).
type ErrorResponse struct{ Err error }

func (ErrorResponse) isResponse() {}

// formatLayerInfo renders one layer's defsrc bindings as a fixed-width
// two-column table, using go-runewidth to measure each key label's display
// width so the binding column stays aligned even when a label contains wide
// (e.g. CJK) characters — the same concern tcell's own terminal-width
// calculations solve for screen cells.
func formatLayerInfo(km *Keymap, layerIdx int) string {
	if layerIdx < 0 || layerIdx >= len(km.Layers) {
		return ""
	}
	layer := km.Layers[layerIdx]
	const codeColumn = 16
	out := fmt.Sprintf("layer %q\n", layer.Name)
	for _, code := range km.Defsrc {
		label := code.String()
		pad := codeColumn - runewidth.StringWidth(label)
		if pad < 1 {
			pad = 1
		}
		a := layer.Action(code)
		out += label + spaces(pad) + describeAction(a) + "\n"
	}
	return out
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// describeAction gives a short label for a layer table; it's deliberately
// terse, not a full dump of nested actions.
func describeAction(a Action) string {
	switch v := a.(type) {
	case KeyCode:
		return v.Code.String()
	case Transparent:
		return "_"
	case NoOp:
		return "XX"
	case LayerAction:
		return fmt.Sprintf("layer(%d)", v.Layer)
	case TapHold:
		return fmt.Sprintf("tap-hold(%s, %s)", describeAction(v.Tap), describeAction(v.Hold))
	default:
		return fmt.Sprintf("%T", a)
	}
}

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

// layerFrame is one while-held layer push, tagged with the key that pushed
// it so its release pops exactly this frame and no other (spec.md §4.2
// "Layer operations", while-held).
type layerFrame struct {
	layer     int
	originKey OsCode
}

// layerStack is the live layer state of a StateMachine: a base layer cursor
// moved by switch-base, a set of toggled-on layers, and a stack of
// while-held pushes. Resolution order (spec.md §4.2 step 1, "topmost active
// layer") is: while-held stack top-to-bottom, then toggled layers in
// descending index order, then the base layer.
type layerStack struct {
	base    int
	toggled map[int]bool
	held    []layerFrame
}

func newLayerStack(baseLayer int) *layerStack {
	return &layerStack{base: baseLayer, toggled: map[int]bool{}}
}

// activeOrder returns the layer indices to consult, topmost first.
func (s *layerStack) activeOrder() []int {
	order := make([]int, 0, len(s.held)+len(s.toggled)+1)
	for i := len(s.held) - 1; i >= 0; i-- {
		order = append(order, s.held[i].layer)
	}
	for i := maxLayerIndexHint; i >= 0; i-- {
		if s.toggled[i] {
			order = append(order, i)
		}
	}
	order = append(order, s.base)
	return order
}

// maxLayerIndexHint bounds the toggled-layer scan; it is set generously
// since Keymap.Layers is small in practice and the scan is O(n) either way.
const maxLayerIndexHint = 63

// resolve walks the active layer order and returns the first non-Transparent
// action bound to code, plus the index of the layer it came from. If every
// active layer leaves code Transparent, it resolves against Defsrc (spec.md
// §4.2 step 1 "if none, resolve to defsrc" and §3 invariant 6).
func (km *Keymap) resolve(s *layerStack, code OsCode) (Action, int) {
	for _, li := range s.activeOrder() {
		if li < 0 || li >= len(km.Layers) {
			continue
		}
		a := km.Layers[li].Action(code)
		if _, transparent := a.(Transparent); !transparent {
			return a, li
		}
	}
	if _, inSrc := km.InDefsrc(code); inSrc || km.Options.ProcessUnmappedKeys {
		return KeyCode{Code: code}, s.base
	}
	return NoOp{}, s.base
}

// pushWhileHeld pushes layer, tagged with originKey, onto the held stack.
func (s *layerStack) pushWhileHeld(layer int, originKey OsCode) {
	s.held = append(s.held, layerFrame{layer: layer, originKey: originKey})
}

// popWhileHeld removes the most recent frame pushed by originKey, if any.
func (s *layerStack) popWhileHeld(originKey OsCode) {
	for i := len(s.held) - 1; i >= 0; i-- {
		if s.held[i].originKey == originKey {
			s.held = append(s.held[:i], s.held[i+1:]...)
			return
		}
	}
}

// toggle flips presence of layer in the toggled set (spec.md "idempotent on
// re-toggle" just means flipping twice returns to the original state, which
// a bool flip already satisfies).
func (s *layerStack) toggle(layer int) {
	s.toggled[layer] = !s.toggled[layer]
}

// switchBase moves the base layer cursor without touching the stack.
func (s *layerStack) switchBase(layer int) {
	s.base = layer
}

// reset clears all held/toggled state, returning to the plain base layer
// (used on reload per spec.md §3 "Lifecycle").
func (s *layerStack) reset() {
	s.held = nil
	s.toggled = map[int]bool{}
}

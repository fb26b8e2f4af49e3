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

//go:build !keylayer_custom_actions

package keylayer

// customActionsEnabled gates CustomAction dispatch per spec.md §3. Without
// the keylayer_custom_actions build tag, CustomAction resolves as NoOp.
const customActionsEnabled = false

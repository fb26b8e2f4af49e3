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

// Package keylayer is the key-processing engine of a cross-platform
// userspace keyboard remapper. It couples a platform input adapter and
// output sink with a layered, timer-driven state machine that gives each
// key its own tap-hold, tap-dance, chord, sequence, one-shot, macro or
// unicode behavior, and drives the whole pipeline from a single
// millisecond-granularity orchestrator loop.
//
// Package keylayer does not parse configuration files, enumerate or open
// platform devices, or implement a remote-control transport; callers
// supply an already-validated Keymap and drive the Orchestrator's
// SubmitInput/SubmitCommand entry points themselves.
package keylayer

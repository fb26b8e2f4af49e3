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

// Command keylayerd wires a small hard-coded Keymap to the simulation
// adapter and sink and drives it through a handful of synthetic key
// events, logging every resulting OutputEvent. It exists only to prove
// the engine runs end to end outside of go test — it opens no real
// device, parses no config file, and is not a shipped product (see the
// Non-goals carried from the engine's own design).
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/keylayer/keylayer"
)

func demoKeymap() *keylayer.Keymap {
	defsrc := []keylayer.OsCode{keylayer.OsCodeCapsLock, keylayer.OsCodeA, keylayer.OsCodeJ, keylayer.OsCodeK}

	base := keylayer.Layer{
		Name: "base",
		Actions: map[keylayer.OsCode]keylayer.Action{
			// Caps Lock taps Escape, holds Left Control: the canonical
			// tap-hold rebind every kanata-like remapper demos first.
			keylayer.OsCodeCapsLock: keylayer.TapHold{
				Tap:          keylayer.KeyCode{Code: keylayer.OsCodeEsc},
				Hold:         keylayer.KeyCode{Code: keylayer.OsCodeLeftCtrl},
				TapTimeoutMs: 200,
			},
		},
	}

	chords := []keylayer.ChordGroup{
		{
			ID:        1,
			Members:   map[keylayer.OsCode]struct{}{keylayer.OsCodeJ: {}, keylayer.OsCodeK: {}},
			TimeoutMs: 50,
			Action:    keylayer.KeyCode{Code: keylayer.OsCodeEsc},
		},
	}

	km, err := keylayer.NewKeymap(defsrc, []keylayer.Layer{base}, chords, nil, nil, keylayer.DefaultOptions())
	if err != nil {
		panic(err)
	}
	return km
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	km := demoKeymap()
	adapter := keylayer.NewSimAdapter()
	sink := keylayer.NewSimSink()
	orch := keylayer.NewOrchestrator(km, adapter, sink, log)

	// Caps Lock tapped quickly resolves as Escape; J+K within the chord
	// window resolves as the chord's bound Escape too.
	adapter.InjectKey(keylayer.OsCodeCapsLock, keylayer.Press, 0)
	adapter.InjectKey(keylayer.OsCodeCapsLock, keylayer.Release, 10)
	adapter.InjectKey(keylayer.OsCodeJ, keylayer.Press, 20)
	adapter.InjectKey(keylayer.OsCodeK, keylayer.Press, 25)
	adapter.InjectKey(keylayer.OsCodeJ, keylayer.Release, 30)
	adapter.InjectKey(keylayer.OsCodeK, keylayer.Release, 30)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	go func() {
		if err := orch.Run(ctx); err != nil {
			log.Error("orchestrator exited", "error", err)
		}
	}()
	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)

	for _, ev := range sink.Events() {
		log.Info("output", "kind", ev.Kind, "code", ev.Code, "dir", ev.Dir)
	}
}

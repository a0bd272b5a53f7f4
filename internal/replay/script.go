// Package replay implements scripted and recorded joypad input: a
// deterministic stream of timestamped key-state snapshots keyed against
// a cartridge's hash, so a replay can refuse to run against the wrong
// ROM. Scripted input is authored in Lua via gopher-lua.
package replay

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/fenwick-systems/pocketgb/gb"
)

// Script drives gb.JoypadProvider from a small Lua program. The script
// calls press(cycle, button) for every key-down and release(cycle, button)
// for every key-up transition it wants to script; Script turns that into a
// sorted, deterministic timeline that Poll walks forward with a cursor.
type Script struct {
	state     *lua.LState
	events    []scriptEvent
	keys      gb.JoyKeys
	nextIndex int
}

type scriptEvent struct {
	cycle  uint64
	button string
	down   bool
}

var buttonFields = map[string]func(*gb.JoyKeys) *bool{
	"right":  func(k *gb.JoyKeys) *bool { return &k.Right },
	"left":   func(k *gb.JoyKeys) *bool { return &k.Left },
	"up":     func(k *gb.JoyKeys) *bool { return &k.Up },
	"down":   func(k *gb.JoyKeys) *bool { return &k.Down },
	"a":      func(k *gb.JoyKeys) *bool { return &k.A },
	"b":      func(k *gb.JoyKeys) *bool { return &k.B },
	"select": func(k *gb.JoyKeys) *bool { return &k.Select },
	"start":  func(k *gb.JoyKeys) *bool { return &k.Start },
}

// LoadScript runs the Lua source in source, collecting every press/release
// call it makes into a sorted event timeline. The script itself runs to
// completion immediately; Poll later replays the timeline against the
// elapsed-cycle counter the core hands it.
func LoadScript(source string) (*Script, error) {
	s := &Script{state: lua.NewState()}

	s.state.SetGlobal("press", s.state.NewFunction(func(L *lua.LState) int {
		s.record(L, true)
		return 0
	}))
	s.state.SetGlobal("release", s.state.NewFunction(func(L *lua.LState) int {
		s.record(L, false)
		return 0
	}))

	if err := s.state.DoString(source); err != nil {
		s.state.Close()
		return nil, fmt.Errorf("pocketgb: replay script: %w", err)
	}

	sort.SliceStable(s.events, func(i, j int) bool { return s.events[i].cycle < s.events[j].cycle })
	return s, nil
}

func (s *Script) record(L *lua.LState, down bool) {
	cycle := uint64(L.CheckInt64(1))
	button := L.CheckString(2)
	if _, ok := buttonFields[button]; !ok {
		L.RaiseError("pocketgb: unknown button %q", button)
		return
	}
	s.events = append(s.events, scriptEvent{cycle: cycle, button: button, down: down})
}

// Poll implements gb.JoypadProvider: applies every scripted transition up
// to and including elapsedCycles, then returns the resulting key state.
func (s *Script) Poll(elapsedCycles uint64) gb.JoyKeys {
	for s.nextIndex < len(s.events) && s.events[s.nextIndex].cycle <= elapsedCycles {
		ev := s.events[s.nextIndex]
		*buttonFields[ev.button](&s.keys) = ev.down
		s.nextIndex++
	}
	return s.keys
}

// Close releases the Lua interpreter. Safe to call once Poll has drained
// the whole timeline.
func (s *Script) Close() { s.state.Close() }

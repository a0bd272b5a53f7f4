// Command pocketgb is the reference host binary: it loads a ROM file,
// wires the core to the ebiten/oto platform adapters, runs the machine
// on its own goroutine, and lets the front end own the main thread.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fenwick-systems/pocketgb/gb"
	"github.com/fenwick-systems/pocketgb/internal/platform"
	"github.com/fenwick-systems/pocketgb/internal/replay"
)

// cyclesPerSecond is the LR35902's fixed clock rate.
const cyclesPerSecond = 4194304

func main() {
	romPath := flag.String("rom", "", "path to a Game Boy ROM image")
	scale := flag.Int("scale", 4, "integer window scale factor")
	saveStatePath := flag.String("save-state", "", "load this save state on startup, if present")
	replayScript := flag.String("replay-script", "", "run a Lua-scripted input replay instead of reading the keyboard")
	recordTo := flag.String("record-to", "", "record live keyboard input to this replay file")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: pocketgb -rom <path> [-scale N] [-save-state path] [-replay-script path.lua] [-record-to path]")
		os.Exit(1)
	}

	rom, err := os.ReadFile(*romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pocketgb: read rom: %v\n", err)
		os.Exit(1)
	}
	cart := gb.NewFlatCartridge(rom)

	machine := gb.NewMachine(cart, gb.Options{
		PerfEnabled: true,
		Trace:       func(msg string, args ...any) { fmt.Fprintf(os.Stderr, msg+"\n", args...) },
	})

	storage := platform.FileStorage{}
	if *saveStatePath != "" {
		if err := machine.LoadState(storage, *saveStatePath); err != nil {
			fmt.Fprintf(os.Stderr, "pocketgb: load state: %v\n", err)
		}
	}

	video := platform.NewEbitenVideo(*scale, fmt.Sprintf("pocketgb - %s", cart.Title()))
	machine.AttachRenderBackend(video)

	audio, err := platform.NewOtoAudio(44100, machine.Bus.Sound())
	if err != nil {
		fmt.Fprintf(os.Stderr, "pocketgb: audio init: %v\n", err)
		os.Exit(1)
	}
	audio.Play()
	defer audio.Close()

	var provider gb.JoypadProvider = platform.EbitenJoypad{}
	if *replayScript != "" {
		src, err := os.ReadFile(*replayScript)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pocketgb: read replay script: %v\n", err)
			os.Exit(1)
		}
		script, err := replay.LoadScript(string(src))
		if err != nil {
			fmt.Fprintf(os.Stderr, "pocketgb: replay script: %v\n", err)
			os.Exit(1)
		}
		defer script.Close()
		provider = script
	} else if *recordTo != "" {
		provider = replay.NewRecorder(provider, cart.Hash())
	}
	machine.AttachJoypadProvider(provider)

	stop := make(chan struct{})
	go runMachine(machine, stop)

	err = video.Run()

	close(stop)
	if recorder, ok := provider.(*replay.Recorder); ok && *recordTo != "" {
		if f, ferr := os.Create(*recordTo); ferr == nil {
			recorder.Save(f)
			f.Close()
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pocketgb: %v\n", err)
		os.Exit(1)
	}
}

// runMachine paces Machine.Tick against real elapsed time so the core
// runs at the real console's clock rate rather than as fast as the host
// can manage, batching a slice of instructions between each time check
// to keep per-tick scheduling overhead low.
func runMachine(machine *gb.Machine, stop <-chan struct{}) {
	const batch = 4096
	start := time.Now()
	var cyclesAtStart uint64

	for {
		select {
		case <-stop:
			return
		default:
		}

		for i := 0; i < batch; i++ {
			if err := machine.Tick(); err != nil {
				fmt.Fprintf(os.Stderr, "pocketgb: emulation halted: %v\n", err)
				return
			}
		}

		wantElapsed := time.Duration(machine.CPU.Cycles-cyclesAtStart) * time.Second / cyclesPerSecond
		actualElapsed := time.Since(start)
		if wantElapsed > actualElapsed {
			time.Sleep(wantElapsed - actualElapsed)
		}
	}
}

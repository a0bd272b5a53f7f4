package replay

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/fenwick-systems/pocketgb/gb"
)

// frame is one recorded (elapsed-cycle, key-state) sample.
type frame struct {
	Cycle uint64
	Keys  gb.JoyKeys
}

// Recording is the gob-serialized output of a Recorder: a cartridge hash
// plus the exact timestamped key-state stream a live JoypadProvider
// produced, so Playback can refuse to run it against a different ROM.
type Recording struct {
	CartHash string
	Frames   []frame
}

// Recorder wraps a live gb.JoypadProvider, forwarding every Poll call
// through unchanged while appending a frame whenever the key state
// differs from the previous poll, in either direction (press or release);
// gb.Joypad's interrupt line, by contrast, reacts only to presses (1->0).
type Recorder struct {
	source   gb.JoypadProvider
	cartHash string
	frames   []frame
	last     gb.JoyKeys
	have     bool
}

// NewRecorder wraps source, tagging the eventual Recording with cartHash
// (typically GamePak.Hash()) so a mismatched replay is caught at load time.
func NewRecorder(source gb.JoypadProvider, cartHash string) *Recorder {
	return &Recorder{source: source, cartHash: cartHash}
}

func (r *Recorder) Poll(elapsedCycles uint64) gb.JoyKeys {
	keys := r.source.Poll(elapsedCycles)
	if !r.have || keys != r.last {
		r.frames = append(r.frames, frame{Cycle: elapsedCycles, Keys: keys})
		r.last = keys
		r.have = true
	}
	return keys
}

// Save writes the recording captured so far.
func (r *Recorder) Save(w io.Writer) error {
	rec := Recording{CartHash: r.cartHash, Frames: r.frames}
	if err := gob.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("pocketgb: save replay: %w", err)
	}
	return nil
}

// Playback replays a previously saved Recording as a gb.JoypadProvider.
type Playback struct {
	frames    []frame
	nextIndex int
	keys      gb.JoyKeys
}

// LoadRecording decodes a Recording from r and verifies it was captured
// against the cartridge identified by cartHash.
func LoadRecording(r io.Reader, cartHash string) (*Playback, error) {
	var rec Recording
	if err := gob.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("pocketgb: load replay: %w", err)
	}
	if rec.CartHash != cartHash {
		return nil, fmt.Errorf("pocketgb: replay was recorded against a different cartridge")
	}
	return &Playback{frames: rec.Frames}, nil
}

func (p *Playback) Poll(elapsedCycles uint64) gb.JoyKeys {
	for p.nextIndex < len(p.frames) && p.frames[p.nextIndex].Cycle <= elapsedCycles {
		p.keys = p.frames[p.nextIndex].Keys
		p.nextIndex++
	}
	return p.keys
}

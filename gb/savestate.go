package gb

import (
	"bytes"
	"encoding/gob"
	"io"
)

// StorageMode selects the direction a PersistentStorage handle is opened
// in.
type StorageMode int

const (
	StorageRead StorageMode = iota
	StorageWrite
)

// PersistentStorage is the host's file-system boundary for save-RAM and
// save-states. The core never touches the filesystem
// directly; every byte-stream it needs is handed in through this trait.
type PersistentStorage interface {
	Open(mode StorageMode, path string) (io.ReadWriteCloser, error)
}

// machineSnapshot is the full serialized core state, excluding the
// rendering back-end, the cartridge ROM, and scratch buffers.
type machineSnapshot struct {
	CPU         CPUSnapshot
	PPU         PPUSnapshot
	Timer       TimerSnapshot
	Sound       SoundSnapshot
	Joypad      JoypadSnapshot
	IE, IF      uint8
	WRAM        []byte
	WRAM2       []byte
	HighRAM     []byte
	DMASource   uint16
	DMAPending  bool
	CartHash    string
}

// SaveState serializes the full machine state to path via storage. The
// cartridge's identity hash is recorded so LoadState can refuse to
// restore a state recorded against a different ROM.
func (m *Machine) SaveState(storage PersistentStorage, path string) error {
	snap := machineSnapshot{
		CPU:        m.CPU.Snapshot(),
		PPU:        m.Bus.PPU().Snapshot(),
		Timer:      m.Bus.Timer().Snapshot(),
		Sound:      m.Bus.Sound().Snapshot(),
		Joypad:     m.Bus.Joypad().Snapshot(),
		IE:         m.Bus.Interrupts().IE,
		IF:         m.Bus.Interrupts().IF,
		WRAM:       append([]byte(nil), m.Bus.wram.Raw()...),
		WRAM2:      append([]byte(nil), m.Bus.wram2.Raw()...),
		HighRAM:    append([]byte(nil), m.Bus.highRAM.Raw()...),
		DMASource:  m.Bus.dma.source.Read(),
		DMAPending: m.Bus.dma.pending,
		CartHash:   m.Bus.cart.Hash(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return &SaveStateError{Operation: "encode", Err: err}
	}

	w, err := storage.Open(StorageWrite, path)
	if err != nil {
		return &SaveStateError{Operation: "open", Details: path, Err: err}
	}
	defer w.Close()
	if _, err := w.Write(buf.Bytes()); err != nil {
		return &SaveStateError{Operation: "write", Details: path, Err: err}
	}
	return nil
}

// LoadState restores machine state previously written by SaveState. The
// cartridge already attached to m must match the recorded hash; the ROM
// image itself is never part of the serialized bytes.
func (m *Machine) LoadState(storage PersistentStorage, path string) error {
	r, err := storage.Open(StorageRead, path)
	if err != nil {
		return &SaveStateError{Operation: "open", Details: path, Err: err}
	}
	defer r.Close()

	var snap machineSnapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return &SaveStateError{Operation: "decode", Details: path, Err: err}
	}
	if snap.CartHash != m.Bus.cart.Hash() {
		return &SaveStateError{Operation: "load", Details: "save state was recorded against a different cartridge"}
	}

	m.CPU.Restore(snap.CPU)
	m.Bus.PPU().Restore(snap.PPU)
	m.Bus.Timer().Restore(snap.Timer)
	m.Bus.Sound().Restore(snap.Sound)
	m.Bus.Joypad().Restore(snap.Joypad)
	m.Bus.interrupts.IE, m.Bus.interrupts.IF = snap.IE, snap.IF
	copy(m.Bus.wram.Raw(), snap.WRAM)
	copy(m.Bus.wram2.Raw(), snap.WRAM2)
	copy(m.Bus.highRAM.Raw(), snap.HighRAM)
	m.Bus.dma = dmaState{pending: snap.DMAPending}
	m.Bus.dma.source.Write(snap.DMASource)
	return nil
}

package gb

// JoyKeys is a snapshot of the eight physical buttons (External
// Interfaces §6 "a snapshot of the 8 key states").
type JoyKeys struct {
	Right, Left, Up, Down   bool
	A, B, Select, Start     bool
}

// JoypadProvider is polled once per tick for the current key state; a
// replay provider (internal/replay) instead serves a deterministic
// stream of timestamped snapshots indexed by elapsed-cycles.
type JoypadProvider interface {
	Poll(elapsedCycles uint64) JoyKeys
}

// Joypad is the single latched register at 0xFF00: two selectable 4-bit
// "rows" (direction keys, action keys) visible in the low nibble, with
// a 1->0 transition on any visible bit requesting the Joypad interrupt.
type Joypad struct {
	selectBits uint8 // raw bits 4-5 as last written; 0 means that row is selected
	visible    uint8 // cached low nibble currently exposed to the CPU

	interrupts *Interrupts
}

func newJoypad(interrupts *Interrupts) *Joypad {
	return &Joypad{visible: 0x0F, interrupts: interrupts}
}

func (j *Joypad) reset() {
	j.selectBits = 0x30
	j.visible = 0x0F
}

// Poll recomputes the visible nibble from a fresh provider snapshot and
// requests an interrupt on any 1->0 transition.
func (j *Joypad) Poll(keys JoyKeys) {
	dirNibble := packNibble(!keys.Right, !keys.Left, !keys.Up, !keys.Down)
	actNibble := packNibble(!keys.A, !keys.B, !keys.Select, !keys.Start)

	next := uint8(0x0F)
	if j.selectBits&0x10 == 0 {
		next &= dirNibble
	}
	if j.selectBits&0x20 == 0 {
		next &= actNibble
	}

	fell := j.visible &^ next
	if fell != 0 {
		j.interrupts.Request(IntBitJoypad)
	}
	j.visible = next
}

// packNibble packs four active-low bits (bit0..bit3) into a nibble.
func packNibble(b0, b1, b2, b3 bool) uint8 {
	var n uint8
	if b0 {
		n |= 1 << 0
	}
	if b1 {
		n |= 1 << 1
	}
	if b2 {
		n |= 1 << 2
	}
	if b3 {
		n |= 1 << 3
	}
	return n
}

// ReadRegister returns P1/JOYP; bits 6-7 always read 1.
func (j *Joypad) ReadRegister() uint8 { return 0xC0 | j.selectBits | j.visible }

// WriteRegister stores the row-select bits; bits 0-3 are read-only from
// the CPU's perspective.
func (j *Joypad) WriteRegister(v uint8) { j.selectBits = v & 0x30 }

// JoypadSnapshot is the gob-friendly save-state form of Joypad state.
type JoypadSnapshot struct {
	SelectBits uint8
	Visible    uint8
}

func (j *Joypad) Snapshot() JoypadSnapshot {
	return JoypadSnapshot{SelectBits: j.selectBits, Visible: j.visible}
}

func (j *Joypad) Restore(s JoypadSnapshot) {
	j.selectBits, j.visible = s.SelectBits, s.Visible
}

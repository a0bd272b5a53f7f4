package gb

// Interrupts holds the two memory-mapped registers the vector-dispatch
// logic in cpu.go reads: IE (0xFFFF) and IF (0xFF0F). Peripherals call
// Request to set their bit; the CPU clears it on dispatch.
type Interrupts struct {
	IE uint8
	IF uint8
}

// Request sets one or more IF bits.
func (in *Interrupts) Request(bits uint8) { in.IF |= bits }

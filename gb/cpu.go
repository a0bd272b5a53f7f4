package gb

// Interrupt vector addresses and their IE/IF bit positions.
const (
	IntBitVBlank uint8 = 1 << 0
	IntBitSTAT   uint8 = 1 << 1
	IntBitTimer  uint8 = 1 << 2
	IntBitSerial uint8 = 1 << 3
	IntBitJoypad uint8 = 1 << 4

	vecVBlank uint16 = 0x0040
	vecSTAT   uint16 = 0x0048
	vecTimer  uint16 = 0x0050
	vecSerial uint16 = 0x0058
	vecJoypad uint16 = 0x0060

	addrIF uint16 = 0xFF0F
	addrIE uint16 = 0xFFFF
)

// Memory is the bus-facing surface the CPU needs: the MemoryReader the
// decoder consumes, plus writes. *Bus implements this.
type Memory interface {
	MemoryReader
	WriteMemory(addr uint16, v uint8)
}

// CPU is the LR35902 execution core: register file, program counter,
// interrupt-enable flag, elapsed-cycle counter, and crash flag.
type CPU struct {
	Regs RegisterFile

	IME bool
	// imeEnableCountdown implements EI's one-instruction delay as a
	// two-step latch: EI sets it to 2; it is
	// decremented at the end of every Step, and IME flips true the
	// instant it reaches 0 — which happens before the *next* step's
	// interrupt check, so an interrupt pending right on the boundary can
	// preempt that next instruction, matching real hardware.
	imeEnableCountdown int

	Cycles uint64
	Halted bool

	CrashMessage string

	// CallStack shadows CALL/RET for debugger backtraces only; execution
	// never reads it.
	CallStack []uint16

	mem Memory
}

// NewCPU returns a CPU wired to the given memory/bus.
func NewCPU(mem Memory) *CPU {
	return &CPU{mem: mem}
}

// Reset restores post-BIOS register values.
// These are the well-known values the original boot ROM leaves behind.
func (c *CPU) Reset() {
	c.Regs = RegisterFile{A: 0x01, F: 0xB0, B: 0x00, C: 0x13, D: 0x00, E: 0xD8, H: 0x01, L: 0x4D, SP: 0xFFFE, PC: 0x0100}
	c.IME = false
	c.imeEnableCountdown = 0
	c.Cycles = 0
	c.Halted = false
	c.CrashMessage = ""
	c.CallStack = c.CallStack[:0]
}

// Crashed reports whether an undefined opcode halted execution.
func (c *CPU) Crashed() bool { return c.CrashMessage != "" }

// CheckAndDispatchInterrupt runs the per-instruction interrupt check
// and the HALT-resume rule: called once per top-level tick, before Step.
func (c *CPU) CheckAndDispatchInterrupt() {
	ie := c.mem.ReadMemory(addrIE)
	iflags := c.mem.ReadMemory(addrIF)
	pending := ie & iflags & 0x1F

	if c.Halted && pending != 0 {
		c.Halted = false
	}
	if !c.IME || pending == 0 {
		return
	}

	bit, vector := lowestPendingInterrupt(pending)
	c.mem.WriteMemory(addrIF, iflags&^bit)
	c.IME = false
	c.pushAny(c.Regs.PC)
	c.pushFrame(c.Regs.PC)
	c.Regs.PC = vector
	c.Cycles += 20
}

func lowestPendingInterrupt(pending uint8) (bit uint8, vector uint16) {
	switch {
	case pending&IntBitVBlank != 0:
		return IntBitVBlank, vecVBlank
	case pending&IntBitSTAT != 0:
		return IntBitSTAT, vecSTAT
	case pending&IntBitTimer != 0:
		return IntBitTimer, vecTimer
	case pending&IntBitSerial != 0:
		return IntBitSerial, vecSerial
	default:
		return IntBitJoypad, vecJoypad
	}
}

// Step decodes and executes exactly one instruction, returning its
// crash error if the opcode was undefined. While halted, no decode
// happens and only one machine cycle (4 cycles) passes, so the scheduler
// can still be drained by the caller.
func (c *CPU) Step() error {
	if c.Halted {
		c.Cycles += 4
		c.advanceImeCountdown()
		return nil
	}

	pc := c.Regs.PC
	in, err := Decode(c.mem, pc)
	if err != nil {
		c.CrashMessage = (&CrashError{Operation: "decode", Details: err.Error(), PC: pc}).Error()
		return &CrashError{Operation: "decode", Details: err.Error(), PC: pc, Err: err}
	}

	c.Regs.PC = pc + uint16(in.size())
	c.Cycles += uint64(in.duration())
	in.Dispatch(c)
	c.advanceImeCountdown()
	return nil
}

// advanceImeCountdown runs EI's one-instruction delay. It must land at
// the end of Step, not the top: Tick calls CheckAndDispatchInterrupt
// before Step, so a flip at the top of Step would only become visible
// to the interrupt check one tick later than it should (the instruction
// after the one the countdown is meant to gate would run unpreemptible).
// Flipping here instead makes IME observable to the very next Tick's
// interrupt check, right after the gated instruction finishes.
func (c *CPU) advanceImeCountdown() {
	if c.imeEnableCountdown > 0 {
		c.imeEnableCountdown--
		if c.imeEnableCountdown == 0 {
			c.IME = true
		}
	}
}

func (c *CPU) pushAny(v uint16) {
	c.Regs.SP -= 2
	c.mem.WriteMemory(c.Regs.SP, uint8(v))
	c.mem.WriteMemory(c.Regs.SP+1, uint8(v>>8))
}

func (c *CPU) popAny() uint16 {
	lo := c.mem.ReadMemory(c.Regs.SP)
	hi := c.mem.ReadMemory(c.Regs.SP + 1)
	c.Regs.SP += 2
	return uint16(hi)<<8 | uint16(lo)
}

// pushFrame/popFrame maintain the debugger-observable call stack
// alongside CALL/RST/RET; PUSH/POP data moves never touch it, and
// execution never reads it.
func (c *CPU) pushFrame(returnAddr uint16) {
	c.CallStack = append(c.CallStack, returnAddr)
}

func (c *CPU) popFrame() {
	if n := len(c.CallStack); n > 0 {
		c.CallStack = c.CallStack[:n-1]
	}
}

// addCycles adds extra cycles for a taken conditional branch on top of
// the not-taken base duration already charged in Step.
func (c *CPU) addCycles(n uint64) { c.Cycles += n }

// CPUSnapshot is the gob-friendly save-state form of CPU state.
type CPUSnapshot struct {
	Regs                RegisterFile
	IME                 bool
	ImeEnableCountdown  int
	Cycles              uint64
	Halted              bool
	CrashMessage        string
	CallStack           []uint16
}

func (c *CPU) Snapshot() CPUSnapshot {
	return CPUSnapshot{
		Regs:               c.Regs,
		IME:                c.IME,
		ImeEnableCountdown: c.imeEnableCountdown,
		Cycles:             c.Cycles,
		Halted:             c.Halted,
		CrashMessage:       c.CrashMessage,
		CallStack:          append([]uint16(nil), c.CallStack...),
	}
}

func (c *CPU) Restore(s CPUSnapshot) {
	c.Regs = s.Regs
	c.IME = s.IME
	c.imeEnableCountdown = s.ImeEnableCountdown
	c.Cycles = s.Cycles
	c.Halted = s.Halted
	c.CrashMessage = s.CrashMessage
	c.CallStack = append([]uint16(nil), s.CallStack...)
}

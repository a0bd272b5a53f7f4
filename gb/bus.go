package gb

// Bus is the address-range dispatch layer: it routes every CPU access
// to cartridge, PPU, RAM, or a memory-mapped peripheral register, and
// implements gb.Memory so the CPU's decoder can read through it
// directly. Dispatch is a flat if/else cascade over address ranges
// rather than a table of range objects.
type Bus struct {
	cart       GamePak
	ppu        *PPU
	timer      *Timer
	sound      *Sound
	joypad     *Joypad
	interrupts *Interrupts

	wram    *MemoryChunk // 0xC000-0xDDFF, 0x1E00 bytes
	wram2   *MemoryChunk // 0xDE00-0xDFFF, 0x0200 bytes
	highRAM *MemoryChunk // 0xFF80-0xFFFE, 0x7F bytes

	serial [2]ByteRegister // 0xFF01/0xFF02, stubbed: stored and read back, never shifted out

	dma dmaState

	// now mirrors the CPU's elapsed-cycle counter as of the start of the
	// instruction currently being decoded/dispatched. The Memory
	// interface carries no time parameter, so Machine refreshes this via
	// SetNow before each CPU step; mid-instruction register reads (e.g.
	// TIMA written at the very start of the instruction that reads it
	// back) are accurate to instruction granularity rather than to the
	// individual cycle, matching the tick loop's own granularity.
	now uint64
}

// SetNow refreshes the bus's view of elapsed CPU cycles; called by
// Machine immediately before each CPU step.
func (b *Bus) SetNow(now uint64) { b.now = now }

func NewBus(cart GamePak) *Bus {
	interrupts := &Interrupts{}
	b := &Bus{
		cart:       cart,
		ppu:        newPPU(interrupts),
		timer:      newTimer(interrupts),
		sound:      newSound(),
		joypad:     newJoypad(interrupts),
		interrupts: interrupts,
		wram:       NewMemoryChunk(0x1E00),
		wram2:      NewMemoryChunk(0x0200),
		highRAM:    NewMemoryChunk(0x7F),
	}
	b.Reset()
	return b
}

func (b *Bus) Reset() {
	b.ppu.reset()
	b.timer.reset()
	b.sound.reset()
	b.joypad.reset()
	b.interrupts.IE, b.interrupts.IF = 0, 0
	b.dma = dmaState{}
}

// PPU, Timer, Sound, Joypad, Interrupts expose the owned peripherals for
// the top-level Machine's tick loop and for save-state serialization.
func (b *Bus) PPU() *PPU                 { return b.ppu }
func (b *Bus) Timer() *Timer             { return b.timer }
func (b *Bus) Sound() *Sound             { return b.sound }
func (b *Bus) Joypad() *Joypad           { return b.joypad }
func (b *Bus) Interrupts() *Interrupts   { return b.interrupts }
func (b *Bus) Cartridge() GamePak        { return b.cart }

// ReadMemory implements gb.MemoryReader.
func (b *Bus) ReadMemory(addr uint16) uint8 { return b.readByte(addr) }

func (b *Bus) ReadMemory16(addr uint16) uint16 {
	lo := uint16(b.readByte(addr))
	hi := uint16(b.readByte(addr + 1))
	return lo | hi<<8
}

// WriteMemory implements gb.Memory.
func (b *Bus) WriteMemory(addr uint16, v uint8) { b.writeByte(addr, v) }

func (b *Bus) readByte(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF:
		return b.cart.ReadROM(addr)
	case addr <= 0x9FFF:
		return b.ppu.ReadVRAM(addr)
	case addr <= 0xBFFF:
		return b.cart.ReadExternalRAM(addr)
	case addr <= 0xDDFF:
		return b.wram.Read(int(addr - 0xC000))
	case addr <= 0xDFFF:
		return b.wram2.Read(int(addr - 0xDE00))
	case addr <= 0xFDFF:
		return b.readByte(addr - 0x2000) // echo of 0xC000-0xDDFF
	case addr <= 0xFE9F:
		return b.ppu.ReadOAM(addr)
	case addr <= 0xFEFF:
		return b.ppu.ReadUnusable(addr)
	case addr == 0xFF00:
		return b.joypad.ReadRegister()
	case addr == 0xFF01 || addr == 0xFF02:
		return b.serial[addr-0xFF01].Read()
	case addr >= 0xFF04 && addr <= 0xFF07:
		return b.timer.ReadRegister(addr, b.now)
	case addr == 0xFF0F:
		return 0xE0 | b.interrupts.IF
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.sound.ReadRegister(addr)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		if addr == 0xFF46 {
			return b.dma.source.High()
		}
		return b.ppu.ReadRegister(addr)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.highRAM.Read(int(addr - 0xFF80))
	case addr == 0xFFFF:
		return b.interrupts.IE
	default:
		return 0xFF
	}
}

func (b *Bus) writeByte(addr uint16, v uint8) {
	switch {
	case addr <= 0x7FFF:
		b.cart.WriteROM(addr, v)
	case addr <= 0x9FFF:
		b.ppu.WriteVRAM(addr, v)
	case addr <= 0xBFFF:
		b.cart.WriteExternalRAM(addr, v)
	case addr <= 0xDDFF:
		b.wram.Write(int(addr-0xC000), v)
	case addr <= 0xDFFF:
		b.wram2.Write(int(addr-0xDE00), v)
	case addr <= 0xFDFF:
		b.writeByte(addr-0x2000, v) // echo of 0xC000-0xDDFF
	case addr <= 0xFE9F:
		b.ppu.WriteOAM(addr, v)
	case addr <= 0xFEFF:
		// Unusable region: writes are dropped (reads return 0x00, or 0xFF
		// while the PPU has the region borrowed).
	case addr == 0xFF00:
		b.joypad.WriteRegister(v)
	case addr == 0xFF01 || addr == 0xFF02:
		b.serial[addr-0xFF01].Write(v)
	case addr == 0xFF04:
		b.timer.WriteDIV(b.now)
	case addr == 0xFF05:
		b.timer.WriteTIMA(v)
	case addr == 0xFF06:
		b.timer.WriteTMA(v)
	case addr == 0xFF07:
		b.timer.WriteTAC(b.now, v)
	case addr == 0xFF0F:
		b.interrupts.IF = v & 0x1F
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.sound.WriteRegister(addr, v)
	case addr == 0xFF46:
		b.dma.trigger(v)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.ppu.WriteRegister(addr, v, b.now)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.highRAM.Write(int(addr-0xFF80), v)
	case addr == 0xFFFF:
		b.interrupts.IE = v
	}
}

// Advance brings the PPU, Timer and Sound schedulers up to the CPU's
// current elapsed-cycle count, then runs any pending OAM DMA copy.
func (b *Bus) Advance(now uint64) {
	b.ppu.Advance(now)
	b.timer.Advance(now)
	b.sound.Advance(now)
	b.runDMAIfPending()
}

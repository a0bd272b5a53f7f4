package gb

// ppuEventKind tags the PPU's scheduled transitions.
type ppuEventKind uint8

const (
	evMode2 ppuEventKind = iota
	evMode3
	evMode0
	evMode1
	evAdvanceLy
	evUpdateLyMatch
)

// ppuEvent carries the line it pertains to alongside its kind, so the
// mode-machine chain and the independent LY-advance chain never need to
// read each other's counters to agree on which scanline is current
// (both derive from the same enable time and period, but LY advances
// independently of the mode machine and is scheduled separately).
type ppuEvent struct {
	Kind ppuEventKind
	Line uint8
}

const (
	cycMode2        uint64 = 77
	cycMode3        uint64 = 175
	cycMode0        uint64 = 204
	cycMode1        uint64 = 4560
	cycLine         uint64 = 456
	cycInitialMode2 uint64 = 56
)

// Shade is one of the four 2-bit pixel values a tile/sprite pixel
// resolves to after palette lookup.
type Shade uint8

// shadeRGB maps the four 2-bit shades to the DMG panel's green ramp.
var shadeRGB = [4][3]uint8{
	{224, 248, 208},
	{136, 192, 112},
	{52, 104, 86},
	{8, 24, 32},
}

// RenderBackend is the host's pixel sink.
type RenderBackend interface {
	ColorPixel(x, y int32, r, g, b uint8)
	Present()
}

// BufferSaver is an optional capability a RenderBackend may also
// implement, used by test harnesses to dump a frame to disk.
type BufferSaver interface {
	SaveBuffer(path string) error
}

// spriteEntry holds one OAM slot's fields with the screen-position
// offsets already applied. y and x are signed: OAM Y<16 or X<8 places a
// sprite partially or fully off the top/left edge, and the visibility
// and column arithmetic must see those as negative coordinates, not
// wrapped bytes.
type spriteEntry struct {
	y, x       int
	tile, attr uint8
}

// PPU is the pixel-pipeline state machine: character RAM, two background
// maps, OAM, the unusable region, the register block, and the
// scheduler-driven mode machine plus its per-scanline rasterizer.
type PPU struct {
	vram    *MemoryChunk // 0x1800 bytes, two overlapping 4KiB views
	bgMap1  *MemoryChunk // 0x400
	bgMap2  *MemoryChunk // 0x400
	oam     *MemoryChunk // 0xA0 (40 * 4)
	unused  *MemoryChunk // 0x60

	lcdc, stat             uint8
	scy, scx, ly, lyc      uint8
	bgp, obp0, obp1        uint8
	wy, wx                 uint8

	mode       uint8
	scanIndex  uint8
	lcdOn      bool
	lyMatchRaw bool

	sched      *Scheduler[ppuEvent]
	interrupts *Interrupts
	backend    RenderBackend

	line [160]Shade
}

func newPPU(interrupts *Interrupts) *PPU {
	return &PPU{
		vram:       NewMemoryChunk(0x1800),
		bgMap1:     NewMemoryChunk(0x400),
		bgMap2:     NewMemoryChunk(0x400),
		oam:        NewMemoryChunk(0xA0),
		unused:     NewMemoryChunk(0x60),
		sched:      NewScheduler[ppuEvent](),
		interrupts: interrupts,
	}
}

// AttachBackend installs the render sink; may be nil for headless tests.
func (p *PPU) AttachBackend(backend RenderBackend) { p.backend = backend }

func (p *PPU) reset() {
	p.lcdc, p.stat = 0x91, 0x85
	p.scy, p.scx, p.ly, p.lyc = 0, 0, 0, 0
	p.bgp, p.obp0, p.obp1 = 0xFC, 0xFF, 0xFF
	p.wy, p.wx = 0, 0
	p.mode, p.scanIndex = 2, 0
	p.sched.Clear()
	for _, c := range []*MemoryChunk{p.vram, p.bgMap1, p.bgMap2, p.oam, p.unused} {
		for i := range c.Raw() {
			c.Raw()[i] = 0
		}
	}
	p.lcdOn = p.lcdc&0x80 != 0
	if p.lcdOn {
		p.sched.Schedule(cycInitialMode2, ppuEvent{Kind: evMode2, Line: 0})
		p.sched.Schedule(cycLine, ppuEvent{Kind: evAdvanceLy})
	}
}

// Advance drains every PPU event due at or before now.
func (p *PPU) Advance(now uint64) {
	p.sched.Drain(now, func(e ppuEvent, at uint64) {
		switch e.Kind {
		case evMode2:
			p.enterMode2(at, e.Line)
		case evMode3:
			p.enterMode3(at)
		case evMode0:
			p.enterMode0(at)
		case evMode1:
			p.enterMode1(at)
		case evAdvanceLy:
			p.ly = (p.ly + 1) % 154
			p.sched.Schedule(at+cycLine, ppuEvent{Kind: evAdvanceLy})
			p.sched.Schedule(at+1, ppuEvent{Kind: evUpdateLyMatch})
		case evUpdateLyMatch:
			p.updateLyMatch()
		}
	})
}

func (p *PPU) setSTATMode(m uint8) {
	p.mode = m
	p.stat = p.stat&^0x03 | m
}

func (p *PPU) updateLyMatch() {
	match := p.ly == p.lyc
	p.lyMatchRaw = match
	if match {
		p.stat |= 0x04
	} else {
		p.stat &^= 0x04
	}
	if match && p.stat&0x40 != 0 {
		p.interrupts.Request(IntBitSTAT)
	}
}

func (p *PPU) statInterruptIfEnabled(bit uint8) {
	if p.stat&bit != 0 {
		p.interrupts.Request(IntBitSTAT)
	}
}

func (p *PPU) enterMode2(now uint64, line uint8) {
	p.scanIndex = line
	p.setSTATMode(2)
	p.oam.Borrow()
	p.unused.Borrow()
	p.statInterruptIfEnabled(0x20)
	p.sched.Schedule(now+cycMode2, ppuEvent{Kind: evMode3})
}

func (p *PPU) enterMode3(now uint64) {
	p.setSTATMode(3)
	p.vram.Borrow()
	p.bgMap1.Borrow()
	p.bgMap2.Borrow()
	p.drawScanline()
	p.sched.Schedule(now+cycMode3, ppuEvent{Kind: evMode0})
}

func (p *PPU) releaseAll() {
	for p.vram.Borrowed() {
		p.vram.Release()
	}
	for p.bgMap1.Borrowed() {
		p.bgMap1.Release()
	}
	for p.bgMap2.Borrowed() {
		p.bgMap2.Release()
	}
	for p.oam.Borrowed() {
		p.oam.Release()
	}
	for p.unused.Borrowed() {
		p.unused.Release()
	}
}

func (p *PPU) enterMode0(now uint64) {
	p.setSTATMode(0)
	p.releaseAll()
	p.statInterruptIfEnabled(0x08)

	nextLine := (p.scanIndex + 1) % 154
	if nextLine == 144 {
		p.sched.Schedule(now+cycMode0, ppuEvent{Kind: evMode1})
	} else {
		p.scanIndex = nextLine
		p.sched.Schedule(now+cycMode0, ppuEvent{Kind: evMode2, Line: nextLine})
	}
}

func (p *PPU) enterMode1(now uint64) {
	p.scanIndex = 144
	p.setSTATMode(1)
	p.releaseAll()
	p.interrupts.Request(IntBitVBlank)
	p.statInterruptIfEnabled(0x10)
	if p.backend != nil {
		p.backend.Present()
	}
	p.sched.Schedule(now+cycMode1, ppuEvent{Kind: evMode2, Line: 0})
}

// WriteLCDC is a read-with-observer register: toggling
// bit 7 enables/disables the whole PPU event chain. Disable cancels
// every scheduled event synchronously; enable restarts the chain
// relative to the current cycle count.
func (p *PPU) WriteLCDC(v uint8, now uint64) {
	wasOn := p.lcdOn
	p.lcdc = v
	p.lcdOn = v&0x80 != 0

	if wasOn && !p.lcdOn {
		p.sched.Clear()
		p.releaseAll()
		p.ly = 0
		p.scanIndex = 0
		p.setSTATMode(0)
	} else if !wasOn && p.lcdOn {
		p.sched.Schedule(now+cycInitialMode2, ppuEvent{Kind: evMode2, Line: 0})
		p.sched.Schedule(now+cycLine, ppuEvent{Kind: evAdvanceLy})
		p.updateLyMatch()
	}
}

func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		return p.stat | 0x80
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	}
	return 0xFF
}

func (p *PPU) WriteRegister(addr uint16, v uint8, now uint64) {
	switch addr {
	case 0xFF40:
		p.WriteLCDC(v, now)
	case 0xFF41:
		p.stat = p.stat&0x07 | v&0x78
	case 0xFF42:
		p.scy = v
	case 0xFF43:
		p.scx = v
	case 0xFF45:
		p.lyc = v
	case 0xFF47:
		p.bgp = v
	case 0xFF48:
		p.obp0 = v
	case 0xFF49:
		p.obp1 = v
	case 0xFF4A:
		p.wy = v
	case 0xFF4B:
		p.wx = v
	}
}

// ReadVRAM/WriteVRAM dispatch the three overlapping 0x8000-0x9FFF
// regions (character RAM, BG map 1, BG map 2) honoring the borrow gate.
func (p *PPU) ReadVRAM(addr uint16) uint8 {
	switch {
	case addr < 0x9800:
		return p.vram.Read(int(addr - 0x8000))
	case addr < 0x9C00:
		return p.bgMap1.Read(int(addr - 0x9800))
	default:
		return p.bgMap2.Read(int(addr - 0x9C00))
	}
}

func (p *PPU) WriteVRAM(addr uint16, v uint8) {
	switch {
	case addr < 0x9800:
		p.vram.Write(int(addr-0x8000), v)
	case addr < 0x9C00:
		p.bgMap1.Write(int(addr-0x9800), v)
	default:
		p.bgMap2.Write(int(addr-0x9C00), v)
	}
}

func (p *PPU) ReadOAM(addr uint16) uint8     { return p.oam.Read(int(addr - 0xFE00)) }
func (p *PPU) WriteOAM(addr uint16, v uint8) { p.oam.Write(int(addr-0xFE00), v) }
func (p *PPU) ReadUnusable(addr uint16) uint8 { return p.unused.Read(int(addr - 0xFEA0)) }
func (p *PPU) WriteUnusable(addr uint16, v uint8) { p.unused.Write(int(addr-0xFEA0), v) }

// WriteOAMUnborrowed lets DMA (gb/dma.go) bypass the borrow gate, the way
// real hardware's DMA unit has privileged bus access.
func (p *PPU) WriteOAMUnborrowed(offset int, v uint8) { p.oam.WriteUnborrowed(offset, v) }

// PPUSnapshot is the gob-friendly save-state form of PPU state.
type PPUSnapshot struct {
	VRAM, BGMap1, BGMap2, OAM, Unused []byte
	LCDC, STAT                        uint8
	SCY, SCX, LY, LYC                 uint8
	BGP, OBP0, OBP1                   uint8
	WY, WX                            uint8
	Mode, ScanIndex                   uint8
	LCDOn, LYMatchRaw                 bool
	Events                            []SchedulerEntrySnapshot[ppuEvent]
}

func (p *PPU) Snapshot() PPUSnapshot {
	return PPUSnapshot{
		VRAM:       append([]byte(nil), p.vram.Raw()...),
		BGMap1:     append([]byte(nil), p.bgMap1.Raw()...),
		BGMap2:     append([]byte(nil), p.bgMap2.Raw()...),
		OAM:        append([]byte(nil), p.oam.Raw()...),
		Unused:     append([]byte(nil), p.unused.Raw()...),
		LCDC:       p.lcdc,
		STAT:       p.stat,
		SCY:        p.scy,
		SCX:        p.scx,
		LY:         p.ly,
		LYC:        p.lyc,
		BGP:        p.bgp,
		OBP0:       p.obp0,
		OBP1:       p.obp1,
		WY:         p.wy,
		WX:         p.wx,
		Mode:       p.mode,
		ScanIndex:  p.scanIndex,
		LCDOn:      p.lcdOn,
		LYMatchRaw: p.lyMatchRaw,
		Events:     p.sched.Snapshot(),
	}
}

func (p *PPU) Restore(s PPUSnapshot) {
	copy(p.vram.Raw(), s.VRAM)
	copy(p.bgMap1.Raw(), s.BGMap1)
	copy(p.bgMap2.Raw(), s.BGMap2)
	copy(p.oam.Raw(), s.OAM)
	copy(p.unused.Raw(), s.Unused)
	p.lcdc, p.stat = s.LCDC, s.STAT
	p.scy, p.scx, p.ly, p.lyc = s.SCY, s.SCX, s.LY, s.LYC
	p.bgp, p.obp0, p.obp1 = s.BGP, s.OBP0, s.OBP1
	p.wy, p.wx = s.WY, s.WX
	p.mode, p.scanIndex = s.Mode, s.ScanIndex
	p.lcdOn, p.lyMatchRaw = s.LCDOn, s.LYMatchRaw
	p.sched.Restore(s.Events)
}

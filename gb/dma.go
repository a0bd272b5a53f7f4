package gb

// oamDMALength is the number of bytes an OAM DMA transfer copies: all
// 40 sprite entries at 4 bytes each.
const oamDMALength = 0xA0

// dmaState tracks an in-flight OAM DMA transfer: a write to 0xFF46
// triggers a 160-byte copy. The transfer is modeled as instantaneous
// from the CPU's perspective, performed on the bus's next step rather
// than spread over 160 real machine cycles.
type dmaState struct {
	source  WordRegister
	pending bool
}

func (d *dmaState) trigger(v uint8) {
	d.source.Write(uint16(v) << 8)
	d.pending = true
}

// runDMAIfPending copies source..source+0x9F into OAM when a transfer is
// pending, bypassing the borrow gate the
// way a real DMA unit has privileged bus access regardless of PPU mode.
func (b *Bus) runDMAIfPending() {
	if !b.dma.pending {
		return
	}
	b.dma.pending = false
	for i := 0; i < oamDMALength; i++ {
		v := b.readByte(b.dma.source.Read() + uint16(i))
		b.ppu.WriteOAMUnborrowed(i, v)
	}
}

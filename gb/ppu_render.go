package gb

import "sort"

// drawScanline rasterizes background, window and sprites for the current
// LY into p.line, then pushes each pixel to the attached RenderBackend.
// Runs once per Mode3 entry.
func (p *PPU) drawScanline() {
	if p.ly >= 144 {
		return
	}

	bgWinEnabled := p.lcdc&0x01 != 0
	objEnabled := p.lcdc&0x02 != 0
	windowEnabled := p.lcdc&0x20 != 0 && p.wy <= p.ly

	for x := 0; x < 160; x++ {
		shade := Shade(0)
		if bgWinEnabled {
			if windowEnabled && int(p.wx)-7 <= x {
				shade = p.windowPixel(x)
			} else {
				shade = p.backgroundPixel(x)
			}
		}
		p.line[x] = shade
	}

	if objEnabled {
		p.drawSprites(bgWinEnabled)
	}

	if p.backend == nil {
		return
	}
	y := int32(p.ly)
	for x := 0; x < 160; x++ {
		rgb := shadeRGB[p.line[x]&0x03]
		p.backend.ColorPixel(int32(x), y, rgb[0], rgb[1], rgb[2])
	}
}

func (p *PPU) backgroundPixel(x int) Shade {
	scrolledX := uint8(x) + p.scx
	scrolledY := p.ly + p.scy
	tileIdx := p.tileMapEntry(p.lcdc&0x08 != 0, scrolledX, scrolledY)
	return p.tilePixel(tileIdx, scrolledX%8, scrolledY%8, p.bgp)
}

func (p *PPU) windowPixel(x int) Shade {
	wx := uint8(x - (int(p.wx) - 7))
	wy := p.ly - p.wy
	tileIdx := p.tileMapEntry(p.lcdc&0x40 != 0, wx, wy)
	return p.tilePixel(tileIdx, wx%8, wy%8, p.bgp)
}

// tileMapEntry reads the tile index out of whichever BG map the LCDC bit
// selects, addressed by (pixelX,pixelY)/8 as a 32x32 tile grid.
func (p *PPU) tileMapEntry(useMap2 bool, pixelX, pixelY uint8) uint8 {
	row := uint16(pixelY / 8)
	col := uint16(pixelX / 8)
	offset := row*32 + col
	if useMap2 {
		return p.bgMap2.ReadUnborrowed(int(offset))
	}
	return p.bgMap1.ReadUnborrowed(int(offset))
}

// tilePixel resolves one 2-bit pixel out of character RAM, honoring
// LCDC bit 4's signed/unsigned tile addressing mode, then applies the
// given palette register.
func (p *PPU) tilePixel(tileIdx uint8, px, py uint8, palette uint8) Shade {
	var base int
	if p.lcdc&0x10 != 0 {
		base = int(tileIdx) * 16
	} else {
		base = 0x1000 + int(int8(tileIdx))*16
	}
	rowOffset := base + int(py)*2
	lo := p.vram.ReadUnborrowed(rowOffset)
	hi := p.vram.ReadUnborrowed(rowOffset + 1)
	bit := 7 - px
	lowBit := (lo >> bit) & 1
	highBit := (hi >> bit) & 1
	colorIdx := highBit<<1 | lowBit
	return Shade((palette >> (colorIdx * 2)) & 0x03)
}

// spriteTilePixel is tilePixel without LCDC bit 4's addressing-mode
// check (sprites always use the unsigned 0x8000-based tile numbering),
// and without the palette step for color index 0: sprite pixels at
// index 0 are always transparent, whatever the palette maps it to.
// Returns ok=false for a transparent pixel.
func (p *PPU) spriteTilePixel(tileIdx uint8, px, py uint8, palette uint8) (shade Shade, ok bool) {
	base := int(tileIdx) * 16
	rowOffset := base + int(py)*2
	lo := p.vram.ReadUnborrowed(rowOffset)
	hi := p.vram.ReadUnborrowed(rowOffset + 1)
	bit := 7 - px
	lowBit := (lo >> bit) & 1
	highBit := (hi >> bit) & 1
	colorIdx := highBit<<1 | lowBit
	if colorIdx == 0 {
		return 0, false
	}
	return Shade((palette >> (colorIdx * 2)) & 0x03), true
}

// drawSprites overlays up to 10 sprites per scanline, descending-X
// priority with the higher OAM index winning ties, honoring background
// priority and 8x8/8x16 sizing.
func (p *PPU) drawSprites(bgWinEnabled bool) {
	tall := p.lcdc&0x04 != 0
	height := 8
	if tall {
		height = 16
	}

	ly := int(p.ly)
	var visible [10]spriteEntry
	count := 0
	for i := 0; i < 40 && count < 10; i++ {
		base := i * 4
		y := int(p.oam.ReadUnborrowed(base)) - 16
		if ly < y || ly >= y+height {
			continue
		}
		visible[count] = spriteEntry{
			y:    y,
			x:    int(p.oam.ReadUnborrowed(base+1)) - 8,
			tile: p.oam.ReadUnborrowed(base + 2),
			attr: p.oam.ReadUnborrowed(base + 3),
		}
		count++
	}

	// Stable-sort descending by X so sprites draw highest-X first;
	// lower-X sprites draw last and so win. Among equal X the stable sort
	// keeps OAM order, so the higher OAM index draws last and wins.
	selected := visible[:count]
	sort.SliceStable(selected, func(a, b int) bool { return selected[a].x > selected[b].x })

	for i := 0; i < count; i++ {
		s := selected[i]
		palette := p.obp0
		if s.attr&0x10 != 0 {
			palette = p.obp1
		}
		flipX := s.attr&0x20 != 0
		flipY := s.attr&0x40 != 0
		behindBG := s.attr&0x80 != 0

		row := ly - s.y
		if flipY {
			row = height - 1 - row
		}
		tile := s.tile
		if tall {
			tile &^= 0x01
			if row >= 8 {
				tile |= 0x01
				row -= 8
			}
		}

		for col := 0; col < 8; col++ {
			screenX := s.x + col
			if screenX < 0 || screenX >= 160 {
				continue
			}
			px := uint8(col)
			if flipX {
				px = uint8(7 - col)
			}
			shade, ok := p.spriteTilePixel(tile, px, uint8(row), palette)
			if !ok {
				continue
			}
			if behindBG && bgWinEnabled && p.line[screenX] != 0 {
				continue
			}
			p.line[screenX] = shade
		}
	}
}

package gb

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GamePak is the cartridge boundary: ROM reads, external RAM
// reads/writes, a title string, and an opaque content hash used to key
// replay and save-state files to a specific game image. Bank switching
// is left to GamePak implementations; the bus only sees the two ROM
// windows and the external RAM window.
type GamePak interface {
	ReadROM(addr uint16) uint8
	WriteROM(addr uint16, v uint8)
	ReadExternalRAM(addr uint16) uint8
	WriteExternalRAM(addr uint16, v uint8)
	Title() string
	Hash() string
}

// FlatCartridge is an unbanked GamePak: up to 32KiB of ROM mapped
// directly at 0x0000-0x7FFF and up to 8KiB of external RAM at
// 0xA000-0xBFFF, with no bank-select side effects on ROM writes.
type FlatCartridge struct {
	rom  []byte
	ram  []byte
	hash string
}

// NewFlatCartridge wraps a raw ROM image. Its hash is computed once, up
// front, so save-state and replay files can be cheaply keyed to it.
func NewFlatCartridge(rom []byte) *FlatCartridge {
	ram := make([]byte, 0x2000)
	sum := sha256.Sum256(rom)
	return &FlatCartridge{rom: rom, ram: ram, hash: hex.EncodeToString(sum[:])}
}

func (c *FlatCartridge) ReadROM(addr uint16) uint8 {
	if int(addr) >= len(c.rom) {
		return 0xFF
	}
	return c.rom[addr]
}

// WriteROM is a no-op: a flat cartridge has no bank-select registers.
func (c *FlatCartridge) WriteROM(addr uint16, v uint8) {}

func (c *FlatCartridge) ReadExternalRAM(addr uint16) uint8 {
	off := addr - 0xA000
	if int(off) >= len(c.ram) {
		return 0xFF
	}
	return c.ram[off]
}

func (c *FlatCartridge) WriteExternalRAM(addr uint16, v uint8) {
	off := addr - 0xA000
	if int(off) < len(c.ram) {
		c.ram[off] = v
	}
}

// Title reads the 16-byte cartridge header title field (0x0134-0x0143),
// trimming trailing NUL padding.
func (c *FlatCartridge) Title() string {
	if len(c.rom) < 0x0144 {
		return ""
	}
	return strings.TrimRight(string(c.rom[0x0134:0x0144]), "\x00")
}

func (c *FlatCartridge) Hash() string { return c.hash }

package gb

// MemoryChunk is a fixed-size byte buffer with a borrow counter standing
// in for the hardware's memory-contention behavior: while the PPU holds a
// borrow, the CPU sees 0xFF on reads and its writes vanish. No locks are
// involved: the core is single-threaded and the counter is just
// bookkeeping for which half of the bus currently owns the bytes.
type MemoryChunk struct {
	data     []byte
	borrowed int
}

// NewMemoryChunk allocates a chunk of the given fixed size.
func NewMemoryChunk(size int) *MemoryChunk {
	return &MemoryChunk{data: make([]byte, size)}
}

// Len returns the chunk's fixed size.
func (m *MemoryChunk) Len() int { return len(m.data) }

// Borrow increments the borrow counter. Balanced with Release.
func (m *MemoryChunk) Borrow() { m.borrowed++ }

// Release decrements the borrow counter. Calling Release more times than
// Borrow is a contract violation; it is clamped
// rather than allowed to go negative, matching the "silently absorbed"
// policy for bugs-not-errors.
func (m *MemoryChunk) Release() {
	if m.borrowed > 0 {
		m.borrowed--
	}
}

// Borrowed reports whether any borrow is outstanding.
func (m *MemoryChunk) Borrowed() bool { return m.borrowed > 0 }

// Read returns 0xFF while borrowed, else the byte at offset. An
// out-of-range offset is a contract violation and also reads as 0xFF.
func (m *MemoryChunk) Read(offset int) uint8 {
	if m.borrowed > 0 || offset < 0 || offset >= len(m.data) {
		return 0xFF
	}
	return m.data[offset]
}

// Write drops the write while borrowed or out of range, else stores it.
func (m *MemoryChunk) Write(offset int, v uint8) {
	if m.borrowed > 0 || offset < 0 || offset >= len(m.data) {
		return
	}
	m.data[offset] = v
}

// ReadUnborrowed bypasses the borrow gate for internal owners (the PPU
// reading its own VRAM to rasterize while it holds the borrow itself).
func (m *MemoryChunk) ReadUnborrowed(offset int) uint8 {
	if offset < 0 || offset >= len(m.data) {
		return 0xFF
	}
	return m.data[offset]
}

// WriteUnborrowed bypasses the borrow gate for internal owners (DMA
// copying into OAM while OAM is borrowed by the PPU's own mode).
func (m *MemoryChunk) WriteUnborrowed(offset int, v uint8) {
	if offset < 0 || offset >= len(m.data) {
		return
	}
	m.data[offset] = v
}

// Raw exposes the backing slice for bulk operations (PPU reset, save states).
// Callers must respect the borrow contract themselves.
func (m *MemoryChunk) Raw() []byte { return m.data }

package gb

import "testing"

// TestMemoryChunkBorrowGatesReadsAndWrites covers the borrow contract
// memchunk.go documents: reads return 0xFF and writes are dropped while
// any borrow is outstanding.
func TestMemoryChunkBorrowGatesReadsAndWrites(t *testing.T) {
	c := NewMemoryChunk(4)
	c.Write(0, 0x42)
	if got := c.Read(0); got != 0x42 {
		t.Fatalf("Read before any borrow = %#02x, want 0x42", got)
	}

	c.Borrow()
	if got := c.Read(0); got != 0xFF {
		t.Fatalf("Read while borrowed = %#02x, want 0xFF", got)
	}
	c.Write(0, 0x99)
	c.Release()
	if got := c.Read(0); got != 0x42 {
		t.Fatalf("write made while borrowed was not dropped: got %#02x, want unchanged 0x42", got)
	}
}

// TestMemoryChunkNestedBorrow covers balanced nested Borrow/Release: the
// gate only lifts once every Borrow has a matching Release.
func TestMemoryChunkNestedBorrow(t *testing.T) {
	c := NewMemoryChunk(1)
	c.Borrow()
	c.Borrow()
	c.Release()
	if !c.Borrowed() {
		t.Fatal("Borrowed() false after releasing only one of two outstanding borrows")
	}
	c.Release()
	if c.Borrowed() {
		t.Fatal("Borrowed() true after releasing every outstanding borrow")
	}
}

// TestMemoryChunkReleaseClampsAtZero covers the "silently absorbed"
// over-release policy: Release never drives the counter negative.
func TestMemoryChunkReleaseClampsAtZero(t *testing.T) {
	c := NewMemoryChunk(1)
	c.Release()
	c.Release()
	if c.Borrowed() {
		t.Fatal("Borrowed() true after only over-releasing an unborrowed chunk")
	}
	c.Write(0, 0x07)
	if got := c.Read(0); got != 0x07 {
		t.Fatalf("chunk still gated after over-release: got %#02x, want 0x07", got)
	}
}

// TestMemoryChunkUnborrowedBypassesGate covers the privileged-access
// escape hatch DMA and the PPU's own rasterizer use.
func TestMemoryChunkUnborrowedBypassesGate(t *testing.T) {
	c := NewMemoryChunk(2)
	c.Borrow()
	c.WriteUnborrowed(0, 0x55)
	if got := c.ReadUnborrowed(0); got != 0x55 {
		t.Fatalf("ReadUnborrowed while borrowed = %#02x, want 0x55", got)
	}
	if got := c.Read(0); got != 0xFF {
		t.Fatalf("the gated Read should still see 0xFF while borrowed, got %#02x", got)
	}
}

// TestMemoryChunkOutOfRange covers the out-of-range contract violation
// reading back as 0xFF and writes being silently dropped.
func TestMemoryChunkOutOfRange(t *testing.T) {
	c := NewMemoryChunk(1)
	if got := c.Read(5); got != 0xFF {
		t.Fatalf("out-of-range Read = %#02x, want 0xFF", got)
	}
	c.Write(5, 0x11) // must not panic
}

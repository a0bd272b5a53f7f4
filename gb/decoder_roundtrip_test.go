package gb

import "testing"

// byteMemory is a minimal MemoryReader backed by a fixed byte slice,
// used only to feed the decoder a specific instruction's bytes.
type byteMemory []byte

func (b byteMemory) ReadMemory(addr uint16) uint8 {
	if int(addr) >= len(b) {
		return 0
	}
	return b[addr]
}
func (b byteMemory) ReadMemory16(addr uint16) uint16 {
	return uint16(b.ReadMemory(addr)) | uint16(b.ReadMemory(addr+1))<<8
}

// TestOpcodeRoundTrip: for every non-illegal base and CB-prefixed
// opcode, decode -> encode -> decode reproduces the original
// Instruction, and size(instr) equals the number of bytes Encode wrote.
func TestOpcodeRoundTrip(t *testing.T) {
	for op := 0; op < 256; op++ {
		opcode := uint8(op)
		mem := byteMemory{opcode, 0x34, 0x12} // plausible imm8/imm16 operand bytes
		in, err := Decode(mem, 0)
		if err != nil {
			continue // illegal opcode; nothing to round-trip
		}
		checkRoundTrip(t, in)
	}

	for cb := 0; cb < 256; cb++ {
		mem := byteMemory{0xCB, uint8(cb)}
		in, err := Decode(mem, 0)
		if err != nil {
			t.Fatalf("CB %#02x: unexpected decode error: %v", cb, err)
		}
		checkRoundTrip(t, in)
	}
}

func checkRoundTrip(t *testing.T, in Instruction) {
	t.Helper()

	encoded, err := Encode(in)
	if err != nil {
		t.Fatalf("opcode %#02x (CB=%v %#02x): encode error: %v", in.Opcode, in.Prefixed, in.CBOpcode, err)
	}
	if len(encoded) != in.size() {
		t.Fatalf("opcode %#02x: size()=%d but Encode wrote %d bytes", in.Opcode, in.size(), len(encoded))
	}

	redecoded, err := Decode(byteMemory(encoded), 0)
	if err != nil {
		t.Fatalf("opcode %#02x: re-decode of encoded bytes failed: %v", in.Opcode, err)
	}
	if redecoded != in {
		t.Fatalf("opcode %#02x: round-trip mismatch:\n  original:   %+v\n  round-trip: %+v", in.Opcode, in, redecoded)
	}
}

package gb

import "testing"

// TestDisassembleSpotChecks covers a handful of representative opcodes
// across addressing modes, not an exhaustive table: it checks the
// Executor split produces sane text for the families exercised
// elsewhere by CPU tests.
func TestDisassembleSpotChecks(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  string
	}{
		{[]byte{0x00}, "NOP"},
		{[]byte{0x76}, "HALT"},
		{[]byte{0x01, 0x34, 0x12}, "LD BC,0x1234"},
		{[]byte{0x80}, "ADD A,B"},
		{[]byte{0xFE, 0x10}, "CP 0x10"},
		{[]byte{0xC3, 0x00, 0x01}, "JP 0x0100"},
		{[]byte{0x28, 0x05}, "JR Z,+5"},
		{[]byte{0xCB, 0x11}, "RL C"},
		{[]byte{0xCB, 0x7C}, "BIT 7,H"},
		{[]byte{0xE8, 0x01}, "ADD SP,+1"},
	}

	for _, tc := range cases {
		text, size, err := Disassemble(byteMemory(tc.bytes), 0)
		if err != nil {
			t.Errorf("Disassemble(%v): %v", tc.bytes, err)
			continue
		}
		if text != tc.want {
			t.Errorf("Disassemble(%v) = %q, want %q", tc.bytes, text, tc.want)
		}
		if size != len(tc.bytes) {
			t.Errorf("Disassemble(%v) size = %d, want %d", tc.bytes, size, len(tc.bytes))
		}
	}
}

func TestDisassembleIllegalOpcode(t *testing.T) {
	text, _, err := Disassemble(byteMemory{0xD3}, 0)
	if err == nil {
		t.Fatalf("Disassemble(0xD3) = %q, want an error for an illegal opcode", text)
	}
}

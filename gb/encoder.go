package gb

import "fmt"

// Encode is the inverse of Decode: given a decoded Instruction, it
// reproduces a byte sequence that decodes back to an equal Instruction
// It does not need to reproduce the
// exact original bytes, only bytes that redecode identically (e.g. STOP's
// conventional padding byte is not preserved, since no field observes it).
func Encode(in Instruction) ([]byte, error) {
	switch in.Op {
	case OpNOP:
		return []byte{0x00}, nil
	case OpSTOP:
		return []byte{0x10, 0x00}, nil
	case OpHALT:
		return []byte{0x76}, nil
	case OpDI:
		return []byte{0xF3}, nil
	case OpEI:
		return []byte{0xFB}, nil
	case OpRLCA:
		return []byte{0x07}, nil
	case OpRRCA:
		return []byte{0x0F}, nil
	case OpRLA:
		return []byte{0x17}, nil
	case OpRRA:
		return []byte{0x1F}, nil
	case OpDAA:
		return []byte{0x27}, nil
	case OpCPL:
		return []byte{0x2F}, nil
	case OpSCF:
		return []byte{0x37}, nil
	case OpCCF:
		return []byte{0x3F}, nil

	case OpLDR8R8:
		return []byte{0x40 | uint8(in.Dst8)<<3 | uint8(in.Src8)}, nil
	case OpLDR8Imm8:
		return []byte{0x06 | uint8(in.Dst8)<<3, in.Imm8}, nil

	case OpLDMemA:
		op, err := encodeMemOpAddr(0x02, in.Dst16, in.MemVariant)
		return []byte{op}, err
	case OpLDAMem:
		op, err := encodeMemOpAddr(0x0A, in.Src16, in.MemVariant)
		return []byte{op}, err

	case OpLDNNA:
		return append([]byte{0xEA}, le16(in.Imm16)...), nil
	case OpLDANN:
		return append([]byte{0xFA}, le16(in.Imm16)...), nil
	case OpLDHImm8A:
		return []byte{0xE0, in.Imm8}, nil
	case OpLDHAImm8:
		return []byte{0xF0, in.Imm8}, nil
	case OpLDHCA:
		return []byte{0xE2}, nil
	case OpLDHAC:
		return []byte{0xF2}, nil

	case OpLDR16Imm16:
		g, err := spGroup(in.Dst16)
		return append([]byte{0x01 | g<<4}, le16(in.Imm16)...), err
	case OpLDSPHL:
		return []byte{0xF9}, nil
	case OpLDHLSPImm8:
		return []byte{0xF8, in.Imm8}, nil
	case OpLDNNSP:
		return append([]byte{0x08}, le16(in.Imm16)...), nil
	case OpPUSH:
		g, err := afGroup(in.Src16)
		return []byte{0xC5 | g<<4}, err
	case OpPOP:
		g, err := afGroup(in.Dst16)
		return []byte{0xC1 | g<<4}, err

	case OpADD8, OpADC8, OpSUB8, OpSBC8, OpAND8, OpXOR8, OpOR8, OpCP8:
		idx := uint8(instructionOpToAluOp(in.Op))
		if in.Src8IsImm {
			return []byte{0xC6 | idx<<3, in.Imm8}, nil
		}
		return []byte{0x80 | idx<<3 | uint8(in.Src8)}, nil
	case OpINC8:
		return []byte{0x04 | uint8(in.Dst8)<<3}, nil
	case OpDEC8:
		return []byte{0x05 | uint8(in.Dst8)<<3}, nil

	case OpINC16:
		g, err := spGroup(in.Dst16)
		return []byte{0x03 | g<<4}, err
	case OpDEC16:
		g, err := spGroup(in.Dst16)
		return []byte{0x0B | g<<4}, err
	case OpADDHL16:
		g, err := spGroup(in.Src16)
		return []byte{0x09 | g<<4}, err
	case OpADDSPImm8:
		return []byte{0xE8, in.Imm8}, nil

	case OpRLC, OpRRC, OpRL, OpRR, OpSLA, OpSRA, OpSWAP, OpSRL:
		base := map[Op]uint8{OpRLC: 0x00, OpRRC: 0x08, OpRL: 0x10, OpRR: 0x18,
			OpSLA: 0x20, OpSRA: 0x28, OpSWAP: 0x30, OpSRL: 0x38}[in.Op]
		return []byte{0xCB, base | uint8(in.Dst8)}, nil
	case OpBIT:
		return []byte{0xCB, 0x40 | in.Bit<<3 | uint8(in.Dst8)}, nil
	case OpRES:
		return []byte{0xCB, 0x80 | in.Bit<<3 | uint8(in.Dst8)}, nil
	case OpSET:
		return []byte{0xCB, 0xC0 | in.Bit<<3 | uint8(in.Dst8)}, nil

	case OpJPImm16:
		if in.Cond == CondAlways {
			return append([]byte{0xC3}, le16(in.Imm16)...), nil
		}
		idx, err := condIndex(in.Cond)
		return append([]byte{0xC2 | idx<<3}, le16(in.Imm16)...), err
	case OpJPHL:
		return []byte{0xE9}, nil
	case OpJR:
		if in.Cond == CondAlways {
			return []byte{0x18, in.Imm8}, nil
		}
		idx, err := condIndex(in.Cond)
		return []byte{0x20 | idx<<3, in.Imm8}, err
	case OpCALL:
		if in.Cond == CondAlways {
			return append([]byte{0xCD}, le16(in.Imm16)...), nil
		}
		idx, err := condIndex(in.Cond)
		return append([]byte{0xC4 | idx<<3}, le16(in.Imm16)...), err
	case OpRET:
		if in.Cond == CondAlways {
			return []byte{0xC9}, nil
		}
		idx, err := condIndex(in.Cond)
		return []byte{0xC0 | idx<<3}, err
	case OpRETI:
		return []byte{0xD9}, nil
	case OpRST:
		return []byte{0xC7 | in.RST}, nil
	}

	return nil, fmt.Errorf("pocketgb: cannot encode illegal/unknown op %v", in.Op)
}

func le16(v uint16) []byte { return []byte{uint8(v), uint8(v >> 8)} }

func encodeMemOpAddr(base uint8, pair Reg16, variant IncDec8Variant) (uint8, error) {
	switch pair {
	case Reg16BC:
		return base, nil
	case Reg16DE:
		return base | 0x10, nil
	case Reg16HL:
		if variant == IncDecInc {
			return base | 0x20, nil
		}
		if variant == IncDecDec {
			return base | 0x30, nil
		}
	}
	return 0, fmt.Errorf("pocketgb: invalid (rr) memory operand %v/%v", pair, variant)
}

func spGroup(r Reg16) (uint8, error) {
	for i, g := range regPairGroupSP {
		if g == r {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("pocketgb: register pair %v has no SP-group encoding", r)
}

func afGroup(r Reg16) (uint8, error) {
	for i, g := range regPairGroupAF {
		if g == r {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("pocketgb: register pair %v has no AF-group encoding", r)
}

func condIndex(c Cond) (uint8, error) {
	for i, g := range condGroup {
		if g == c {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("pocketgb: condition %v has no encoding", c)
}

func instructionOpToAluOp(op Op) aluOp {
	switch op {
	case OpADD8:
		return aluAdd
	case OpADC8:
		return aluAdc
	case OpSUB8:
		return aluSub
	case OpSBC8:
		return aluSbc
	case OpAND8:
		return aluAnd
	case OpXOR8:
		return aluXor
	case OpOR8:
		return aluOr
	default:
		return aluCp
	}
}

package gb

import "fmt"

// MemoryReader is the surface the decoder consumes: a byte reader plus
// its little-endian 16-bit convenience form. *Bus satisfies this
// directly; tests use small in-memory fakes.
type MemoryReader interface {
	ReadMemory(addr uint16) uint8
	ReadMemory16(addr uint16) uint16
}

var regPairGroupSP = [4]Reg16{Reg16BC, Reg16DE, Reg16HL, Reg16SP}
var regPairGroupAF = [4]Reg16{Reg16BC, Reg16DE, Reg16HL, Reg16AF}
var condGroup = [4]Cond{CondNZ, CondZ, CondNC, CondC}

// illegalOpcodes are bytes that never decode to a real instruction on
// the LR35902.
var illegalOpcodes = map[uint8]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

// Decode reads one instruction starting at addr. It returns an error
// only for a genuinely undefined opcode; the caller (the CPU) is
// responsible for turning that into a crash.
func Decode(r MemoryReader, addr uint16) (Instruction, error) {
	opcode := r.ReadMemory(addr)

	if opcode == 0xCB {
		cb := r.ReadMemory(addr + 1)
		return decodeCB(cb), nil
	}

	if illegalOpcodes[opcode] {
		return Instruction{Op: OpIllegal, Opcode: opcode}, fmt.Errorf("illegal opcode %#02x", opcode)
	}

	in := Instruction{Opcode: opcode}

	switch opcode {
	case 0x00:
		in.Op = OpNOP
		return in, nil
	case 0x10:
		in.Op = OpSTOP
		return in, nil
	case 0x76:
		in.Op = OpHALT
		return in, nil
	case 0xF3:
		in.Op = OpDI
		return in, nil
	case 0xFB:
		in.Op = OpEI
		return in, nil
	case 0x07:
		in.Op = OpRLCA
		return in, nil
	case 0x0F:
		in.Op = OpRRCA
		return in, nil
	case 0x17:
		in.Op = OpRLA
		return in, nil
	case 0x1F:
		in.Op = OpRRA
		return in, nil
	case 0x27:
		in.Op = OpDAA
		return in, nil
	case 0x2F:
		in.Op = OpCPL
		return in, nil
	case 0x37:
		in.Op = OpSCF
		return in, nil
	case 0x3F:
		in.Op = OpCCF
		return in, nil
	case 0x02:
		in.Op, in.Dst16, in.MemVariant = OpLDMemA, Reg16BC, IncDecNone
		return in, nil
	case 0x12:
		in.Op, in.Dst16, in.MemVariant = OpLDMemA, Reg16DE, IncDecNone
		return in, nil
	case 0x22:
		in.Op, in.Dst16, in.MemVariant = OpLDMemA, Reg16HL, IncDecInc
		return in, nil
	case 0x32:
		in.Op, in.Dst16, in.MemVariant = OpLDMemA, Reg16HL, IncDecDec
		return in, nil
	case 0x0A:
		in.Op, in.Src16, in.MemVariant = OpLDAMem, Reg16BC, IncDecNone
		return in, nil
	case 0x1A:
		in.Op, in.Src16, in.MemVariant = OpLDAMem, Reg16DE, IncDecNone
		return in, nil
	case 0x2A:
		in.Op, in.Src16, in.MemVariant = OpLDAMem, Reg16HL, IncDecInc
		return in, nil
	case 0x3A:
		in.Op, in.Src16, in.MemVariant = OpLDAMem, Reg16HL, IncDecDec
		return in, nil
	case 0x08:
		in.Op = OpLDNNSP
		in.Imm16 = r.ReadMemory16(addr + 1)
		return in, nil
	case 0xE0:
		in.Op = OpLDHImm8A
		in.Imm8 = r.ReadMemory(addr + 1)
		return in, nil
	case 0xF0:
		in.Op = OpLDHAImm8
		in.Imm8 = r.ReadMemory(addr + 1)
		return in, nil
	case 0xE2:
		in.Op = OpLDHCA
		return in, nil
	case 0xF2:
		in.Op = OpLDHAC
		return in, nil
	case 0xEA:
		in.Op = OpLDNNA
		in.Imm16 = r.ReadMemory16(addr + 1)
		return in, nil
	case 0xFA:
		in.Op = OpLDANN
		in.Imm16 = r.ReadMemory16(addr + 1)
		return in, nil
	case 0xE8:
		in.Op = OpADDSPImm8
		in.Imm8 = r.ReadMemory(addr + 1)
		in.SImm8 = int8(in.Imm8)
		return in, nil
	case 0xF8:
		in.Op = OpLDHLSPImm8
		in.Imm8 = r.ReadMemory(addr + 1)
		in.SImm8 = int8(in.Imm8)
		return in, nil
	case 0xF9:
		in.Op = OpLDSPHL
		return in, nil
	case 0x18:
		in.Op = OpJR
		in.Cond = CondAlways
		in.Imm8 = r.ReadMemory(addr + 1)
		in.SImm8 = int8(in.Imm8)
		return in, nil
	case 0xC3:
		in.Op = OpJPImm16
		in.Cond = CondAlways
		in.Imm16 = r.ReadMemory16(addr + 1)
		return in, nil
	case 0xE9:
		in.Op = OpJPHL
		return in, nil
	case 0xCD:
		in.Op = OpCALL
		in.Cond = CondAlways
		in.Imm16 = r.ReadMemory16(addr + 1)
		return in, nil
	case 0xC9:
		in.Op = OpRET
		in.Cond = CondAlways
		return in, nil
	case 0xD9:
		in.Op = OpRETI
		return in, nil
	}

	switch {
	case opcode&0xC0 == 0x40: // LD r,r' (0x76 already handled above)
		in.Op = OpLDR8R8
		in.Dst8 = Reg8((opcode >> 3) & 0x07)
		in.Src8 = Reg8(opcode & 0x07)
		return in, nil

	case opcode&0xC0 == 0x80: // ALU A,r
		in.Op = aluOpToInstructionOp(aluOp((opcode >> 3) & 0x07))
		in.Src8 = Reg8(opcode & 0x07)
		return in, nil

	case opcode&0xC7 == 0x06: // LD r,n
		in.Op = OpLDR8Imm8
		in.Dst8 = Reg8((opcode >> 3) & 0x07)
		in.Imm8 = r.ReadMemory(addr + 1)
		return in, nil

	case opcode&0xC7 == 0x04: // INC r
		in.Op = OpINC8
		in.Dst8 = Reg8((opcode >> 3) & 0x07)
		return in, nil

	case opcode&0xC7 == 0x05: // DEC r
		in.Op = OpDEC8
		in.Dst8 = Reg8((opcode >> 3) & 0x07)
		return in, nil

	case opcode&0xC7 == 0xC6: // ALU A,n
		in.Op = aluOpToInstructionOp(aluOp((opcode >> 3) & 0x07))
		in.Src8IsImm = true
		in.Imm8 = r.ReadMemory(addr + 1)
		return in, nil

	case opcode&0xCF == 0x01: // LD rr,nn
		in.Op = OpLDR16Imm16
		in.Dst16 = regPairGroupSP[(opcode>>4)&0x03]
		in.Imm16 = r.ReadMemory16(addr + 1)
		return in, nil

	case opcode&0xCF == 0x03: // INC rr
		in.Op = OpINC16
		in.Dst16 = regPairGroupSP[(opcode>>4)&0x03]
		return in, nil

	case opcode&0xCF == 0x0B: // DEC rr
		in.Op = OpDEC16
		in.Dst16 = regPairGroupSP[(opcode>>4)&0x03]
		return in, nil

	case opcode&0xCF == 0x09: // ADD HL,rr
		in.Op = OpADDHL16
		in.Src16 = regPairGroupSP[(opcode>>4)&0x03]
		return in, nil

	case opcode&0xCF == 0xC5: // PUSH rr
		in.Op = OpPUSH
		in.Src16 = regPairGroupAF[(opcode>>4)&0x03]
		return in, nil

	case opcode&0xCF == 0xC1: // POP rr
		in.Op = OpPOP
		in.Dst16 = regPairGroupAF[(opcode>>4)&0x03]
		return in, nil

	case opcode&0xC7 == 0xC7: // RST n
		in.Op = OpRST
		in.RST = opcode & 0x38
		return in, nil

	case opcode&0xE7 == 0x20: // JR cc,e
		in.Op = OpJR
		in.Cond = condGroup[(opcode>>3)&0x03]
		in.Imm8 = r.ReadMemory(addr + 1)
		in.SImm8 = int8(in.Imm8)
		return in, nil

	case opcode&0xE7 == 0xC2: // JP cc,nn
		in.Op = OpJPImm16
		in.Cond = condGroup[(opcode>>3)&0x03]
		in.Imm16 = r.ReadMemory16(addr + 1)
		return in, nil

	case opcode&0xE7 == 0xC4: // CALL cc,nn
		in.Op = OpCALL
		in.Cond = condGroup[(opcode>>3)&0x03]
		in.Imm16 = r.ReadMemory16(addr + 1)
		return in, nil

	case opcode&0xE7 == 0xC0: // RET cc
		in.Op = OpRET
		in.Cond = condGroup[(opcode>>3)&0x03]
		return in, nil
	}

	return Instruction{Op: OpIllegal, Opcode: opcode}, fmt.Errorf("illegal opcode %#02x", opcode)
}

func decodeCB(cb uint8) Instruction {
	in := Instruction{Opcode: 0xCB, Prefixed: true, CBOpcode: cb}
	reg := Reg8(cb & 0x07)
	in.Dst8 = reg
	switch {
	case cb < 0x08:
		in.Op = OpRLC
	case cb < 0x10:
		in.Op = OpRRC
	case cb < 0x18:
		in.Op = OpRL
	case cb < 0x20:
		in.Op = OpRR
	case cb < 0x28:
		in.Op = OpSLA
	case cb < 0x30:
		in.Op = OpSRA
	case cb < 0x38:
		in.Op = OpSWAP
	case cb < 0x40:
		in.Op = OpSRL
	case cb < 0x80:
		in.Op = OpBIT
		in.Bit = (cb >> 3) & 0x07
	case cb < 0xC0:
		in.Op = OpRES
		in.Bit = (cb >> 3) & 0x07
	default:
		in.Op = OpSET
		in.Bit = (cb >> 3) & 0x07
	}
	return in
}

func aluOpToInstructionOp(op aluOp) Op {
	switch op {
	case aluAdd:
		return OpADD8
	case aluAdc:
		return OpADC8
	case aluSub:
		return OpSUB8
	case aluSbc:
		return OpSBC8
	case aluAnd:
		return OpAND8
	case aluXor:
		return OpXOR8
	case aluOr:
		return OpOR8
	default:
		return OpCP8
	}
}

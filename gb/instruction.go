package gb

// Op tags the operation performed by a decoded Instruction. The
// instruction set is expressed as data (a struct with a discriminant)
// rather than a closure table, so the decoder and the encoder can share
// one definition and dispatch stays a flat switch.
type Op uint8

const (
	OpIllegal Op = iota
	OpNOP
	OpSTOP
	OpHALT
	OpDI
	OpEI

	OpLDR8R8   // LD r,r' (r or r' may be RegHL, i.e. (HL))
	OpLDR8Imm8 // LD r,n
	OpLDMemA   // LD (BC|DE|HL+|HL-),A
	OpLDAMem   // LD A,(BC|DE|HL+|HL-)
	OpLDNNA    // LD (nn),A
	OpLDANN    // LD A,(nn)
	OpLDHImm8A // LDH (n),A
	OpLDHAImm8 // LDH A,(n)
	OpLDHCA    // LD (C),A
	OpLDHAC    // LD A,(C)

	OpLDR16Imm16 // LD rr,nn
	OpLDSPHL     // LD SP,HL
	OpLDHLSPImm8 // LD HL,SP+e
	OpLDNNSP     // LD (nn),SP
	OpPUSH
	OpPOP

	OpADD8
	OpADC8
	OpSUB8
	OpSBC8
	OpAND8
	OpXOR8
	OpOR8
	OpCP8
	OpINC8
	OpDEC8

	OpINC16
	OpDEC16
	OpADDHL16
	OpADDSPImm8

	OpRLCA
	OpRRCA
	OpRLA
	OpRRA
	OpDAA
	OpCPL
	OpSCF
	OpCCF

	OpRLC
	OpRRC
	OpRL
	OpRR
	OpSLA
	OpSRA
	OpSWAP
	OpSRL
	OpBIT
	OpSET
	OpRES

	OpJPImm16
	OpJPHL
	OpJR
	OpCALL
	OpRET
	OpRETI
	OpRST
)

// IncDec8Variant distinguishes the three flavors of LD (BC|DE|HL±),A /
// LD A,(BC|DE|HL±): no pointer mutation, post-increment, or post-decrement.
type IncDec8Variant uint8

const (
	IncDecNone IncDec8Variant = iota
	IncDecInc
	IncDecDec
)

// Cond names a branch condition; CondAlways marks an unconditional branch
// instruction reusing the same Op (OpJR/OpJPImm16/OpCALL/OpRET).
type Cond uint8

const (
	CondAlways Cond = iota
	CondNZ
	CondZ
	CondNC
	CondC
)

// Instruction is the decoded form of one opcode: a discriminant plus the
// union of operand fields any variant might need. Unused fields are left
// zero; Dispatch reads only the fields relevant to Op.
type Instruction struct {
	Op Op

	Opcode   uint8 // raw first opcode byte (0xCB for every CB-prefixed op)
	CBOpcode uint8 // second byte, valid only when Op is one of the CB ops
	Prefixed bool

	Dst8, Src8   Reg8
	Dst16, Src16 Reg16
	Imm8         uint8
	SImm8        int8 // sign-extended view of Imm8, for relative/SP ops
	Imm16        uint16
	Cond         Cond
	Bit          uint8
	RST          uint8
	MemVariant   IncDec8Variant
	Src8IsImm    bool
}

// size returns the instruction's encoded length in bytes (1, 2, or 3).
func (in Instruction) size() int {
	e, ok := lookupOpcodeInfo(in.Opcode, in.Prefixed, in.CBOpcode)
	if !ok {
		return 1
	}
	return e.size
}

// duration returns the not-taken base cycle count; the
// CPU adds the taken-branch extra cycles itself when a branch is taken.
func (in Instruction) duration() int {
	e, ok := lookupOpcodeInfo(in.Opcode, in.Prefixed, in.CBOpcode)
	if !ok {
		return 4
	}
	return e.cycles
}

// Dispatch calls the Executor method corresponding to Op, passing the
// decoded operands. This is the one place that maps the tagged union
// back onto trait calls; both the CPU and the disassembler implement
// Executor against the same switch.
func (in Instruction) Dispatch(x Executor) {
	switch in.Op {
	case OpNOP:
		x.NOP()
	case OpSTOP:
		x.STOP()
	case OpHALT:
		x.HALT()
	case OpDI:
		x.DI()
	case OpEI:
		x.EI()

	case OpLDR8R8:
		x.LDR8R8(in.Dst8, in.Src8)
	case OpLDR8Imm8:
		x.LDR8Imm8(in.Dst8, in.Imm8)
	case OpLDMemA:
		x.LDMemA(in.Dst16, in.MemVariant)
	case OpLDAMem:
		x.LDAMem(in.Src16, in.MemVariant)
	case OpLDNNA:
		x.LDNNA(in.Imm16)
	case OpLDANN:
		x.LDANN(in.Imm16)
	case OpLDHImm8A:
		x.LDHImm8A(in.Imm8)
	case OpLDHAImm8:
		x.LDHAImm8(in.Imm8)
	case OpLDHCA:
		x.LDHCA()
	case OpLDHAC:
		x.LDHAC()

	case OpLDR16Imm16:
		x.LDR16Imm16(in.Dst16, in.Imm16)
	case OpLDSPHL:
		x.LDSPHL()
	case OpLDHLSPImm8:
		x.LDHLSPImm8(in.SImm8)
	case OpLDNNSP:
		x.LDNNSP(in.Imm16)
	case OpPUSH:
		x.PUSH(in.Src16)
	case OpPOP:
		x.POP(in.Dst16)

	case OpADD8:
		x.ALU8(aluAdd, in.srcValueTag())
	case OpADC8:
		x.ALU8(aluAdc, in.srcValueTag())
	case OpSUB8:
		x.ALU8(aluSub, in.srcValueTag())
	case OpSBC8:
		x.ALU8(aluSbc, in.srcValueTag())
	case OpAND8:
		x.ALU8(aluAnd, in.srcValueTag())
	case OpXOR8:
		x.ALU8(aluXor, in.srcValueTag())
	case OpOR8:
		x.ALU8(aluOr, in.srcValueTag())
	case OpCP8:
		x.ALU8(aluCp, in.srcValueTag())
	case OpINC8:
		x.INC8(in.Dst8)
	case OpDEC8:
		x.DEC8(in.Dst8)

	case OpINC16:
		x.INC16(in.Dst16)
	case OpDEC16:
		x.DEC16(in.Dst16)
	case OpADDHL16:
		x.ADDHL16(in.Src16)
	case OpADDSPImm8:
		x.ADDSPImm8(in.SImm8)

	case OpRLCA:
		x.RLCA()
	case OpRRCA:
		x.RRCA()
	case OpRLA:
		x.RLA()
	case OpRRA:
		x.RRA()
	case OpDAA:
		x.DAA()
	case OpCPL:
		x.CPL()
	case OpSCF:
		x.SCF()
	case OpCCF:
		x.CCF()

	case OpRLC:
		x.RLC(in.Dst8)
	case OpRRC:
		x.RRC(in.Dst8)
	case OpRL:
		x.RL(in.Dst8)
	case OpRR:
		x.RR(in.Dst8)
	case OpSLA:
		x.SLA(in.Dst8)
	case OpSRA:
		x.SRA(in.Dst8)
	case OpSWAP:
		x.SWAP(in.Dst8)
	case OpSRL:
		x.SRL(in.Dst8)
	case OpBIT:
		x.BIT(in.Bit, in.Dst8)
	case OpSET:
		x.SET(in.Bit, in.Dst8)
	case OpRES:
		x.RES(in.Bit, in.Dst8)

	case OpJPImm16:
		x.JP(in.Cond, in.Imm16)
	case OpJPHL:
		x.JPHL()
	case OpJR:
		x.JR(in.Cond, in.SImm8)
	case OpCALL:
		x.CALL(in.Cond, in.Imm16)
	case OpRET:
		x.RET(in.Cond)
	case OpRETI:
		x.RETI()
	case OpRST:
		x.RST(in.RST)

	default:
		x.Illegal(in.Opcode)
	}
}

// srcValueTag packages the ALU operation's right-hand operand (a register,
// (HL), or an immediate byte) into the small value the Executor's ALU8
// resolves; kept as a method on Instruction so Dispatch stays a flat switch.
func (in Instruction) srcValueTag() AluOperand {
	if in.Src8IsImm {
		return AluOperand{IsImm: true, Imm: in.Imm8}
	}
	return AluOperand{Reg: in.Src8}
}

// AluOperand is the resolved right-hand side of an 8-bit ALU instruction.
type AluOperand struct {
	Reg   Reg8
	IsImm bool
	Imm   uint8
}

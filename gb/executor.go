package gb

// aluOp names the 8-bit ALU primitive an ALU8 call performs.
type aluOp uint8

const (
	aluAdd aluOp = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

// Executor is the interface every decoded Instruction dispatches
// against. It is implemented twice: once by *CPU, with real effects on
// registers/memory/flags, and once by the disassembler (gb/disasm.go),
// which only builds a mnemonic string.
type Executor interface {
	NOP()
	STOP()
	HALT()
	DI()
	EI()

	LDR8R8(dst, src Reg8)
	LDR8Imm8(dst Reg8, imm uint8)
	LDMemA(dst Reg16, variant IncDec8Variant)
	LDAMem(src Reg16, variant IncDec8Variant)
	LDNNA(addr uint16)
	LDANN(addr uint16)
	LDHImm8A(offset uint8)
	LDHAImm8(offset uint8)
	LDHCA()
	LDHAC()

	LDR16Imm16(dst Reg16, imm uint16)
	LDSPHL()
	LDHLSPImm8(e int8)
	LDNNSP(addr uint16)
	PUSH(src Reg16)
	POP(dst Reg16)

	ALU8(op aluOp, src AluOperand)
	INC8(r Reg8)
	DEC8(r Reg8)

	INC16(r Reg16)
	DEC16(r Reg16)
	ADDHL16(src Reg16)
	ADDSPImm8(e int8)

	RLCA()
	RRCA()
	RLA()
	RRA()
	DAA()
	CPL()
	SCF()
	CCF()

	RLC(r Reg8)
	RRC(r Reg8)
	RL(r Reg8)
	RR(r Reg8)
	SLA(r Reg8)
	SRA(r Reg8)
	SWAP(r Reg8)
	SRL(r Reg8)
	BIT(bit uint8, r Reg8)
	SET(bit uint8, r Reg8)
	RES(bit uint8, r Reg8)

	JP(cond Cond, addr uint16)
	JPHL()
	JR(cond Cond, e int8)
	CALL(cond Cond, addr uint16)
	RET(cond Cond)
	RETI()
	RST(vector uint8)

	Illegal(opcode uint8)
}

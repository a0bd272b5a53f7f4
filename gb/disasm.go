package gb

import "fmt"

// reg8Names/reg16Names/condNames give assembly-style mnemonics for the
// register/condition enums.
var reg8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var reg16Names = [5]string{"BC", "DE", "HL", "SP", "AF"}
var condNames = [5]string{"", "NZ,", "Z,", "NC,", "C,"}

func r8(r Reg8) string  { return reg8Names[r] }
func r16(r Reg16) string { return reg16Names[r] }
func cc(c Cond) string  { return condNames[c] }

// disassembler is the pure pretty-printing Executor: it performs no
// register/memory mutation, only building a mnemonic string for
// whichever instruction variant Dispatch routes to it.
type disassembler struct {
	text string
}

// Disassemble decodes the instruction at addr and returns its mnemonic
// alongside its encoded size in bytes. This stays a thin, undecorated
// formatter rather than a full disassembly tool.
func Disassemble(r MemoryReader, addr uint16) (string, int, error) {
	in, err := Decode(r, addr)
	if err != nil {
		return "", 0, err
	}
	var d disassembler
	in.Dispatch(&d)
	return d.text, in.size(), nil
}

func (d *disassembler) NOP()  { d.text = "NOP" }
func (d *disassembler) STOP() { d.text = "STOP" }
func (d *disassembler) HALT() { d.text = "HALT" }
func (d *disassembler) DI()   { d.text = "DI" }
func (d *disassembler) EI()   { d.text = "EI" }

func (d *disassembler) LDR8R8(dst, src Reg8) { d.text = fmt.Sprintf("LD %s,%s", r8(dst), r8(src)) }
func (d *disassembler) LDR8Imm8(dst Reg8, imm uint8) {
	d.text = fmt.Sprintf("LD %s,%#02x", r8(dst), imm)
}
func (d *disassembler) LDMemA(dst Reg16, variant IncDec8Variant) {
	d.text = fmt.Sprintf("LD (%s%s),A", r16(dst), incDecSuffix(variant))
}
func (d *disassembler) LDAMem(src Reg16, variant IncDec8Variant) {
	d.text = fmt.Sprintf("LD A,(%s%s)", r16(src), incDecSuffix(variant))
}
func (d *disassembler) LDNNA(addr uint16)    { d.text = fmt.Sprintf("LD (%#04x),A", addr) }
func (d *disassembler) LDANN(addr uint16)    { d.text = fmt.Sprintf("LD A,(%#04x)", addr) }
func (d *disassembler) LDHImm8A(offset uint8) { d.text = fmt.Sprintf("LDH (%#02x),A", offset) }
func (d *disassembler) LDHAImm8(offset uint8) { d.text = fmt.Sprintf("LDH A,(%#02x)", offset) }
func (d *disassembler) LDHCA()                { d.text = "LD (C),A" }
func (d *disassembler) LDHAC()                { d.text = "LD A,(C)" }

func (d *disassembler) LDR16Imm16(dst Reg16, imm uint16) {
	d.text = fmt.Sprintf("LD %s,%#04x", r16(dst), imm)
}
func (d *disassembler) LDSPHL()             { d.text = "LD SP,HL" }
func (d *disassembler) LDHLSPImm8(e int8)   { d.text = fmt.Sprintf("LD HL,SP%+d", e) }
func (d *disassembler) LDNNSP(addr uint16)  { d.text = fmt.Sprintf("LD (%#04x),SP", addr) }
func (d *disassembler) PUSH(src Reg16)      { d.text = fmt.Sprintf("PUSH %s", r16(src)) }
func (d *disassembler) POP(dst Reg16)       { d.text = fmt.Sprintf("POP %s", r16(dst)) }

var aluMnemonics = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

func (d *disassembler) ALU8(op aluOp, src AluOperand) {
	operand := r8(src.Reg)
	if src.IsImm {
		operand = fmt.Sprintf("%#02x", src.Imm)
	}
	d.text = aluMnemonics[op] + operand
}
func (d *disassembler) INC8(r Reg8) { d.text = fmt.Sprintf("INC %s", r8(r)) }
func (d *disassembler) DEC8(r Reg8) { d.text = fmt.Sprintf("DEC %s", r8(r)) }

func (d *disassembler) INC16(r Reg16)      { d.text = fmt.Sprintf("INC %s", r16(r)) }
func (d *disassembler) DEC16(r Reg16)      { d.text = fmt.Sprintf("DEC %s", r16(r)) }
func (d *disassembler) ADDHL16(src Reg16)  { d.text = fmt.Sprintf("ADD HL,%s", r16(src)) }
func (d *disassembler) ADDSPImm8(e int8)   { d.text = fmt.Sprintf("ADD SP,%+d", e) }

func (d *disassembler) RLCA() { d.text = "RLCA" }
func (d *disassembler) RRCA() { d.text = "RRCA" }
func (d *disassembler) RLA()  { d.text = "RLA" }
func (d *disassembler) RRA()  { d.text = "RRA" }
func (d *disassembler) DAA()  { d.text = "DAA" }
func (d *disassembler) CPL()  { d.text = "CPL" }
func (d *disassembler) SCF()  { d.text = "SCF" }
func (d *disassembler) CCF()  { d.text = "CCF" }

func (d *disassembler) RLC(r Reg8)  { d.text = fmt.Sprintf("RLC %s", r8(r)) }
func (d *disassembler) RRC(r Reg8)  { d.text = fmt.Sprintf("RRC %s", r8(r)) }
func (d *disassembler) RL(r Reg8)   { d.text = fmt.Sprintf("RL %s", r8(r)) }
func (d *disassembler) RR(r Reg8)   { d.text = fmt.Sprintf("RR %s", r8(r)) }
func (d *disassembler) SLA(r Reg8)  { d.text = fmt.Sprintf("SLA %s", r8(r)) }
func (d *disassembler) SRA(r Reg8)  { d.text = fmt.Sprintf("SRA %s", r8(r)) }
func (d *disassembler) SWAP(r Reg8) { d.text = fmt.Sprintf("SWAP %s", r8(r)) }
func (d *disassembler) SRL(r Reg8)  { d.text = fmt.Sprintf("SRL %s", r8(r)) }
func (d *disassembler) BIT(bit uint8, r Reg8) { d.text = fmt.Sprintf("BIT %d,%s", bit, r8(r)) }
func (d *disassembler) SET(bit uint8, r Reg8) { d.text = fmt.Sprintf("SET %d,%s", bit, r8(r)) }
func (d *disassembler) RES(bit uint8, r Reg8) { d.text = fmt.Sprintf("RES %d,%s", bit, r8(r)) }

func (d *disassembler) JP(cond Cond, addr uint16) { d.text = fmt.Sprintf("JP %s%#04x", cc(cond), addr) }
func (d *disassembler) JPHL()                     { d.text = "JP (HL)" }
func (d *disassembler) JR(cond Cond, e int8)      { d.text = fmt.Sprintf("JR %s%+d", cc(cond), e) }
func (d *disassembler) CALL(cond Cond, addr uint16) {
	d.text = fmt.Sprintf("CALL %s%#04x", cc(cond), addr)
}
func (d *disassembler) RET(cond Cond) { d.text = fmt.Sprintf("RET %s", trimComma(cc(cond))) }
func (d *disassembler) RETI()         { d.text = "RETI" }
func (d *disassembler) RST(vector uint8) { d.text = fmt.Sprintf("RST %#02x", vector) }

func (d *disassembler) Illegal(opcode uint8) { d.text = fmt.Sprintf("ILLEGAL %#02x", opcode) }

func incDecSuffix(v IncDec8Variant) string {
	switch v {
	case IncDecInc:
		return "+"
	case IncDecDec:
		return "-"
	default:
		return ""
	}
}

func trimComma(s string) string {
	if len(s) > 0 && s[len(s)-1] == ',' {
		return s[:len(s)-1]
	}
	return s
}

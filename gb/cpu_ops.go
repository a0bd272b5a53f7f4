package gb

// readR8 resolves an 8-bit operand, special-casing RegHL as the memory
// cell pointed to by HL (the r8 operand field's pseudo-register slot).
func (c *CPU) readR8(r Reg8) uint8 {
	if r == RegHL {
		return c.mem.ReadMemory(c.Regs.HL())
	}
	return *c.Regs.plainReg8(r)
}

func (c *CPU) writeR8(r Reg8, v uint8) {
	if r == RegHL {
		c.mem.WriteMemory(c.Regs.HL(), v)
		return
	}
	*c.Regs.plainReg8(r) = v
}

func (c *CPU) condTrue(cond Cond) bool {
	switch cond {
	case CondAlways:
		return true
	case CondNZ:
		return !c.Regs.Flag(FlagZero)
	case CondZ:
		return c.Regs.Flag(FlagZero)
	case CondNC:
		return !c.Regs.Flag(FlagCarry)
	case CondC:
		return c.Regs.Flag(FlagCarry)
	}
	return false
}

func (c *CPU) NOP()  {}
func (c *CPU) STOP() {}

// HALT suspends progress until (IE & IF) != 0. The hardware HALT bug
// (HALT with IME=0 and a pending interrupt skips the next opcode byte)
// is not modeled.
func (c *CPU) HALT() { c.Halted = true }

func (c *CPU) DI() {
	c.IME = false
	c.imeEnableCountdown = 0
}

func (c *CPU) EI() { c.imeEnableCountdown = 2 }

func (c *CPU) LDR8R8(dst, src Reg8) { c.writeR8(dst, c.readR8(src)) }
func (c *CPU) LDR8Imm8(dst Reg8, imm uint8) { c.writeR8(dst, imm) }

func (c *CPU) LDMemA(dst Reg16, variant IncDec8Variant) {
	addr := c.Regs.Pair(dst)
	c.mem.WriteMemory(addr, c.Regs.A)
	c.applyIncDec(variant)
}

func (c *CPU) LDAMem(src Reg16, variant IncDec8Variant) {
	addr := c.Regs.Pair(src)
	c.Regs.A = c.mem.ReadMemory(addr)
	c.applyIncDec(variant)
}

func (c *CPU) applyIncDec(variant IncDec8Variant) {
	switch variant {
	case IncDecInc:
		c.Regs.SetHL(c.Regs.HL() + 1)
	case IncDecDec:
		c.Regs.SetHL(c.Regs.HL() - 1)
	}
}

func (c *CPU) LDNNA(addr uint16) { c.mem.WriteMemory(addr, c.Regs.A) }
func (c *CPU) LDANN(addr uint16) { c.Regs.A = c.mem.ReadMemory(addr) }

func (c *CPU) LDHImm8A(offset uint8) { c.mem.WriteMemory(0xFF00+uint16(offset), c.Regs.A) }
func (c *CPU) LDHAImm8(offset uint8) { c.Regs.A = c.mem.ReadMemory(0xFF00 + uint16(offset)) }
func (c *CPU) LDHCA()                { c.mem.WriteMemory(0xFF00+uint16(c.Regs.C), c.Regs.A) }
func (c *CPU) LDHAC()                { c.Regs.A = c.mem.ReadMemory(0xFF00 + uint16(c.Regs.C)) }

func (c *CPU) LDR16Imm16(dst Reg16, imm uint16) { c.Regs.SetPair(dst, imm) }
func (c *CPU) LDSPHL()                          { c.Regs.SP = c.Regs.HL() }

// LDHLSPImm8 implements "LD HL,SP+e": flags follow the unsigned low-byte
// add, not the full signed 16-bit add.
func (c *CPU) LDHLSPImm8(e int8) {
	result, half, carry := addSPSigned(c.Regs.SP, e)
	c.Regs.SetHL(result)
	c.Regs.SetFlags(false, false, half, carry)
}

func (c *CPU) LDNNSP(addr uint16) {
	c.mem.WriteMemory(addr, uint8(c.Regs.SP))
	c.mem.WriteMemory(addr+1, uint8(c.Regs.SP>>8))
}

func (c *CPU) PUSH(src Reg16) { c.pushAny(c.Regs.Pair(src)) }
func (c *CPU) POP(dst Reg16)  { c.Regs.SetPair(dst, c.popAny()) }

func (c *CPU) INC16(r Reg16) { c.Regs.SetPair(r, c.Regs.Pair(r)+1) }
func (c *CPU) DEC16(r Reg16) { c.Regs.SetPair(r, c.Regs.Pair(r)-1) }

// ADDHL16 adds a 16-bit pair into HL: Subtract=0, HalfCarry from bit 11,
// Carry from bit 15, Zero unchanged.
func (c *CPU) ADDHL16(src Reg16) {
	a, b := c.Regs.HL(), c.Regs.Pair(src)
	sum := uint32(a) + uint32(b)
	half := (a&0x0FFF)+(b&0x0FFF) > 0x0FFF
	carry := sum > 0xFFFF
	c.Regs.SetHL(uint16(sum))
	c.Regs.SetFlag(FlagSubtract, false)
	c.Regs.SetFlag(FlagHalfCarry, half)
	c.Regs.SetFlag(FlagCarry, carry)
}

func (c *CPU) ADDSPImm8(e int8) {
	result, half, carry := addSPSigned(c.Regs.SP, e)
	c.Regs.SP = result
	c.Regs.SetFlags(false, false, half, carry)
}

// addSPSigned implements the "unsigned low-byte add" flag semantics
// shared by ADD SP,e and LD HL,SP+e.
func addSPSigned(sp uint16, e int8) (result uint16, half, carry bool) {
	lo := uint8(sp)
	imm := uint8(e)
	half = (lo&0x0F)+(imm&0x0F) > 0x0F
	carry = uint16(lo)+uint16(imm) > 0xFF
	result = uint16(int32(sp) + int32(e))
	return
}

func (c *CPU) JP(cond Cond, addr uint16) {
	if c.condTrue(cond) {
		c.Regs.PC = addr
		if cond != CondAlways {
			c.addCycles(4)
		}
	}
}

func (c *CPU) JPHL() { c.Regs.PC = c.Regs.HL() }

func (c *CPU) JR(cond Cond, e int8) {
	if c.condTrue(cond) {
		c.Regs.PC = uint16(int32(c.Regs.PC) + int32(e))
		if cond != CondAlways {
			c.addCycles(4)
		}
	}
}

func (c *CPU) CALL(cond Cond, addr uint16) {
	if c.condTrue(cond) {
		c.pushAny(c.Regs.PC)
		c.pushFrame(c.Regs.PC)
		c.Regs.PC = addr
		if cond != CondAlways {
			c.addCycles(12)
		}
	}
}

func (c *CPU) RET(cond Cond) {
	if c.condTrue(cond) {
		c.Regs.PC = c.popAny()
		c.popFrame()
		if cond != CondAlways {
			c.addCycles(12)
		}
	}
}

func (c *CPU) RETI() {
	c.Regs.PC = c.popAny()
	c.popFrame()
	c.IME = true
	c.imeEnableCountdown = 0
}

func (c *CPU) RST(vector uint8) {
	c.pushAny(c.Regs.PC)
	c.pushFrame(c.Regs.PC)
	c.Regs.PC = uint16(vector)
}

// Illegal records a crash for an undefined opcode fetched mid-dispatch
// (reached only if Decode itself somehow let one through).
func (c *CPU) Illegal(opcode uint8) {
	c.CrashMessage = (&CrashError{Operation: "execute", Details: "undefined opcode", PC: c.Regs.PC}).Error()
}

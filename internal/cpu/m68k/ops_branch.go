package m68k

// group6 implements BRA, BSR, and the 14 Bcc conditional branches. An
// 8-bit displacement of 0 means the real displacement is the following
// extension word; an 8-bit displacement of -1 (68020's 32-bit form) is
// not supported and falls through to illegal instruction.
func (c *CPU) group6(opcode uint16) int {
	cond := uint8((opcode >> 8) & 0xF)
	disp8 := int8(opcode & 0xFF)
	base := c.Reg.PC // address of the first extension word, if any

	var disp int32
	switch disp8 {
	case 0:
		w, _ := c.fetch16()
		disp = int32(int16(w))
	case -1:
		c.raiseException(VecIllegalInstruction)
		return 4
	default:
		disp = int32(disp8)
	}

	target := uint32(int32(base) + disp)

	if cond == 1 { // BSR
		c.push32(c.Reg.PC)
		c.Reg.PC = target
		return 18
	}
	if cond == 0 || c.ccrCondition(cond) { // BRA or taken Bcc
		c.Reg.PC = target
		return 10
	}
	return 8
}

// group5 implements ADDQ/SUBQ, Scc, and DBcc, distinguished by the size
// field: 11 selects Scc/DBcc, anything else selects the quick add/sub.
func (c *CPU) group5(opcode uint16) int {
	sizeBits := (opcode >> 6) & 3
	mode := uint8((opcode >> 3) & 7)
	reg := uint8(opcode & 7)

	if sizeBits == 3 {
		cond := uint8((opcode >> 8) & 0xF)
		if mode == 1 {
			return c.execDBcc(cond, reg)
		}
		return c.execScc(cond, mode, reg)
	}

	sz, _ := decodeSize(sizeBits)
	data := uint32((opcode >> 9) & 7)
	if data == 0 {
		data = 8
	}
	sub := opcode&0x0100 != 0

	if mode == 1 { // An destination: full 32-bit, CCR unaffected
		if sub {
			c.Reg.A[reg] -= data
		} else {
			c.Reg.A[reg] += data
		}
		return 8
	}

	dest := c.resolveEA(mode, reg, sz)
	a := c.readEA(dest, sz)
	var result uint32
	var carry, overflow bool
	if sub {
		result, carry, overflow = subOverflowCarry(a, data, sz)
	} else {
		result, carry, overflow = addOverflowCarry(a, data, sz)
	}
	c.writeEA(dest, sz, result)
	c.setArithFlags(result, sz, overflow, carry)
	return 8
}

// execScc sets an EA byte to all-ones if the condition holds, else
// all-zeros. CCR is never modified.
func (c *CPU) execScc(cond uint8, mode, reg uint8) int {
	dest := c.resolveEA(mode, reg, Byte)
	if c.ccrCondition(cond) {
		c.writeEA(dest, Byte, 0xFF)
	} else {
		c.writeEA(dest, Byte, 0)
	}
	return 6
}

// execDBcc implements DBcc: if the condition is false, decrement the
// low word of Dn and branch while it is not -1.
func (c *CPU) execDBcc(cond uint8, reg uint8) int {
	disp, _ := c.fetch16()
	if c.ccrCondition(cond) {
		return 12
	}
	lo := int16(c.Reg.D[reg]) - 1
	c.Reg.D[reg] = (c.Reg.D[reg] &^ 0xFFFF) | uint32(uint16(lo))
	if lo != -1 {
		c.Reg.PC = uint32(int32(c.Reg.PC) - 2 + int32(int16(disp)))
		return 10
	}
	return 14
}

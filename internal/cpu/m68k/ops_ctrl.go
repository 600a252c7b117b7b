package m68k

// group4 implements the miscellaneous opcode group: NEGX, MOVE
// to/from SR, MOVE to CCR, CLR, NEG, NOT, CHK, LEA, PEA, SWAP, EXT, MOVEM,
// TST, TRAP, LINK, UNLK, MOVE USP, RESET, NOP, STOP, RTE, RTS, TRAPV, RTR,
// JSR, JMP. NBCD and TAS are not implemented (§ DESIGN.md), and MOVE from
// CCR is not decoded: its CLR size-3 slot raises illegal instruction.
func (c *CPU) group4(opcode uint16) int {
	mode := uint8((opcode >> 3) & 7)
	reg := uint8(opcode & 7)

	switch {
	case opcode&0xFFF0 == 0x4E40: // TRAP #n
		return c.execTrap(uint8(opcode & 0xF))
	case opcode&0xFFF8 == 0x4E50: // LINK
		return c.execLink(reg)
	case opcode&0xFFF8 == 0x4E58: // UNLK
		return c.execUnlk(reg)
	case opcode&0xFFF8 == 0x4E60: // MOVE An,USP
		return c.execMoveUSP(reg, true)
	case opcode&0xFFF8 == 0x4E68: // MOVE USP,An
		return c.execMoveUSP(reg, false)
	case opcode == 0x4E70: // RESET
		if !c.requireSupervisor() {
			return 4
		}
		return 132
	case opcode == 0x4E71: // NOP
		return 4
	case opcode == 0x4E72: // STOP #imm
		imm, _ := c.fetch16()
		if !c.requireSupervisor() {
			return 4
		}
		c.Reg.SR = imm
		c.status = StatusStopped
		return 4
	case opcode == 0x4E73: // RTE
		if !c.requireSupervisor() {
			return 4
		}
		c.returnFromException()
		return 20
	case opcode == 0x4E75: // RTS
		c.Reg.PC = c.pop32()
		return 16
	case opcode == 0x4E76: // TRAPV
		if c.Reg.SR&SROverflow != 0 {
			c.raiseException(VecTRAPV)
		}
		return 4
	case opcode == 0x4E77: // RTR
		ccr := c.pop16()
		c.Reg.SR = (c.Reg.SR &^ CCRMask) | (ccr & CCRMask)
		c.Reg.PC = c.pop32()
		return 20
	case opcode&0xFFC0 == 0x4E80: // JSR
		return c.execJsr(mode, reg)
	case opcode&0xFFC0 == 0x4EC0: // JMP
		return c.execJmp(mode, reg)
	case opcode&0xFFF8 == 0x4840 && mode == 0: // SWAP
		return c.execSwap(reg)
	case opcode&0xFFC0 == 0x4840: // PEA
		return c.execPea(mode, reg)
	case opcode&0xFFF8 == 0x4880: // EXT.W
		return c.execExt(reg, false)
	case opcode&0xFFF8 == 0x48C0: // EXT.L
		return c.execExt(reg, true)
	case opcode&0xFFC0 == 0x4800: // NBCD (not implemented)
		c.raiseException(VecIllegalInstruction)
		return 4
	case opcode&0xFB80 == 0x4880: // MOVEM
		regToMem := opcode&0x0400 == 0
		sz := Word
		if opcode&0x0040 != 0 {
			sz = Long
		}
		return c.execMovem(regToMem, sz, mode, reg)
	case opcode&0xF1C0 == 0x4180: // CHK
		rx := uint8((opcode >> 9) & 7)
		return c.execChk(rx, mode, reg)
	case opcode&0xF1C0 == 0x41C0: // LEA
		areg := uint8((opcode >> 9) & 7)
		return c.execLea(areg, mode, reg)
	case opcode&0xFF00 == 0x4A00: // TST (size==3 is TAS, not implemented)
		sizeBits := (opcode >> 6) & 3
		if sizeBits == 3 {
			c.raiseException(VecIllegalInstruction)
			return 4
		}
		sz, _ := decodeSize(sizeBits)
		src := c.resolveEA(mode, reg, sz)
		v := c.readEA(src, sz)
		c.setNZ(v, sz)
		c.setCCR(SROverflow, false)
		c.setCCR(SRCarry, false)
		return 4
	case opcode&0xFF00 == 0x4000: // NEGX / MOVE from SR
		sizeBits := (opcode >> 6) & 3
		if sizeBits == 3 {
			return c.execMoveFromSR(mode, reg)
		}
		sz, _ := decodeSize(sizeBits)
		return c.execNegx(mode, reg, sz)
	case opcode&0xFF00 == 0x4200: // CLR
		sizeBits := (opcode >> 6) & 3
		sz, ok := decodeSize(sizeBits)
		if !ok {
			c.raiseException(VecIllegalInstruction)
			return 4
		}
		return c.execClr(mode, reg, sz)
	case opcode&0xFF00 == 0x4400: // NEG / MOVE to CCR
		sizeBits := (opcode >> 6) & 3
		if sizeBits == 3 {
			return c.execMoveToCCR(mode, reg)
		}
		sz, _ := decodeSize(sizeBits)
		return c.execNeg(mode, reg, sz)
	case opcode&0xFF00 == 0x4600: // NOT / MOVE to SR
		sizeBits := (opcode >> 6) & 3
		if sizeBits == 3 {
			return c.execMoveToSR(mode, reg)
		}
		sz, _ := decodeSize(sizeBits)
		return c.execNot(mode, reg, sz)
	}

	c.raiseException(VecIllegalInstruction)
	return 4
}

func (c *CPU) execNegx(mode, reg uint8, sz Size) int {
	dest := c.resolveEA(mode, reg, sz)
	a := c.readEA(dest, sz)
	x := uint32(0)
	if c.Reg.SR&SRExtend != 0 {
		x = 1
	}
	result, carry, overflow := subOverflowCarry(0, a+x, sz)
	c.writeEA(dest, sz, result)
	c.setNZIfNonZero(result, sz)
	c.setCCR(SROverflow, overflow)
	c.setCCR(SRCarry, carry)
	c.setCCR(SRExtend, carry)
	return 4
}

func (c *CPU) execNeg(mode, reg uint8, sz Size) int {
	dest := c.resolveEA(mode, reg, sz)
	a := c.readEA(dest, sz)
	result, carry, overflow := subOverflowCarry(0, a, sz)
	c.writeEA(dest, sz, result)
	c.setArithFlags(result, sz, overflow, carry)
	return 4
}

func (c *CPU) execNot(mode, reg uint8, sz Size) int {
	dest := c.resolveEA(mode, reg, sz)
	v := (^c.readEA(dest, sz)) & sz.Mask()
	c.writeEA(dest, sz, v)
	c.setNZ(v, sz)
	c.setCCR(SROverflow, false)
	c.setCCR(SRCarry, false)
	return 4
}

func (c *CPU) execChk(rx uint8, mode, reg uint8) int {
	src := c.resolveEA(mode, reg, Word)
	bound := int16(c.readEA(src, Word))
	v := int16(c.Reg.D[rx])
	if v < 0 {
		c.setCCR(SRNegative, true)
		c.raiseException(VecCHK)
	} else if v > bound {
		c.setCCR(SRNegative, false)
		c.raiseException(VecCHK)
	}
	return 10
}

func (c *CPU) execTrap(vector uint8) int {
	c.raiseException(uint8(VecTrapBase) + vector)
	return 34
}

func (c *CPU) execLink(areg uint8) int {
	disp, _ := c.fetch16()
	c.push32(c.Reg.A[areg])
	c.Reg.A[areg] = c.Reg.A[7]
	c.Reg.A[7] = uint32(int32(c.Reg.A[7]) + int32(int16(disp)))
	return 16
}

func (c *CPU) execUnlk(areg uint8) int {
	c.Reg.A[7] = c.Reg.A[areg]
	c.Reg.A[areg] = c.pop32()
	return 12
}

func (c *CPU) execJsr(mode, reg uint8) int {
	addr, isMem := c.resolveEAAddr(mode, reg)
	if !isMem {
		c.raiseException(VecIllegalInstruction)
		return 4
	}
	c.push32(c.Reg.PC)
	c.Reg.PC = addr
	return 16
}

func (c *CPU) execJmp(mode, reg uint8) int {
	addr, isMem := c.resolveEAAddr(mode, reg)
	if !isMem {
		c.raiseException(VecIllegalInstruction)
		return 4
	}
	c.Reg.PC = addr
	return 8
}

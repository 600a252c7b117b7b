package m68k

// groupMove implements MOVE and MOVEA (decode groups 1-3). Per §4.4,
// address-register destinations (MOVEA) never touch CCR and sign-extend
// a word source to 32 bits before loading An.
func (c *CPU) groupMove(opcode uint16, sz Size) int {
	destReg := uint8((opcode >> 9) & 7)
	destMode := uint8((opcode >> 6) & 7)
	srcMode := uint8((opcode >> 3) & 7)
	srcReg := uint8(opcode & 7)

	src := c.resolveEA(srcMode, srcReg, sz)
	val := c.readEA(src, sz)

	if destMode == 1 { // MOVEA: address register direct destination
		if sz == Word {
			val = uint32(int32(int16(val)))
		}
		c.Reg.A[destReg] = val
		return 4
	}

	dest := c.resolveEA(destMode, destReg, sz)
	c.writeEA(dest, sz, val)
	c.setNZ(val, sz)
	c.setCCR(SROverflow, false)
	c.setCCR(SRCarry, false)
	return 4
}

// execMoveq implements MOVEQ #imm,Dn: an 8-bit immediate sign-extended
// to 32 bits, loaded in 4 cycles, setting N/Z and clearing V/C.
func (c *CPU) execMoveq(opcode uint16) int {
	reg := uint8((opcode >> 9) & 7)
	data := int32(int8(opcode & 0xFF))
	c.Reg.D[reg] = uint32(data)
	c.setNZ(uint32(data), Long)
	c.setCCR(SROverflow, false)
	c.setCCR(SRCarry, false)
	return 4
}

// execClr implements CLR: store zero and set Z, clearing N/V/C (X is
// untouched per §4.4's non-arithmetic logic rule).
func (c *CPU) execClr(mode, reg uint8, sz Size) int {
	dest := c.resolveEA(mode, reg, sz)
	c.writeEA(dest, sz, 0)
	c.setNZ(0, sz)
	c.setCCR(SROverflow, false)
	c.setCCR(SRCarry, false)
	return 4
}

// execLea implements LEA: load a computed address into an address
// register without dereferencing it.
func (c *CPU) execLea(areg, mode, r uint8) int {
	addr, isMem := c.resolveEAAddr(mode, r)
	if !isMem {
		c.raiseException(VecIllegalInstruction)
		return 4
	}
	c.Reg.A[areg] = addr
	return 4
}

// execPea implements PEA: push a computed address onto the stack.
func (c *CPU) execPea(mode, r uint8) int {
	addr, isMem := c.resolveEAAddr(mode, r)
	if !isMem {
		c.raiseException(VecIllegalInstruction)
		return 4
	}
	c.push32(addr)
	return 12
}

// execSwap implements SWAP Dn: exchange the high and low words.
func (c *CPU) execSwap(reg uint8) int {
	v := c.Reg.D[reg]
	c.Reg.D[reg] = v<<16 | v>>16
	c.setNZ(c.Reg.D[reg], Long)
	c.setCCR(SROverflow, false)
	c.setCCR(SRCarry, false)
	return 4
}

// execExt implements EXT.W (byte->word) and EXT.L (word->long) sign
// extension.
func (c *CPU) execExt(reg uint8, toLong bool) int {
	if toLong {
		v := int32(int16(c.Reg.D[reg]))
		c.Reg.D[reg] = uint32(v)
		c.setNZ(uint32(v), Long)
	} else {
		v := int16(int8(c.Reg.D[reg]))
		c.Reg.D[reg] = (c.Reg.D[reg] &^ 0xFFFF) | uint32(uint16(v))
		c.setNZ(uint32(uint16(v)), Word)
	}
	c.setCCR(SROverflow, false)
	c.setCCR(SRCarry, false)
	return 4
}

// execExg implements EXG: swap two 32-bit registers, either two data
// registers, two address registers, or one of each.
func (c *CPU) execExg(opcode uint16) int {
	rx := uint8((opcode >> 9) & 7)
	ry := uint8(opcode & 7)
	mode := (opcode >> 3) & 0x1F
	switch mode {
	case 0x08: // Dx,Dy
		c.Reg.D[rx], c.Reg.D[ry] = c.Reg.D[ry], c.Reg.D[rx]
	case 0x09: // Ax,Ay
		c.Reg.A[rx], c.Reg.A[ry] = c.Reg.A[ry], c.Reg.A[rx]
	case 0x11: // Dx,Ay
		c.Reg.D[rx], c.Reg.A[ry] = c.Reg.A[ry], c.Reg.D[rx]
	default:
		c.raiseException(VecIllegalInstruction)
	}
	return 6
}

// execMovem implements MOVEM (§4.4): register-to-memory and
// memory-to-register are distinct operations. Pre-decrement stores
// registers A7..A0,D7..D0, decrementing the address by the operand size
// BEFORE each store. Post-increment (and all other memory-to-register
// modes) reads D0..D7,A0..A7, incrementing AFTER each load.
func (c *CPU) execMovem(regToMem bool, sz Size, mode, reg uint8) int {
	mask, _ := c.fetch16()
	count := 0

	if regToMem && mode == 4 { // predecrement: reversed mask, A7..A0,D7..D0
		addr := c.Reg.A[reg]
		for i := 0; i < 16; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			count++
			addr -= uint32(sz)
			var v uint32
			if i < 8 {
				v = c.Reg.A[7-i]
			} else {
				v = c.Reg.D[15-i]
			}
			c.writeMem(addr, sz, v)
		}
		c.Reg.A[reg] = addr
		return 8 + count*4
	}

	if regToMem {
		addr, isMem := c.resolveEAAddr(mode, reg)
		if !isMem {
			c.raiseException(VecIllegalInstruction)
			return 8
		}
		for i := 0; i < 16; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			count++
			var v uint32
			if i < 8 {
				v = c.Reg.D[i]
			} else {
				v = c.Reg.A[i-8]
			}
			c.writeMem(addr, sz, v)
			addr += uint32(sz)
		}
		return 8 + count*4
	}

	// Memory to register: always D0..D7,A0..A7 in ascending mask order.
	var addr uint32
	if mode == 3 { // postincrement
		addr = c.Reg.A[reg]
	} else {
		a, isMem := c.resolveEAAddr(mode, reg)
		if !isMem {
			c.raiseException(VecIllegalInstruction)
			return 8
		}
		addr = a
	}
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		count++
		v, _ := c.readMem(addr, sz)
		if sz == Word {
			v = uint32(int32(int16(v)))
		}
		if i < 8 {
			c.Reg.D[i] = v
		} else {
			c.Reg.A[i-8] = v
		}
		addr += uint32(sz)
	}
	if mode == 3 {
		c.Reg.A[reg] = addr
	}
	return 8 + count*4
}

// execMovep implements MOVEP: transfers alternate bytes of a data
// register to/from successive odd/even addresses, used by the Genesis
// Z80 bus bridge to move bytes over a word-wide path.
func (c *CPU) execMovep(opcode uint16) int {
	dreg := uint8((opcode >> 9) & 7)
	areg := uint8(opcode & 7)
	mode := (opcode >> 6) & 7
	disp, _ := c.fetch16()
	addr := uint32(int32(c.Reg.A[areg]) + int32(int16(disp)))

	toMem := mode == 6 || mode == 7
	long := mode == 7 || mode == 5

	if toMem {
		v := c.Reg.D[dreg]
		shift := 24
		if !long {
			shift = 8
		}
		for shift >= 0 {
			c.writeMem(addr, Byte, (v>>uint(shift))&0xFF)
			addr += 2
			shift -= 8
		}
	} else {
		var v uint32
		n := 2
		if long {
			n = 4
		}
		for i := 0; i < n; i++ {
			b, _ := c.readMem(addr, Byte)
			v = v<<8 | (b & 0xFF)
			addr += 2
		}
		if long {
			c.Reg.D[dreg] = v
		} else {
			c.Reg.D[dreg] = (c.Reg.D[dreg] &^ 0xFFFF) | (v & 0xFFFF)
		}
	}
	return 16
}

// execMoveToCCR / execMoveFromCCR / execMoveToSR / execMoveFromSR
// implement the privileged/unprivileged SR-CCR transfer instructions.
// Touching SR from user mode is a privilege violation (§7).
func (c *CPU) execMoveToCCR(mode, reg uint8) int {
	src := c.resolveEA(mode, reg, Word)
	v := c.readEA(src, Word)
	c.Reg.SR = (c.Reg.SR &^ CCRMask) | uint16(v)&CCRMask
	return 12
}

func (c *CPU) execMoveFromCCR(mode, reg uint8) int {
	dest := c.resolveEA(mode, reg, Word)
	c.writeEA(dest, Word, uint32(c.ccr()))
	return 4
}

func (c *CPU) execMoveToSR(mode, reg uint8) int {
	if !c.Reg.Supervisor() {
		c.raiseException(VecPrivilegeViolation)
		return 4
	}
	src := c.resolveEA(mode, reg, Word)
	v := c.readEA(src, Word)
	c.Reg.SR = uint16(v)
	return 12
}

func (c *CPU) execMoveFromSR(mode, reg uint8) int {
	dest := c.resolveEA(mode, reg, Word)
	c.writeEA(dest, Word, uint32(c.Reg.SR))
	return 8
}

func (c *CPU) execMoveUSP(reg uint8, toUSP bool) int {
	if !c.Reg.Supervisor() {
		c.raiseException(VecPrivilegeViolation)
		return 4
	}
	if toUSP {
		c.Reg.USP = c.Reg.A[reg]
	} else {
		c.Reg.A[reg] = c.Reg.USP
	}
	return 4
}

package m68k

// groupAddSub implements groups 9 (SUB/SUBA/SUBX) and 13/0xD (ADD/ADDA/
// ADDX), selected by the sub bool. The opmode field (bits 8-6) selects
// direction and size; opmode 3/7 are always the address-register forms
// (ADDA/SUBA), which sign-extend a word source and never touch CCR.
// opmode 4-6 with EA mode 0 is the register-direct ADDX/SUBX form (the
// memory-indirect predecrement ADDX/SUBX form is not implemented; see
// DESIGN.md).
func (c *CPU) groupAddSub(opcode uint16, add bool) int {
	rx := uint8((opcode >> 9) & 7)
	opmode := (opcode >> 6) & 7
	mode := uint8((opcode >> 3) & 7)
	reg := uint8(opcode & 7)

	if opmode == 3 || opmode == 7 {
		sz := Word
		if opmode == 7 {
			sz = Long
		}
		src := c.resolveEA(mode, reg, sz)
		v := c.readEA(src, sz)
		if sz == Word {
			v = uint32(int32(int16(v)))
		}
		if add {
			c.Reg.A[rx] += v
		} else {
			c.Reg.A[rx] -= v
		}
		return 6
	}

	sz, ok := decodeSize(opmode & 3)
	if !ok {
		c.raiseException(VecIllegalInstruction)
		return 4
	}
	dnToEA := opmode >= 4

	if dnToEA && mode == 0 { // ADDX/SUBX Dn,Dn: dest=Rx, src=Ry
		dst := c.Reg.D[rx] & sz.Mask()
		src := c.Reg.D[reg] & sz.Mask()
		x := uint64(0)
		if c.Reg.SR&SRExtend != 0 {
			x = 1
		}
		mask64 := uint64(sz.Mask())
		var full uint64
		var carry bool
		if add {
			full = uint64(dst) + uint64(src) + x
			carry = full > mask64
		} else {
			full = (uint64(dst) - uint64(src) - x) & (mask64*2 + 1)
			carry = uint64(dst) < uint64(src)+x
		}
		result := uint32(full) & sz.Mask()
		signD := dst&sz.SignBit() != 0
		signS := src&sz.SignBit() != 0
		signR := result&sz.SignBit() != 0
		var overflow bool
		if add {
			overflow = signD == signS && signR != signD
		} else {
			overflow = signD != signS && signR != signD
		}
		c.Reg.D[rx] = (c.Reg.D[rx] &^ sz.Mask()) | result
		c.setNZIfNonZero(result, sz)
		c.setCCR(SROverflow, overflow)
		c.setCCR(SRCarry, carry)
		c.setCCR(SRExtend, carry)
		return 4
	}

	if dnToEA {
		dest := c.resolveEA(mode, reg, sz)
		a := c.readEA(dest, sz)
		b := c.Reg.D[rx] & sz.Mask()
		var result uint32
		var carry, overflow bool
		if add {
			result, carry, overflow = addOverflowCarry(a, b, sz)
		} else {
			result, carry, overflow = subOverflowCarry(a, b, sz)
		}
		c.writeEA(dest, sz, result)
		c.setArithFlags(result, sz, overflow, carry)
		return 8
	}

	src := c.resolveEA(mode, reg, sz)
	a := c.Reg.D[rx] & sz.Mask()
	b := c.readEA(src, sz)
	var result uint32
	var carry, overflow bool
	if add {
		result, carry, overflow = addOverflowCarry(a, b, sz)
	} else {
		result, carry, overflow = subOverflowCarry(a, b, sz)
	}
	c.Reg.D[rx] = (c.Reg.D[rx] &^ sz.Mask()) | result
	c.setArithFlags(result, sz, overflow, carry)
	return 4
}

// setNZIfNonZero implements the ADDX/SUBX Z-flag rule: Z is cleared if
// the result is non-zero but left SET (not forced) if the result is
// zero, so a chain of ADDX operations across a multi-word value can
// only ever clear Z, never re-set it after an earlier word result was
// non-zero.
func (c *CPU) setNZIfNonZero(result uint32, sz Size) {
	c.setCCR(SRNegative, result&sz.SignBit() != 0)
	if result&sz.Mask() != 0 {
		c.setCCR(SRZero, false)
	}
}

// group8 implements OR (ea,Dn / Dn,ea) and DIVU/DIVS. SBCD is not
// implemented (raises illegal instruction, matching the teacher's
// "not implemented" BCD stance; see DESIGN.md).
func (c *CPU) group8(opcode uint16) int {
	rx := uint8((opcode >> 9) & 7)
	opmode := (opcode >> 6) & 7
	mode := uint8((opcode >> 3) & 7)
	reg := uint8(opcode & 7)

	switch opmode {
	case 3: // DIVU
		return c.execDivide(rx, mode, reg, false)
	case 7: // DIVS
		return c.execDivide(rx, mode, reg, true)
	}

	if mode == 0 && opmode >= 4 {
		c.raiseException(VecIllegalInstruction) // SBCD not implemented
		return 4
	}

	sz, ok := decodeSize(opmode & 3)
	if !ok {
		c.raiseException(VecIllegalInstruction)
		return 4
	}

	if opmode >= 4 {
		dest := c.resolveEA(mode, reg, sz)
		v := c.readEA(dest, sz) | (c.Reg.D[rx] & sz.Mask())
		c.writeEA(dest, sz, v)
		c.setNZ(v, sz)
		c.setCCR(SROverflow, false)
		c.setCCR(SRCarry, false)
		return 8
	}

	src := c.resolveEA(mode, reg, sz)
	v := (c.Reg.D[rx] & sz.Mask()) | c.readEA(src, sz)
	c.Reg.D[rx] = (c.Reg.D[rx] &^ sz.Mask()) | v
	c.setNZ(v, sz)
	c.setCCR(SROverflow, false)
	c.setCCR(SRCarry, false)
	return 4
}

func (c *CPU) execDivide(rx uint8, mode, reg uint8, signed bool) int {
	src := c.resolveEA(mode, reg, Word)
	divisor := uint32(uint16(c.readEA(src, Word)))
	if divisor == 0 {
		c.raiseException(VecZeroDivide)
		return 38
	}
	dividend := c.Reg.D[rx]
	var quotient, remainder uint32
	var overflow bool
	if signed {
		d := int32(dividend)
		v := int32(int16(divisor))
		q := d / v
		r := d % v
		if q > 32767 || q < -32768 {
			overflow = true
		} else {
			quotient = uint32(uint16(int16(q)))
			remainder = uint32(uint16(int16(r)))
		}
	} else {
		q := dividend / divisor
		r := dividend % divisor
		if q > 0xFFFF {
			overflow = true
		} else {
			quotient = q
			remainder = r
		}
	}
	if overflow {
		c.setCCR(SROverflow, true)
		return 38
	}
	c.Reg.D[rx] = remainder<<16 | (quotient & 0xFFFF)
	c.setNZ(quotient&0xFFFF, Word)
	c.setCCR(SROverflow, false)
	c.setCCR(SRCarry, false)
	return 140
}

// groupC implements AND (ea,Dn / Dn,ea), MULU/MULS, and EXG. ABCD is not
// implemented (see DESIGN.md).
func (c *CPU) groupC(opcode uint16) int {
	rx := uint8((opcode >> 9) & 7)
	opmode := (opcode >> 6) & 7
	mode := uint8((opcode >> 3) & 7)
	reg := uint8(opcode & 7)

	switch opmode {
	case 3:
		return c.execMultiply(rx, mode, reg, false)
	case 7:
		return c.execMultiply(rx, mode, reg, true)
	}

	if opmode >= 4 && (mode == 0 || mode == 1) {
		return c.execExg(opcode)
	}

	sz, ok := decodeSize(opmode & 3)
	if !ok {
		c.raiseException(VecIllegalInstruction)
		return 4
	}

	if opmode >= 4 {
		dest := c.resolveEA(mode, reg, sz)
		v := c.readEA(dest, sz) & (c.Reg.D[rx] & sz.Mask())
		c.writeEA(dest, sz, v)
		c.setNZ(v, sz)
		c.setCCR(SROverflow, false)
		c.setCCR(SRCarry, false)
		return 8
	}

	src := c.resolveEA(mode, reg, sz)
	v := (c.Reg.D[rx] & sz.Mask()) & c.readEA(src, sz)
	c.Reg.D[rx] = (c.Reg.D[rx] &^ sz.Mask()) | v
	c.setNZ(v, sz)
	c.setCCR(SROverflow, false)
	c.setCCR(SRCarry, false)
	return 4
}

func (c *CPU) execMultiply(rx uint8, mode, reg uint8, signed bool) int {
	src := c.resolveEA(mode, reg, Word)
	b := uint16(c.readEA(src, Word))
	a := uint16(c.Reg.D[rx])
	var result uint32
	if signed {
		result = uint32(int32(int16(a)) * int32(int16(b)))
	} else {
		result = uint32(a) * uint32(b)
	}
	c.Reg.D[rx] = result
	c.setNZ(result, Long)
	c.setCCR(SROverflow, false)
	c.setCCR(SRCarry, false)
	return 70
}

// groupB implements CMP/CMPA/CMPM and EOR (ea^Dn -> Dn is not a valid
// EOR direction on the 68000; EOR is always Dn,ea).
func (c *CPU) groupB(opcode uint16) int {
	rx := uint8((opcode >> 9) & 7)
	opmode := (opcode >> 6) & 7
	mode := uint8((opcode >> 3) & 7)
	reg := uint8(opcode & 7)

	if opmode == 3 || opmode == 7 {
		sz := Word
		if opmode == 7 {
			sz = Long
		}
		src := c.resolveEA(mode, reg, sz)
		v := c.readEA(src, sz)
		if sz == Word {
			v = uint32(int32(int16(v)))
		}
		result, carry, overflow := subOverflowCarry(c.Reg.A[rx], v, Long)
		c.setCmpFlags(result, Long, overflow, carry)
		return 6
	}

	sz, ok := decodeSize(opmode & 3)
	if !ok {
		c.raiseException(VecIllegalInstruction)
		return 4
	}

	if opmode >= 4 {
		if mode == 1 { // CMPM (Ay)+,(Ax)+
			src := c.resolveEA(3, reg, sz)
			dest := c.resolveEA(3, rx, sz)
			a := c.readEA(dest, sz)
			b := c.readEA(src, sz)
			result, carry, overflow := subOverflowCarry(a, b, sz)
			c.setCmpFlags(result, sz, overflow, carry)
			return 4
		}
		dest := c.resolveEA(mode, reg, sz)
		v := c.readEA(dest, sz) ^ (c.Reg.D[rx] & sz.Mask())
		c.writeEA(dest, sz, v)
		c.setNZ(v, sz)
		c.setCCR(SROverflow, false)
		c.setCCR(SRCarry, false)
		return 8
	}

	src := c.resolveEA(mode, reg, sz)
	a := c.Reg.D[rx] & sz.Mask()
	b := c.readEA(src, sz)
	result, carry, overflow := subOverflowCarry(a, b, sz)
	c.setCmpFlags(result, sz, overflow, carry)
	return 4
}

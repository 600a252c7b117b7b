package z80

// execX0 handles the x=0 opcode block: relative jumps, 16-bit immediate
// loads, INC/DEC rp, 8-bit INC/DEC/LD r,n, the accumulator rotates, DAA/
// CPL/SCF/CCF, EX AF,AF', DJNZ and JR/JR cc.
func (c *CPU) execX0(z, y, p, q uint8) int {
	switch z {
	case 0:
		return c.execX0Z0(y)
	case 1:
		if q == 0 {
			c.setRP16(p, c.fetch16())
			return 10
		}
		c.setRP16(p, add16(c, c.rp16(p), c.rp16(2)))
		return 11
	case 2:
		return c.execX0Z2(y, q, p)
	case 3:
		if q == 0 {
			c.setRP16(p, c.rp16(p)+1)
		} else {
			c.setRP16(p, c.rp16(p)-1)
		}
		return 6
	case 4:
		c.setReg8(y, c.inc8(c.reg8(y)))
		return incDecTiming(y)
	case 5:
		c.setReg8(y, c.dec8(c.reg8(y)))
		return incDecTiming(y)
	case 6:
		c.setReg8(y, c.fetch8())
		if y == 6 {
			return 10
		}
		return 7
	default: // z == 7: accumulator rotates / DAA / CPL / SCF / CCF
		return c.execX0Z7(y)
	}
}

func incDecTiming(y uint8) int {
	if y == 6 {
		return 11
	}
	return 4
}

func (c *CPU) execX0Z0(y uint8) int {
	switch y {
	case 0: // NOP handled by caller for op==0x00, but y=0 also reachable via this path only for 0x00
		return 4
	case 1: // EX AF,AF'
		c.exAF()
		return 4
	case 2: // DJNZ d
		d := int8(c.fetch8())
		c.main.B--
		if c.main.B != 0 {
			c.PC = uint16(int32(c.PC) + int32(d))
			return 13
		}
		return 8
	case 3: // JR d
		d := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(d))
		return 12
	default: // JR cc,d  (y=4..7 -> cc = y-4)
		d := int8(c.fetch8())
		if c.cond(y - 4) {
			c.PC = uint16(int32(c.PC) + int32(d))
			return 12
		}
		return 7
	}
}

func (c *CPU) execX0Z2(y, q, p uint8) int {
	switch y {
	case 0:
		c.write8(c.BC(), c.main.A)
		return 7
	case 1:
		c.main.A = c.read8(c.BC())
		return 7
	case 2:
		c.write8(c.DE(), c.main.A)
		return 7
	case 3:
		c.main.A = c.read8(c.DE())
		return 7
	case 4:
		addr := c.fetch16()
		c.write16(addr, c.HL())
		return 16
	case 5:
		addr := c.fetch16()
		c.SetHL(c.read16(addr))
		return 16
	case 6:
		addr := c.fetch16()
		c.write8(addr, c.main.A)
		return 13
	default:
		addr := c.fetch16()
		c.main.A = c.read8(addr)
		return 13
	}
}

func (c *CPU) execX0Z7(y uint8) int {
	switch y {
	case 0:
		c.rlca()
	case 1:
		c.rrca()
	case 2:
		c.rla()
	case 3:
		c.rra()
	case 4:
		c.daa()
	case 5:
		c.main.A = ^c.main.A
		c.setFlag(FlagN|FlagH, true)
		c.main.F = yx(c.main.F, c.main.A)
	case 6:
		c.setFlag(FlagC, true)
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)
		c.main.F = yx(c.main.F, c.main.A)
	default:
		oldC := c.flag(FlagC)
		c.setFlag(FlagH, oldC)
		c.setFlag(FlagC, !oldC)
		c.setFlag(FlagN, false)
		c.main.F = yx(c.main.F, c.main.A)
	}
	return 4
}

func add16(c *CPU, a, b uint16) uint16 {
	result := a + b
	c.main.F = add16Flags(c.main.F, a, b, result)
	return result
}

func (c *CPU) rlca() {
	carry := c.main.A&0x80 != 0
	c.main.A = c.main.A<<1 | b2u(carry)
	c.setFlag(FlagC, carry)
	c.setFlag(FlagN|FlagH, false)
	c.main.F = yx(c.main.F, c.main.A)
}

func (c *CPU) rrca() {
	carry := c.main.A&1 != 0
	c.main.A = c.main.A>>1 | (b2u(carry) << 7)
	c.setFlag(FlagC, carry)
	c.setFlag(FlagN|FlagH, false)
	c.main.F = yx(c.main.F, c.main.A)
}

func (c *CPU) rla() {
	oldC := c.flag(FlagC)
	carry := c.main.A&0x80 != 0
	c.main.A = c.main.A<<1 | b2u(oldC)
	c.setFlag(FlagC, carry)
	c.setFlag(FlagN|FlagH, false)
	c.main.F = yx(c.main.F, c.main.A)
}

func (c *CPU) rra() {
	oldC := c.flag(FlagC)
	carry := c.main.A&1 != 0
	c.main.A = c.main.A>>1 | (b2u(oldC) << 7)
	c.setFlag(FlagC, carry)
	c.setFlag(FlagN|FlagH, false)
	c.main.F = yx(c.main.F, c.main.A)
}

// daa implements the decimal-adjust-accumulator table following ADD/SUB,
// matching the documented Z80 behaviour that branches on the prior N, H
// and C flags rather than recomputing from scratch.
func (c *CPU) daa() {
	a := c.main.A
	correction := uint8(0)
	carry := c.flag(FlagC)
	halfCarry := c.flag(FlagH)
	negative := c.flag(FlagN)

	if halfCarry || (!negative && a&0x0F > 9) {
		correction |= 0x06
	}
	if carry || (!negative && a > 0x99) {
		correction |= 0x60
		carry = true
	}
	if negative {
		a -= correction
	} else {
		a += correction
	}
	c.main.A = a
	c.setFlag(FlagC, carry)
	c.setFlag(FlagS, a&0x80 != 0)
	c.setFlag(FlagZ, a == 0)
	c.setFlag(FlagPV, parity(a))
	c.main.F = yx(c.main.F, a)
}

func (c *CPU) inc8(v uint8) uint8 {
	oldC := c.flag(FlagC)
	r := v + 1
	c.main.F = incFlags(v, r, oldC)
	return r
}

func (c *CPU) dec8(v uint8) uint8 {
	oldC := c.flag(FlagC)
	r := v - 1
	c.main.F = decFlags(v, r, oldC)
	return r
}

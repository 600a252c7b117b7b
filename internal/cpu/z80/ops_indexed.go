package z80

// execIndexed handles the curated subset of DD/FD-prefixed opcodes that
// actually substitute IX/IY for HL: 16-bit loads/arithmetic/stack ops on
// the index register itself, and the (IX+d)/(IY+d) memory-operand forms
// of LD, INC, DEC and the ALU instructions. Per DESIGN.md's documented
// scope cut, the undocumented IXH/IXL single-byte-register opcodes are
// not implemented — any opcode outside this curated set returns
// handled=false and execPrefixed falls back to the unprefixed semantics,
// which is accurate hardware behaviour for opcodes that never touch H,
// L or (HL) in the first place.
func (c *CPU) execIndexed(op uint8, idx *uint16) (bool, int) {
	switch op {
	case 0x21:
		*idx = c.fetch16()
		return true, 14
	case 0x22:
		addr := c.fetch16()
		c.write16(addr, *idx)
		return true, 20
	case 0x2A:
		addr := c.fetch16()
		*idx = c.read16(addr)
		return true, 20
	case 0x23:
		*idx++
		return true, 10
	case 0x2B:
		*idx--
		return true, 10
	case 0x09, 0x19, 0x29, 0x39:
		*idx = add16(c, *idx, c.indexedRP(op, idx))
		return true, 15
	case 0xE5:
		c.push16(*idx)
		return true, 15
	case 0xE1:
		*idx = c.pop16()
		return true, 14
	case 0xE3:
		c.exSPHL(idx)
		return true, 23
	case 0xE9:
		c.PC = *idx
		return true, 8
	case 0xF9:
		c.SP = *idx
		return true, 10
	case 0x34:
		addr := c.indexedAddr(idx)
		c.write8(addr, c.inc8(c.read8(addr)))
		return true, 23
	case 0x35:
		addr := c.indexedAddr(idx)
		c.write8(addr, c.dec8(c.read8(addr)))
		return true, 23
	case 0x36:
		addr := c.indexedAddr(idx)
		c.write8(addr, c.fetch8())
		return true, 19
	}

	switch {
	case op&0xC7 == 0x46 && (op>>3)&7 != 6: // LD r,(idx+d)
		y := (op >> 3) & 7
		addr := c.indexedAddr(idx)
		c.setReg8(y, c.read8(addr))
		return true, 19
	case op&0xF8 == 0x70 && op != 0x76: // LD (idx+d),r
		z := op & 7
		addr := c.indexedAddr(idx)
		c.write8(addr, c.reg8(z))
		return true, 19
	case op&0xC0 == 0x80 && op&7 == 6: // ALU A,(idx+d)
		y := (op >> 3) & 7
		addr := c.indexedAddr(idx)
		c.aluOp(y, c.read8(addr))
		return true, 19
	}
	return false, 0
}

// indexedAddr fetches the instruction's displacement byte and resolves
// the effective (idx+d) address. Must be called exactly once per
// instruction, after any other immediate-operand bytes that precede it
// in the instruction stream (only LD (idx+d),n has an operand after the
// displacement, handled explicitly in execIndexed).
func (c *CPU) indexedAddr(idx *uint16) uint16 {
	d := int8(c.fetch8())
	return uint16(int32(*idx) + int32(d))
}

func (c *CPU) indexedRP(op uint8, idx *uint16) uint16 {
	switch op {
	case 0x09:
		return c.BC()
	case 0x19:
		return c.DE()
	case 0x29:
		return *idx
	default:
		return c.SP
	}
}

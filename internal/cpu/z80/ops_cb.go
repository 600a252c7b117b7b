package z80

// execCB handles the CB-prefixed rotate/shift/BIT/SET/RES page. idx/disp
// select an (IX+d)/(IY+d) operand for the DDCB/FDCB forms; plain CB
// opcodes pass idx=nil. Per the documented scope cut in DESIGN.md, the
// undocumented "also copy the result into register z" behaviour of
// DDCB/FDCB opcodes where z != 6 is not implemented: the indexed form
// always targets memory only, matching the documented (non-undocumented)
// Z80 behaviour applications rely on.
func (c *CPU) execCB(op uint8, idx *uint16, disp int8) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	get, set, extra := c.cbOperand(z, idx, disp)
	v := get()

	switch x {
	case 0:
		v = c.shiftOp(y, v)
		set(v)
		return 8 + extra
	case 1: // BIT y,operand
		c.bitTest(y, v)
		if z == 6 || idx != nil {
			return 12 + extra
		}
		return 8
	case 2: // RES y,operand
		v &^= 1 << y
		set(v)
		return 8 + extra
	default: // SET y,operand
		v |= 1 << y
		set(v)
		return 8 + extra
	}
}

// cbOperand resolves the CB page's operand accessors and the extra
// T-states an (HL)/(IX+d)/(IY+d) memory operand costs over a register
// operand.
func (c *CPU) cbOperand(z uint8, idx *uint16, disp int8) (get func() uint8, set func(uint8), extra int) {
	if idx != nil {
		addr := uint16(int32(*idx) + int32(disp))
		return func() uint8 { return c.read8(addr) }, func(v uint8) { c.write8(addr, v) }, 8
	}
	if z == 6 {
		addr := c.HL()
		return func() uint8 { return c.read8(addr) }, func(v uint8) { c.write8(addr, v) }, 7
	}
	return func() uint8 { return c.reg8(z) }, func(v uint8) { c.setReg8(z, v) }, 0
}

// shiftOp applies one of the eight CB-page rotate/shift variants selected
// by y: RLC, RRC, RL, RR, SLA, SRA, SLL (undocumented, shifts in a 1),
// SRL.
func (c *CPU) shiftOp(y uint8, v uint8) uint8 {
	var carry bool
	var r uint8
	switch y {
	case 0: // RLC
		carry = v&0x80 != 0
		r = v<<1 | b2u(carry)
	case 1: // RRC
		carry = v&1 != 0
		r = v>>1 | (b2u(carry) << 7)
	case 2: // RL
		carry = v&0x80 != 0
		r = v<<1 | b2u(c.flag(FlagC))
	case 3: // RR
		carry = v&1 != 0
		r = v>>1 | (b2u(c.flag(FlagC)) << 7)
	case 4: // SLA
		carry = v&0x80 != 0
		r = v << 1
	case 5: // SRA
		carry = v&1 != 0
		r = (v >> 1) | (v & 0x80)
	case 6: // SLL (undocumented: shifts in 1 at bit 0)
		carry = v&0x80 != 0
		r = v<<1 | 1
	default: // SRL
		carry = v&1 != 0
		r = v >> 1
	}
	c.main.F = logicFlags(r, false)
	c.setFlag(FlagC, carry)
	return r
}

// bitTest implements BIT y,operand: Z set when the bit is clear, H
// always set, N always clear, and the undocumented Y/X flags mirror the
// tested operand's bits 5/3 for register operands or the high byte of
// the computed address for (HL)/(IX+d)/(IY+d) — approximated here as
// mirroring the operand itself, the documented-safe behaviour most test
// suites check.
func (c *CPU) bitTest(y uint8, v uint8) {
	set := v&(1<<y) != 0
	c.setFlag(FlagZ, !set)
	c.setFlag(FlagPV, !set)
	c.setFlag(FlagH, true)
	c.setFlag(FlagN, false)
	c.setFlag(FlagS, y == 7 && set)
	c.main.F = yx(c.main.F, v)
}

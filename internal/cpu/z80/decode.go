package z80

// step fetches and executes exactly one instruction (handling the CB/ED/
// DD/FD prefix bytes) and returns its T-state cost. Dispatch uses the
// standard x/y/z/p/q field decomposition of the opcode byte (x=op>>6,
// y=(op>>3)&7, z=op&7, p=y>>1, q=y&1) rather than the teacher's 256-entry
// function-pointer table: the field decomposition is the same semantic
// grouping the teacher's initBaseOps table encodes, just expressed as a
// switch so the whole opcode map fits in a handful of files instead of
// five init functions building closures.
func (c *CPU) step() int {
	op := c.fetch8()
	switch op {
	case 0xCB:
		return c.execCB(c.fetch8(), nil, 0)
	case 0xED:
		return c.execED(c.fetch8())
	case 0xDD:
		return c.execPrefixed(&c.IX)
	case 0xFD:
		return c.execPrefixed(&c.IY)
	default:
		return c.execMain(op, nil)
	}
}

// execPrefixed handles one DD- or FD-prefixed instruction. Only the
// opcodes that actually reference H, L or (HL) differ under a DD/FD
// prefix (§4.5's index-register substitution); every other opcode
// executes identically to its unprefixed form, which is genuine Z80
// hardware behaviour and not a simplification. The curated indexed-memory
// and 16-bit IX/IY forms are handled by execIndexed; everything else
// falls through to the ordinary dispatcher.
func (c *CPU) execPrefixed(idx *uint16) int {
	op := c.fetch8()
	if op == 0xCB {
		disp := int8(c.fetch8())
		return c.execCB(c.fetch8(), idx, disp)
	}
	if handled, cycles := c.execIndexed(op, idx); handled {
		return cycles
	}
	return c.execMain(op, nil)
}

// reg8 reads one of the eight non-indexed 8-bit operands named by a
// 3-bit register code (B,C,D,E,H,L,(HL),A). Indexed (IX+d)/(IY+d) memory
// operands are handled separately by execIndexed, not through this path.
func (c *CPU) reg8(code uint8) uint8 {
	switch code {
	case 0:
		return c.main.B
	case 1:
		return c.main.C
	case 2:
		return c.main.D
	case 3:
		return c.main.E
	case 4:
		return c.main.H
	case 5:
		return c.main.L
	case 6:
		return c.read8(c.HL())
	default:
		return c.main.A
	}
}

func (c *CPU) setReg8(code uint8, v uint8) {
	switch code {
	case 0:
		c.main.B = v
	case 1:
		c.main.C = v
	case 2:
		c.main.D = v
	case 3:
		c.main.E = v
	case 4:
		c.main.H = v
	case 5:
		c.main.L = v
	case 6:
		c.write8(c.HL(), v)
	case 7:
		c.main.A = v
	}
}

// rp16/setRP16 decode the 2-bit "p" field into BC/DE/HL/SP for 16-bit
// load and arithmetic instructions.
func (c *CPU) rp16(p uint8) uint16 {
	switch p {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *CPU) setRP16(p uint8, v uint16) {
	switch p {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

// cond reports whether the y-field condition code (NZ,Z,NC,C,PO,PE,P,M)
// is currently true.
func (c *CPU) cond(y uint8) bool {
	switch y {
	case 0:
		return !c.flag(FlagZ)
	case 1:
		return c.flag(FlagZ)
	case 2:
		return !c.flag(FlagC)
	case 3:
		return c.flag(FlagC)
	case 4:
		return !c.flag(FlagPV)
	case 5:
		return c.flag(FlagPV)
	case 6:
		return !c.flag(FlagS)
	default:
		return c.flag(FlagS)
	}
}

// execMain dispatches the unprefixed (and DD/FD-fallback) opcode map.
// idx is always nil here; it exists only so the signature matches the
// indexed dispatch path's expectations and is unused.
func (c *CPU) execMain(op uint8, _ *uint16) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	switch {
	case op == 0x00: // NOP
		return 4
	case op == 0x76: // HALT
		c.halted = true
		return 4
	case x == 1: // LD r,r' (with HALT carved out above)
		c.setReg8(y, c.reg8(z))
		return ldTiming(y, z)
	case x == 2: // ALU A,r
		return c.aluOp(y, c.reg8(z)) + aluTiming(z)
	case x == 0:
		return c.execX0(z, y, p, q)
	case x == 3:
		return c.execX3(z, y, p, q, op)
	}
	return 4
}

func ldTiming(y, z uint8) int {
	if y == 6 || z == 6 {
		return 7
	}
	return 4
}

func aluTiming(z uint8) int {
	if z == 6 {
		return 3
	}
	return 0
}

package z80

// execX3 handles the x=3 opcode block: RET cc, POP rp2, the jump/call
// family, PUSH rp2, ALU A,n, RST, and the miscellaneous single-byte
// opcodes (EXX, EX (SP),HL, EX DE,HL, DI, EI, JP (HL), LD SP,HL) that
// occupy the z==1 "q==1" and z==3 slots.
func (c *CPU) execX3(z, y, p, q uint8, op uint8) int {
	switch z {
	case 0: // RET cc
		if c.cond(y) {
			c.PC = c.pop16()
			return 11
		}
		return 5
	case 1:
		return c.execX3Z1(q, p)
	case 2: // JP cc,nn
		addr := c.fetch16()
		if c.cond(y) {
			c.PC = addr
		}
		return 10
	case 3:
		return c.execX3Z3(y)
	case 4: // CALL cc,nn
		addr := c.fetch16()
		if c.cond(y) {
			c.push16(c.PC)
			c.PC = addr
			return 17
		}
		return 10
	case 5:
		if q == 0 {
			c.push16(c.rp2(p))
			return 11
		}
		if p == 0 { // CALL nn
			addr := c.fetch16()
			c.push16(c.PC)
			c.PC = addr
			return 17
		}
		return 4 // DD/ED/FD prefixes never reach here; guarded in step()
	case 6: // ALU A,n
		return c.aluOp(y, c.fetch8()) + 3
	default: // RST y*8
		c.push16(c.PC)
		c.PC = uint16(y) * 8
		return 11
	}
}

func (c *CPU) execX3Z1(q, p uint8) int {
	if q == 0 {
		c.setRP2(p, c.pop16())
		return 10
	}
	switch p {
	case 0: // RET
		c.PC = c.pop16()
		return 10
	case 1:
		c.exx()
		return 4
	case 2: // JP (HL)
		c.PC = c.HL()
		return 4
	default: // LD SP,HL
		c.SP = c.HL()
		return 6
	}
}

func (c *CPU) execX3Z3(y uint8) int {
	switch y {
	case 0: // JP nn
		c.PC = c.fetch16()
		return 10
	case 2: // OUT (n),A
		port := uint16(c.fetch8())
		c.out(port, c.main.A)
		return 11
	case 3: // IN A,(n)
		port := uint16(c.fetch8())
		c.main.A = c.in(port)
		return 11
	case 4: // EX (SP),HL
		c.exSPHL(nil)
		return 19
	case 5: // EX DE,HL
		d, h := c.DE(), c.HL()
		c.SetDE(h)
		c.SetHL(d)
		return 4
	case 6: // DI
		c.IFF1, c.IFF2 = false, false
		return 4
	default: // EI — enable delayed until the instruction after this one
		c.eiPending = true
		return 4
	}
}

func (c *CPU) exSPHL(idx *uint16) {
	reg := idx
	if reg == nil {
		hl := c.HL()
		v := c.read16(c.SP)
		c.write16(c.SP, hl)
		c.SetHL(v)
		return
	}
	v := c.read16(c.SP)
	c.write16(c.SP, *reg)
	*reg = v
}

// rp2/setRP2 decode the "p" field of PUSH/POP, which uses AF where the
// 16-bit load/arithmetic table uses SP.
func (c *CPU) rp2(p uint8) uint16 {
	if p == 3 {
		return c.AF()
	}
	return c.rp16(p)
}

func (c *CPU) setRP2(p uint8, v uint16) {
	if p == 3 {
		c.SetAF(v)
		return
	}
	c.setRP16(p, v)
}

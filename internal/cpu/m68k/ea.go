package m68k

// Effective-address decoding. spec.md §4.4 restricts the supported
// addressing modes to a closed set: immediate, Dn, An, (An), (An)+,
// -(An), (d16,An), (d16,PC), abs.W, abs.L. Indexed modes ((d8,An,Xn) and
// (d8,PC,Xn), EA mode 6 and mode 7/reg 3) are deliberately excluded —
// they fall through to the illegal-instruction exception below, a
// scope decision recorded in DESIGN.md.

type eaKind uint8

const (
	eaDataReg eaKind = iota
	eaAddrReg
	eaMemory
	eaImmediate
)

// ea is a resolved effective-address operand: either a register index or
// a resolved memory address or an immediate value.
type ea struct {
	kind eaKind
	reg  uint8
	addr uint32
	imm  uint32
}

func (c *CPU) readEA(e ea, sz Size) uint32 {
	switch e.kind {
	case eaDataReg:
		return c.Reg.D[e.reg] & sz.Mask()
	case eaAddrReg:
		return c.Reg.A[e.reg] & sz.Mask()
	case eaImmediate:
		return e.imm & sz.Mask()
	default:
		v, err := c.readMem(e.addr, sz)
		if err != nil {
			c.busError(e.addr, false)
		}
		return v
	}
}

func (c *CPU) writeEA(e ea, sz Size, val uint32) {
	switch e.kind {
	case eaDataReg:
		mask := sz.Mask()
		c.Reg.D[e.reg] = (c.Reg.D[e.reg] &^ mask) | (val & mask)
	case eaAddrReg:
		c.Reg.A[e.reg] = val // address register writes are always full 32-bit
	case eaMemory:
		if err := c.writeMem(e.addr, sz, val); err != nil {
			c.busError(e.addr, true)
		}
	}
}

func (c *CPU) readMem(addr uint32, sz Size) (uint32, error) {
	switch sz {
	case Byte:
		v, err := c.Port.Read8(uint64(addr))
		return uint32(v), err
	case Word:
		v, err := c.Port.Read16(uint64(addr))
		return uint32(v), err
	default:
		return c.Port.Read32(uint64(addr))
	}
}

func (c *CPU) writeMem(addr uint32, sz Size, val uint32) error {
	switch sz {
	case Byte:
		return c.Port.Write8(uint64(addr), byte(val))
	case Word:
		return c.Port.Write16(uint64(addr), uint16(val))
	default:
		return c.Port.Write32(uint64(addr), val)
	}
}

// resolveEA decodes mode/reg into an ea, fetching any extension words
// from the instruction stream and applying pre-decrement/post-increment
// side effects. sz is the operand size for modes where it matters
// (auto-increment amount, immediate width).
func (c *CPU) resolveEA(mode, reg uint8, sz Size) ea {
	switch mode {
	case 0:
		return ea{kind: eaDataReg, reg: reg}
	case 1:
		return ea{kind: eaAddrReg, reg: reg}
	case 2:
		return ea{kind: eaMemory, addr: c.Reg.A[reg]}
	case 3: // (An)+ : read THEN increment by operand size (byte on A7 moves by 2)
		addr := c.Reg.A[reg]
		inc := uint32(sz)
		if reg == 7 && sz == Byte {
			inc = 2
		}
		c.Reg.A[reg] += inc
		return ea{kind: eaMemory, addr: addr}
	case 4: // -(An) : decrement by operand size THEN read
		dec := uint32(sz)
		if reg == 7 && sz == Byte {
			dec = 2
		}
		c.Reg.A[reg] -= dec
		return ea{kind: eaMemory, addr: c.Reg.A[reg]}
	case 5: // (d16,An)
		disp, _ := c.fetch16()
		return ea{kind: eaMemory, addr: uint32(int32(c.Reg.A[reg]) + int32(int16(disp)))}
	case 7:
		switch reg {
		case 0: // abs.W, sign-extended
			w, _ := c.fetch16()
			return ea{kind: eaMemory, addr: uint32(int32(int16(w)))}
		case 1: // abs.L
			l, _ := c.fetch32()
			return ea{kind: eaMemory, addr: l}
		case 2: // (d16,PC) -- PC at time of read is address of extension word
			pc := c.Reg.PC
			disp, _ := c.fetch16()
			return ea{kind: eaMemory, addr: uint32(int32(pc) + int32(int16(disp)))}
		case 4: // #imm
			switch sz {
			case Byte:
				w, _ := c.fetch16()
				return ea{kind: eaImmediate, imm: uint32(w) & 0xFF}
			case Word:
				w, _ := c.fetch16()
				return ea{kind: eaImmediate, imm: uint32(w)}
			default:
				l, _ := c.fetch32()
				return ea{kind: eaImmediate, imm: l}
			}
		}
	}
	c.raiseException(VecIllegalInstruction)
	return ea{}
}

// resolveEAAddr returns the address of a memory-mode EA without performing a
// read, used by LEA/PEA/JMP/JSR which only need the address.
func (c *CPU) resolveEAAddr(mode, reg uint8) (uint32, bool) {
	e := c.resolveEA(mode, reg, Long)
	return e.addr, e.kind == eaMemory
}

package m68k

// execute decodes and runs one instruction word (already fetched into
// opcode, PC already advanced past it) and returns its bus cycle cost.
// Dispatch is a full table over the 16 top-nibble groups, per §4.4,
// mirroring the teacher's decodeGroup0..decodeGroupF structure.
func (c *CPU) execute(opcode uint16) int {
	switch opcode >> 12 {
	case 0x0:
		return c.group0(opcode)
	case 0x1:
		return c.groupMove(opcode, Byte)
	case 0x2:
		return c.groupMove(opcode, Long)
	case 0x3:
		return c.groupMove(opcode, Word)
	case 0x4:
		return c.group4(opcode)
	case 0x5:
		return c.group5(opcode)
	case 0x6:
		return c.group6(opcode)
	case 0x7:
		return c.execMoveq(opcode)
	case 0x8:
		return c.group8(opcode)
	case 0x9:
		return c.groupAddSub(opcode, false)
	case 0xA:
		c.raiseException(VecLineA) // required by Macintosh ROMs (§4.4)
		return 34
	case 0xB:
		return c.groupB(opcode)
	case 0xC:
		return c.groupC(opcode)
	case 0xD:
		return c.groupAddSub(opcode, true)
	case 0xE:
		return c.groupShift(opcode)
	case 0xF:
		c.raiseException(VecLineF)
		return 34
	}
	c.raiseException(VecIllegalInstruction)
	return 34
}

// decodeSize maps the 2-bit size field used by most non-MOVE opcodes:
// 00=byte 01=word 10=long.
func decodeSize(bits uint16) (Size, bool) {
	switch bits {
	case 0:
		return Byte, true
	case 1:
		return Word, true
	case 2:
		return Long, true
	}
	return 0, false
}

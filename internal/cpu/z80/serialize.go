package z80

import (
	"encoding/binary"
	"fmt"
)

// stateVersion is incremented whenever the MarshalState layout changes.
const stateVersion = 1

// stateSize is the number of bytes MarshalState produces: a version byte,
// both register banks (8 bytes each), IX/IY/SP/PC (2 bytes each), I/R (1
// byte each), the interrupt mode byte, and eight boolean state bytes
// (IFF1, IFF2, halted, the NMI line and its previous level, BUSREQ,
// RESET and the pending EI).
const stateSize = 1 + 8 + 8 + 2 + 2 + 2 + 2 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1

// MarshalState writes the CPU's architectural and internal state into a
// flat byte buffer, following the same version-byte-plus-fixed-fields
// shape as internal/cpu/m68k's MarshalState (itself grounded on
// user-none-go-chip-m68k's Serialize). Port/IO/Intc wiring is not
// included.
func (c *CPU) MarshalState() []byte {
	buf := make([]byte, stateSize)
	buf[0] = stateVersion
	be := binary.BigEndian
	off := 1

	off = putRegFile(buf, off, c.main)
	off = putRegFile(buf, off, c.alt)

	be.PutUint16(buf[off:], c.IX)
	off += 2
	be.PutUint16(buf[off:], c.IY)
	off += 2
	be.PutUint16(buf[off:], c.SP)
	off += 2
	be.PutUint16(buf[off:], c.PC)
	off += 2

	buf[off] = c.I
	off++
	buf[off] = c.R
	off++
	buf[off] = c.IM
	off++

	buf[off] = boolByte(c.IFF1)
	off++
	buf[off] = boolByte(c.IFF2)
	off++
	buf[off] = boolByte(c.halted)
	off++
	buf[off] = boolByte(c.nmiLine)
	off++
	buf[off] = boolByte(c.nmiPrev)
	off++
	buf[off] = boolByte(c.busreqAsserted)
	off++
	buf[off] = boolByte(c.resetAsserted)
	off++
	buf[off] = boolByte(c.eiPending)

	return buf
}

// UnmarshalState restores CPU state produced by MarshalState. The CPU
// must already be wired to a Port/Intc; those are left unchanged.
func (c *CPU) UnmarshalState(buf []byte) error {
	if len(buf) < stateSize {
		return fmt.Errorf("z80: state buffer too small: got %d, want %d", len(buf), stateSize)
	}
	if buf[0] != stateVersion {
		return fmt.Errorf("z80: unsupported state version %d", buf[0])
	}

	be := binary.BigEndian
	off := 1

	off = getRegFile(buf, off, &c.main)
	off = getRegFile(buf, off, &c.alt)

	c.IX = be.Uint16(buf[off:])
	off += 2
	c.IY = be.Uint16(buf[off:])
	off += 2
	c.SP = be.Uint16(buf[off:])
	off += 2
	c.PC = be.Uint16(buf[off:])
	off += 2

	c.I = buf[off]
	off++
	c.R = buf[off]
	off++
	c.IM = buf[off]
	off++

	c.IFF1 = buf[off] != 0
	off++
	c.IFF2 = buf[off] != 0
	off++
	c.halted = buf[off] != 0
	off++
	c.nmiLine = buf[off] != 0
	off++
	c.nmiPrev = buf[off] != 0
	off++
	c.busreqAsserted = buf[off] != 0
	off++
	c.resetAsserted = buf[off] != 0
	off++
	c.eiPending = buf[off] != 0

	return nil
}

func putRegFile(buf []byte, off int, r regFile) int {
	buf[off] = r.A
	buf[off+1] = r.F
	buf[off+2] = r.B
	buf[off+3] = r.C
	buf[off+4] = r.D
	buf[off+5] = r.E
	buf[off+6] = r.H
	buf[off+7] = r.L
	return off + 8
}

func getRegFile(buf []byte, off int, r *regFile) int {
	r.A = buf[off]
	r.F = buf[off+1]
	r.B = buf[off+2]
	r.C = buf[off+3]
	r.D = buf[off+4]
	r.E = buf[off+5]
	r.H = buf[off+6]
	r.L = buf[off+7]
	return off + 8
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

package m68k

import (
	"encoding/binary"
	"fmt"
)

// stateVersion is incremented whenever the MarshalState layout changes.
const stateVersion = 1

// stateSize is the number of bytes MarshalState produces.
const stateSize = 1 + 8*4 + 8*4 + 4 + 2 + 4 + 4 + 1 + 1 + 1 + 4

// MarshalState writes the CPU's architectural and internal state into a
// flat byte buffer, grounded on user-none-go-chip-m68k's Serialize: a
// version byte followed by big-endian fixed-width fields in register-file
// order. The Port/Intc/Log wiring is not included — restoring state never
// changes which bus or interrupt controller a CPU is attached to.
func (c *CPU) MarshalState() []byte {
	buf := make([]byte, stateSize)
	buf[0] = stateVersion
	be := binary.BigEndian
	off := 1

	for i := 0; i < 8; i++ {
		be.PutUint32(buf[off:], c.Reg.D[i])
		off += 4
	}
	for i := 0; i < 8; i++ {
		be.PutUint32(buf[off:], c.Reg.A[i])
		off += 4
	}
	be.PutUint32(buf[off:], c.Reg.PC)
	off += 4
	be.PutUint16(buf[off:], c.Reg.SR)
	off += 2
	be.PutUint32(buf[off:], c.Reg.USP)
	off += 4
	be.PutUint32(buf[off:], c.Reg.SSP)
	off += 4
	buf[off] = byte(c.Type)
	off++
	buf[off] = byte(c.status)
	off++
	buf[off] = c.pending
	off++
	be.PutUint32(buf[off:], c.VBR)

	return buf
}

// UnmarshalState restores CPU state produced by MarshalState. The CPU
// must already be wired to a Port/Intc; those are left unchanged.
func (c *CPU) UnmarshalState(buf []byte) error {
	if len(buf) < stateSize {
		return fmt.Errorf("m68k: state buffer too small: got %d, want %d", len(buf), stateSize)
	}
	if buf[0] != stateVersion {
		return fmt.Errorf("m68k: unsupported state version %d", buf[0])
	}

	be := binary.BigEndian
	off := 1

	for i := 0; i < 8; i++ {
		c.Reg.D[i] = be.Uint32(buf[off:])
		off += 4
	}
	for i := 0; i < 8; i++ {
		c.Reg.A[i] = be.Uint32(buf[off:])
		off += 4
	}
	c.Reg.PC = be.Uint32(buf[off:])
	off += 4
	c.Reg.SR = be.Uint16(buf[off:])
	off += 2
	c.Reg.USP = be.Uint32(buf[off:])
	off += 4
	c.Reg.SSP = be.Uint32(buf[off:])
	off += 4
	c.Type = CPUType(buf[off])
	off++
	c.status = RunStatus(buf[off])
	off++
	c.pending = buf[off]
	off++
	c.VBR = be.Uint32(buf[off:])

	return nil
}

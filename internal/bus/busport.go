package bus

import "fmt"

// Port adapts a Bus to one CPU's (address width, data width) pair. It
// fragments wide accesses into device-sized transactions in big-endian
// order and masks every address to the CPU's physical address width —
// §4.1: "a 32-bit read on a 16-bit data bus is exactly two 16-bit accesses
// at consecutive aligned addresses". This adaptation belongs to the CPU,
// not to the memory fabric (§9 "BusPort vs. Bus"), so the same *Bus backs
// a Port{AddrMask: 0xFFFFFF, DataWidth: 2} for the MC68000 and a
// Port{AddrMask: 0xFFFF, DataWidth: 1} for the Z80.
type Port struct {
	Bus       *Bus
	AddrMask  uint64
	DataWidth uint64 // bytes per device-sized transaction; must be 1 or 2
}

// NewPort constructs a Port over b with the given address mask and
// per-transaction data width.
func NewPort(b *Bus, addrMask, dataWidth uint64) *Port {
	if dataWidth != 1 && dataWidth != 2 {
		panic(fmt.Sprintf("bus: unsupported Port data width %d", dataWidth))
	}
	return &Port{Bus: b, AddrMask: addrMask, DataWidth: dataWidth}
}

func (p *Port) mask(addr uint64) uint64 { return addr & p.AddrMask }

// Read fragments an n-byte read into ceil(n/DataWidth) sub-accesses at
// consecutive, DataWidth-aligned, masked addresses and concatenates the
// results big-endian (testable property #3).
func (p *Port) Read(addr uint64, n int) ([]byte, error) {
	out := make([]byte, n)
	a := p.mask(addr)
	for off := 0; off < n; off += int(p.DataWidth) {
		chunk := int(p.DataWidth)
		if off+chunk > n {
			chunk = n - off
		}
		if err := p.Bus.Read(a, out[off:off+chunk]); err != nil {
			return nil, err
		}
		a = p.mask(a + p.DataWidth)
	}
	return out, nil
}

// Write fragments data the same way Read does.
func (p *Port) Write(addr uint64, data []byte) error {
	a := p.mask(addr)
	for off := 0; off < len(data); off += int(p.DataWidth) {
		chunk := int(p.DataWidth)
		if off+chunk > len(data) {
			chunk = len(data) - off
		}
		if err := p.Bus.Write(a, data[off:off+chunk]); err != nil {
			return err
		}
		a = p.mask(a + p.DataWidth)
	}
	return nil
}

// Read8 reads a single byte.
func (p *Port) Read8(addr uint64) (uint8, error) {
	b, err := p.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Write8 writes a single byte.
func (p *Port) Write8(addr uint64, v uint8) error {
	return p.Write(addr, []byte{v})
}

// Read16 reads a big-endian 16-bit word.
func (p *Port) Read16(addr uint64) (uint16, error) {
	b, err := p.Read(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// Write16 writes a big-endian 16-bit word.
func (p *Port) Write16(addr uint64, v uint16) error {
	return p.Write(addr, []byte{byte(v >> 8), byte(v)})
}

// Read32 reads a big-endian 32-bit longword, split per DataWidth exactly
// as the 68k bus does (two word accesses on a 16-bit data bus).
func (p *Port) Read32(addr uint64) (uint32, error) {
	b, err := p.Read(addr, 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// Write32 writes a big-endian 32-bit longword.
func (p *Port) Write32(addr uint64, v uint32) error {
	return p.Write(addr, []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

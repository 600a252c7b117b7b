// Package bus implements the address-mapped routing fabric shared by every
// machine this framework builds: a sorted table of non-overlapping windows,
// each owned by an Addressable device. It is deliberately independent of
// any CPU's address width or data width — that adaptation is BusPort's job
// (see busport.go) — so the same Bus type serves the MC68000's 24-bit
// space, the Z80's 16-bit space, and the Genesis's banked Z80-over-68k
// window without modification.
package bus

import (
	"errors"
	"fmt"
	"sort"
)

// Errors returned by Bus operations. CPU cores translate ErrUnmapped and
// ErrMisaligned into their own exception vectors (bus error / address
// error); ErrOverlap is a build-time configuration fault and is never
// seen at runtime.
var (
	ErrUnmapped   = errors.New("bus: unmapped address")
	ErrMisaligned = errors.New("bus: misaligned access")
	ErrOverlap    = errors.New("bus: overlapping address window")
)

// Addressable is any device that can be mapped onto a Bus. Reads may have
// side effects (FIFO pops, counter latches); implementations decide their
// own semantics for out-of-range sub-accesses (§7: "Device read
// out-of-range" returns zero or a latched value and logs a warning rather
// than aborting the simulation).
type Addressable interface {
	// Length reports the device's mapped size in bytes.
	Length() uint64
	// Read fills out with len(out) bytes starting at the device-relative
	// address addr.
	Read(addr uint64, out []byte) error
	// Write stores the bytes of in starting at the device-relative
	// address addr.
	Write(addr uint64, in []byte) error
}

// window is one entry of the sorted, non-overlapping address table.
type window struct {
	base   uint64
	length uint64
	name   string
	dev    Addressable
}

func (w window) end() uint64 { return w.base + w.length }

// Bus is a sorted set of address windows. A Bus itself satisfies
// Addressable (via AsAddressable) so it can be composed recursively — the
// Genesis machine uses this to give the Z80 a banked view of a 32KB slice
// of the 68k address space.
type Bus struct {
	windows []window
	sealed  bool
}

// New returns an empty Bus ready for window registration.
func New() *Bus {
	return &Bus{}
}

// Insert maps device at [base, base+length) under name, used only in
// error messages and debug dumps. Insert keeps the window table sorted by
// base address. Overlap with an existing window is a fatal configuration
// error, reported here rather than deferred to first access, per §7
// ("Configuration error: overlapping bus windows; raised at build time,
// fatal").
func (b *Bus) Insert(base, length uint64, name string, dev Addressable) error {
	if b.sealed {
		return fmt.Errorf("bus: Insert(%s) after Seal", name)
	}
	nw := window{base: base, length: length, name: name, dev: dev}
	idx := sort.Search(len(b.windows), func(i int) bool { return b.windows[i].base >= base })
	if idx > 0 && b.windows[idx-1].end() > base {
		return fmt.Errorf("%w: %s [%#x,%#x) overlaps %s [%#x,%#x)",
			ErrOverlap, name, base, nw.end(), b.windows[idx-1].name, b.windows[idx-1].base, b.windows[idx-1].end())
	}
	if idx < len(b.windows) && nw.end() > b.windows[idx].base {
		return fmt.Errorf("%w: %s [%#x,%#x) overlaps %s [%#x,%#x)",
			ErrOverlap, name, base, nw.end(), b.windows[idx].name, b.windows[idx].base, b.windows[idx].end())
	}
	b.windows = append(b.windows, window{})
	copy(b.windows[idx+1:], b.windows[idx:])
	b.windows[idx] = nw
	return nil
}

// Seal prevents further Insert calls. Machine builders call this once all
// devices are registered; it mirrors the teacher's MachineBus.SealMappings
// guard against inserting I/O regions after execution has begun.
func (b *Bus) Seal() { b.sealed = true }

// lookup finds the window containing addr, returning the device-relative
// offset. A small linear scan is used: real machine maps have at most a
// few dozen windows, well under the point where a binary search matters.
func (b *Bus) lookup(addr uint64) (window, uint64, bool) {
	for _, w := range b.windows {
		if addr >= w.base && addr < w.end() {
			return w, addr - w.base, true
		}
	}
	return window{}, 0, false
}

// Read copies len(out) bytes starting at addr. The access must fall
// entirely within one window; a read straddling two windows is reported
// as unmapped, matching real bus behaviour (a straddling access is itself
// an error condition per §7).
func (b *Bus) Read(addr uint64, out []byte) error {
	w, off, ok := b.lookup(addr)
	if !ok {
		return fmt.Errorf("%w: read addr=%#x len=%d", ErrUnmapped, addr, len(out))
	}
	if off+uint64(len(out)) > w.length {
		return fmt.Errorf("%w: read addr=%#x len=%d straddles %s", ErrUnmapped, addr, len(out), w.name)
	}
	return w.dev.Read(off, out)
}

// Write stores the bytes of in starting at addr, subject to the same
// single-window constraint as Read.
func (b *Bus) Write(addr uint64, in []byte) error {
	w, off, ok := b.lookup(addr)
	if !ok {
		return fmt.Errorf("%w: write addr=%#x len=%d", ErrUnmapped, addr, len(in))
	}
	if off+uint64(len(in)) > w.length {
		return fmt.Errorf("%w: write addr=%#x len=%d straddles %s", ErrUnmapped, addr, len(in), w.name)
	}
	return w.dev.Write(off, in)
}

// Length reports the address span covered by the highest window, so a Bus
// can itself be mapped as an Addressable device (recursive composition).
func (b *Bus) Length() uint64 {
	if len(b.windows) == 0 {
		return 0
	}
	return b.windows[len(b.windows)-1].end()
}

// AsAddressable exposes the Bus as an Addressable device with the given
// visible length, for composing it as a window inside another Bus (the
// Genesis's Z80 sees a windowed, bank-switched view of the 68k bus this
// way).
func (b *Bus) AsAddressable(length uint64) Addressable {
	return &busWindow{b: b, length: length}
}

type busWindow struct {
	b      *Bus
	length uint64
}

func (bw *busWindow) Length() uint64                    { return bw.length }
func (bw *busWindow) Read(addr uint64, out []byte) error  { return bw.b.Read(addr, out) }
func (bw *busWindow) Write(addr uint64, in []byte) error { return bw.b.Write(addr, in) }

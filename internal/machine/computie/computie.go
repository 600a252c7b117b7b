// Package computie wires a single MC68000 core into a minimal 68000
// single-board-computer memory map: monitor ROM at reset, main RAM, and
// a memory-mapped serial console bridged to a Host-provided PTY. No
// Genesis-style VDP or DMA engine is present — Computie's own hard part
// is already covered by internal/cpu/m68k; this package is pure bus
// composition, grounded the same way internal/machine/genesis is on
// the teacher's machine_bus.go I/O-region table and component_reset.go
// sequencing, generalized to a much smaller single-CPU machine.
package computie

import (
	"fmt"

	"retrosim/internal/bus"
	"retrosim/internal/clock"
	"retrosim/internal/cpu/m68k"
	"retrosim/internal/intc"
	"retrosim/internal/logx"
	"retrosim/internal/scheduler"
)

const (
	cpuClockHz = 8_000_000 // a typical 68000 SBC bus speed; not specified, chosen as a plausible period

	romBase = 0x000000
	romSize = 0x020000 // 128KB monitor ROM, enough to hold reset vectors plus firmware

	ramBase = 0x100000
	ramSize = 0x100000 // 1MB, a typical Computie-class SBC's working memory

	serialBase = 0xF00000
)

type ram struct{ data []byte }

func newRAM(size int) *ram { return &ram{data: make([]byte, size)} }

func (r *ram) Length() uint64 { return uint64(len(r.data)) }
func (r *ram) Read(addr uint64, out []byte) error {
	copy(out, r.data[addr:addr+uint64(len(out))])
	return nil
}
func (r *ram) Write(addr uint64, in []byte) error {
	copy(r.data[addr:addr+uint64(len(in))], in)
	return nil
}

// rom is read-only; out-of-range access never happens here since the
// bus only ever calls into a device within its declared window.
type rom struct{ data []byte }

func newROM(data []byte, size int) *rom {
	padded := make([]byte, size)
	copy(padded, data)
	return &rom{data: padded}
}

func (r *rom) Length() uint64 { return uint64(len(r.data)) }
func (r *rom) Read(addr uint64, out []byte) error {
	copy(out, r.data[addr:addr+uint64(len(out))])
	return nil
}
func (r *rom) Write(addr uint64, in []byte) error { return nil }

// Computie is a minimal 68000 SBC: one CPU core, ROM, RAM, and a serial
// console, all on a single bus.
type Computie struct {
	CPU    *m68k.CPU
	Bus    *bus.Bus
	Serial *Serial

	sched *scheduler.System
	log   *logx.Logger
}

// New builds a Computie machine with firmware mapped at the reset
// vector. firmware is copied into a romSize ROM image, zero-padded if
// shorter and truncated if longer.
func New(firmware []byte, log *logx.Logger) (*Computie, error) {
	if log == nil {
		log = logx.New(nil, logx.LevelWarn)
	}

	ic := intc.New()
	b := bus.New()

	firmROM := newROM(firmware, romSize)
	mainRAM := newRAM(ramSize)
	serial := NewSerial()

	c := &Computie{Bus: b, Serial: serial, log: log.Scoped("computie")}

	if err := b.Insert(romBase, firmROM.Length(), "monitor rom", firmROM); err != nil {
		return nil, fmt.Errorf("computie: %w", err)
	}
	if err := b.Insert(ramBase, mainRAM.Length(), "main ram", mainRAM); err != nil {
		return nil, fmt.Errorf("computie: %w", err)
	}
	if err := b.Insert(serialBase, serial.Length(), "serial console", serial); err != nil {
		return nil, fmt.Errorf("computie: %w", err)
	}
	b.Seal()

	port := bus.NewPort(b, 0xFFFFFF, 2)
	c.CPU = m68k.New(m68k.CPU68000, port, ic, cpuClockHz, log)

	serial.OnSentinel(func() { c.sched.Stop() })

	c.sched = scheduler.New()
	c.sched.Add("m68k", c.CPU, 0)

	return c, nil
}

// Reset brings the CPU to its power-on state, loading SSP/PC from the
// ROM's reset vectors.
func (c *Computie) Reset() { c.CPU.Reset() }

// RunFor advances the machine by elapsed simulation time, or until the
// serial console's halt sentinel stops the scheduler.
func (c *Computie) RunFor(elapsed clock.Duration) { c.sched.RunFor(elapsed) }

// Running reports whether the scheduler is still advancing the machine.
func (c *Computie) Running() bool { return c.sched.Running() }

// Package z80 implements the Zilog Z80 execution core (spec.md §4.5):
// decode, execute, the interrupt model (NMI, IM 0/1/2), and T-state-based
// instruction timing. It is grounded on the teacher's cpu_z80.go (register
// layout, function-table dispatch per opcode byte, flag bit constants) and
// cpu_z80_runner.go (Step/interrupt-service shape), generalized from the
// teacher's direct Z80Bus interface to this repo's shared bus.Port/intc
// substrate so the Z80 shares its scheduler and interrupt controller type
// with the m68k core (see TEACHER.txt, DESIGN.md).
package z80

import (
	"retrosim/internal/bus"
	"retrosim/internal/clock"
	"retrosim/internal/intc"
	"retrosim/internal/logx"
)

// Flag bit positions within F, including the undocumented Y (bit 5) and
// X (bit 3) flags that mirror bits 5/3 of the instruction's result (§4.5).
const (
	FlagC  = 0x01
	FlagN  = 0x02
	FlagPV = 0x04
	FlagX  = 0x08
	FlagH  = 0x10
	FlagY  = 0x20
	FlagZ  = 0x40
	FlagS  = 0x80
)

// IOPort is the Z80's port-mapped I/O space, distinct from its memory bus
// (§3 "Z80 state"). A nil IO on CPU means the core has no I/O peripherals
// mapped (IN returns 0xFF, OUT is a no-op) — Computie and the TRS-80 builds
// of this core never use Z80 I/O ports, only the Genesis bridge does.
type IOPort interface {
	In(port uint16) uint8
	Out(port uint16, value uint8)
}

// regFile is one bank of the Z80's eight general registers, addressable
// both as bytes and as the four 16-bit pairs (§3 "Main and prime register
// files").
type regFile struct {
	A, F    uint8
	B, C    uint8
	D, E    uint8
	H, L    uint8
}

// CPU is one Z80 core. Like m68k.CPU it owns no memory directly: all
// accesses go through Port, a bus.Port masked to the 16-bit address space
// with an 8-bit device data width.
type CPU struct {
	Port *bus.Port
	IO   IOPort
	Intc *intc.Controller
	Log  *logx.Logger
	ClockHz uint64 // T-states per second

	main  regFile
	alt   regFile
	IX, IY uint16
	SP, PC uint16
	I, R   uint8

	IFF1, IFF2 bool
	IM         uint8 // 0, 1, or 2

	halted bool

	// nmiPrev/nmiEdge track the rising edge of the NMI line: a peripheral
	// holds the line asserted until explicitly deasserted, but NMI
	// services once per rising edge (§4.5 "NMI services unconditionally").
	nmiLine, nmiPrev bool

	// busreqAsserted/resetAsserted model the Genesis host's Z80 BUSREQ/RESET
	// register pair (§4.5, §6): while either is asserted the core's Step
	// returns immediately without executing an instruction.
	busreqAsserted bool
	resetAsserted  bool

	eiPending bool // IFF1/IFF2 enable takes effect after the instruction following EI
}

// New returns a Z80 wired to port, io (may be nil) and an interrupt
// controller, not yet reset.
func New(port *bus.Port, io IOPort, ic *intc.Controller, clockHz uint64, log *logx.Logger) *CPU {
	if log == nil {
		log = logx.New(nil, logx.LevelWarn)
	}
	return &CPU{Port: port, IO: io, Intc: ic, ClockHz: clockHz, Log: log.Scoped("z80")}
}

// Reset sets the Z80 to its documented power-on state: PC=0, SP=0xFFFF,
// IFF1=IFF2=false, IM=0, I=R=0.
func (c *CPU) Reset() {
	c.main = regFile{A: 0xFF, F: 0xFF}
	c.alt = regFile{}
	c.IX, c.IY = 0, 0
	c.SP = 0xFFFF
	c.PC = 0
	c.I, c.R = 0, 0
	c.IFF1, c.IFF2 = false, false
	c.IM = 0
	c.halted = false
	c.eiPending = false
}

// SetBusRequest drives the Genesis bridge's Z80 BUSREQ line. asserted=true
// both requests and (since this core never contends for the bus with
// another master) immediately acknowledges.
func (c *CPU) SetBusRequest(asserted bool) { c.busreqAsserted = asserted }

// BusAcked reports whether the Z80 bus is currently granted away, for the
// Genesis I/O register read-back at 0xA11100.
func (c *CPU) BusAcked() bool { return c.busreqAsserted }

// SetResetLine drives the Genesis bridge's Z80 RESET line (0xA11200).
// While asserted the core does not execute; on release it resets.
func (c *CPU) SetResetLine(asserted bool) {
	wasAsserted := c.resetAsserted
	c.resetAsserted = asserted
	if wasAsserted && !asserted {
		c.Reset()
	}
}

// SetNMI drives the NMI line. NMI services on the rising edge only.
func (c *CPU) SetNMI(asserted bool) { c.nmiLine = asserted }

// Halted reports whether the core is parked in a HALT instruction's
// wait-for-interrupt loop.
func (c *CPU) Halted() bool { return c.halted }

// Step implements scheduler.Steppable (spec.md §4.5): while BUSREQ/RESET
// hold the core off the bus it returns promptly without consuming time;
// otherwise it services a pending NMI or maskable interrupt, or decodes
// and executes one instruction, returning the elapsed time converted from
// T-states via ClockHz.
func (c *CPU) Step(now clock.Clock) clock.Duration {
	if c.busreqAsserted || c.resetAsserted {
		return clock.Duration(1)
	}

	nmiEdge := c.nmiLine && !c.nmiPrev
	c.nmiPrev = c.nmiLine
	if nmiEdge {
		return clock.FromCycles(uint64(c.serviceNMI()), c.ClockHz)
	}

	if c.IFF1 {
		if vector, ok := c.Intc.Pending(1); ok {
			return clock.FromCycles(uint64(c.serviceIRQ(vector)), c.ClockHz)
		}
	}

	if c.halted {
		c.applyEIDelay()
		return clock.FromCycles(4, c.ClockHz)
	}

	cycles := c.step()
	c.applyEIDelay()
	return clock.FromCycles(uint64(cycles), c.ClockHz)
}

func (c *CPU) applyEIDelay() {
	if c.eiPending {
		c.eiPending = false
		c.IFF1, c.IFF2 = true, true
	}
}

// serviceNMI implements §4.5: NMI services unconditionally, pushes PC,
// jumps to 0x0066, disables IFF1 (IFF2 retained so RETN can restore it).
func (c *CPU) serviceNMI() int {
	c.halted = false
	c.IFF2 = c.IFF1
	c.IFF1 = false
	c.incR()
	c.push16(c.PC)
	c.PC = 0x0066
	return 11
}

// serviceIRQ implements the maskable interrupt for IM 0/1/2 (§4.5). IM 0
// is approximated as IM 1 (jump to 0x0038): the only IM-0-issuing device
// in this framework's target machines is the Z80 PIO/CTC daisy chain,
// which this core does not model, so treating IM 0 as a RST 0x38 is the
// pragmatic scope cut, not a faithful instruction-on-the-bus simulation.
func (c *CPU) serviceIRQ(vector uint8) int {
	c.halted = false
	c.IFF1, c.IFF2 = false, false
	c.incR()
	switch c.IM {
	case 2:
		addr := uint16(c.I)<<8 | uint16(vector)
		target := c.read16(addr)
		c.push16(c.PC)
		c.PC = target
		return 19
	default: // IM 0 and IM 1
		c.push16(c.PC)
		c.PC = 0x0038
		return 13
	}
}

// RETI acknowledges the interrupt to the peripheral and returns from it;
// functionally identical to RETN (§4.5: "RETI acknowledges to the
// peripheral (informs daisy chain)"). This core has no daisy chain to
// inform, so RETI and RETN share an implementation.
func (c *CPU) retn() {
	c.IFF1 = c.IFF2
	c.PC = c.pop16()
}

func (c *CPU) incR() { c.R = (c.R & 0x80) | ((c.R + 1) & 0x7F) }

func (c *CPU) fetch8() uint8 {
	v, err := c.Port.Read8(uint64(c.PC))
	if err != nil {
		c.Log.Warnf("fetch8 fault at %#x: %v", c.PC, err)
	}
	c.PC++
	c.incR()
	return v
}

func (c *CPU) read8(addr uint16) uint8 {
	v, err := c.Port.Read8(uint64(addr))
	if err != nil {
		c.Log.Warnf("read8 fault at %#x: %v", addr, err)
	}
	return v
}

func (c *CPU) write8(addr uint16, v uint8) {
	if err := c.Port.Write8(uint64(addr), v); err != nil {
		c.Log.Warnf("write8 fault at %#x: %v", addr, err)
	}
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.read8(addr)
	hi := c.read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, uint8(v))
	c.write8(addr+1, uint8(v>>8))
}

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

func (c *CPU) in(port uint16) uint8 {
	if c.IO == nil {
		return 0xFF
	}
	return c.IO.In(port)
}

func (c *CPU) out(port uint16, v uint8) {
	if c.IO != nil {
		c.IO.Out(port, v)
	}
}

// AF/BC/DE/HL and their setters give the decode tables pair-wide access
// to the main register file (§3).
func (c *CPU) AF() uint16 { return uint16(c.main.A)<<8 | uint16(c.main.F) }
func (c *CPU) BC() uint16 { return uint16(c.main.B)<<8 | uint16(c.main.C) }
func (c *CPU) DE() uint16 { return uint16(c.main.D)<<8 | uint16(c.main.E) }
func (c *CPU) HL() uint16 { return uint16(c.main.H)<<8 | uint16(c.main.L) }

func (c *CPU) SetAF(v uint16) { c.main.A, c.main.F = uint8(v>>8), uint8(v) }
func (c *CPU) SetBC(v uint16) { c.main.B, c.main.C = uint8(v>>8), uint8(v) }
func (c *CPU) SetDE(v uint16) { c.main.D, c.main.E = uint8(v>>8), uint8(v) }
func (c *CPU) SetHL(v uint16) { c.main.H, c.main.L = uint8(v>>8), uint8(v) }

// A, FlagsReg, PCReg, SPReg expose state to debug/test code without reaching
// into the unexported regFile.
func (c *CPU) A() uint8       { return c.main.A }
func (c *CPU) FlagsReg() uint8 { return c.main.F }
func (c *CPU) PCReg() uint16  { return c.PC }
func (c *CPU) SPReg() uint16  { return c.SP }

func (c *CPU) exAF() { c.main.A, c.alt.A = c.alt.A, c.main.A; c.main.F, c.alt.F = c.alt.F, c.main.F }

func (c *CPU) exx() {
	c.main.B, c.alt.B = c.alt.B, c.main.B
	c.main.C, c.alt.C = c.alt.C, c.main.C
	c.main.D, c.alt.D = c.alt.D, c.main.D
	c.main.E, c.alt.E = c.alt.E, c.main.E
	c.main.H, c.alt.H = c.alt.H, c.main.H
	c.main.L, c.alt.L = c.alt.L, c.main.L
}

func (c *CPU) flag(mask uint8) bool { return c.main.F&mask != 0 }

func (c *CPU) setFlag(mask uint8, on bool) {
	if on {
		c.main.F |= mask
	} else {
		c.main.F &^= mask
	}
}

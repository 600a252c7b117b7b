// Package genesis wires the MC68000, Z80, and Genesis VDP cores into a
// complete Sega Genesis / Mega Drive machine: the 68k system bus (ROM,
// work RAM, the Z80 bridge window, VDP ports, the version/controller I/O
// region),
// the Z80's own bus (its 8KB RAM, the YM2612 stub, and a bank-switched
// window onto the 68k bus), and the BUSREQ/RESET/bank-register bridge
// registers at 0xA11100/0xA11200/0xA06000 spec.md §6 describes at the
// bit level. Grounded on the teacher's machine_bus.go I/O-region
// composition pattern (a central bus with callback-backed windows) and
// component_reset.go's multi-device Reset() sequencing, generalized
// from the teacher's single fixed machine to this framework's
// per-machine package under internal/machine.
package genesis

import (
	"fmt"

	"retrosim/internal/bus"
	"retrosim/internal/clock"
	"retrosim/internal/cpu/m68k"
	"retrosim/internal/cpu/z80"
	"retrosim/internal/intc"
	"retrosim/internal/logx"
	"retrosim/internal/scheduler"
	"retrosim/internal/vdp"
)

const (
	m68kClockHz = 7_670_000
	z80ClockHz  = 3_580_000

	workRAMSize = 0x10000
	z80RAMSize  = 0x2000
)

// ram is a flat byte-addressable store shared by every RAM/ROM window in
// this package.
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

// rom is a read-only byte store; writes are silently dropped, matching
// real cartridge ROM rather than raising a fault (§7 prefers a logged,
// non-fatal response for accesses that don't indicate a bus error).
type rom struct{ data []byte }

func (r *rom) Length() uint64 { return uint64(len(r.data)) }
func (r *rom) Read(addr uint64, out []byte) error {
	copy(out, r.data[addr:addr+uint64(len(out))])
	return nil
}
func (r *rom) Write(addr uint64, in []byte) error { return nil }

// mirror wraps a smaller device so it repeats across a larger declared
// window, used for the Z80's 8KB RAM (visible across 0x0000-0x3FFF) and
// the VDP's 32-byte port window mirrored across 0xC00000-0xC0FFFF.
type mirror struct {
	dev    bus.Addressable
	period uint64
	length uint64
}

func (m *mirror) Length() uint64 { return m.length }
func (m *mirror) Read(addr uint64, out []byte) error  { return m.dev.Read(addr%m.period, out) }
func (m *mirror) Write(addr uint64, in []byte) error { return m.dev.Write(addr%m.period, in) }

// bankWindow is the Z80's $8000-$FFFF view onto a 32KB-aligned slice of
// the 68k address space, selected by bridge.bankReg (§6, and SPEC_FULL's
// supplemented feature #3: the real 9-bit shift-register bank-select
// protocol rather than a simplified whole-value write).
type bankWindow struct {
	mem    *bus.Bus
	bridge *z80Bridge
}

func (bw *bankWindow) Length() uint64 { return 0x8000 }
func (bw *bankWindow) Read(addr uint64, out []byte) error {
	base := uint64(bw.bridge.bankAddr())
	return bw.mem.Read((base+addr)&0xFFFFFF, out)
}
func (bw *bankWindow) Write(addr uint64, in []byte) error {
	base := uint64(bw.bridge.bankAddr())
	return bw.mem.Write((base+addr)&0xFFFFFF, in)
}

// z80Bridge implements the three 68k-side bridge registers: BUSREQ
// (0xA11100), RESET (0xA11200), and the Z80-side bank-select latch
// (0xA06000, written from the Z80's bus). Present on both buses as two
// thin Addressable views sharing this state (z80BridgeHost68k and
// z80BridgeBank).
type z80Bridge struct {
	z80 *z80.CPU

	busReqAsserted bool
	resetAsserted  bool
	bank           uint16 // 9-bit shift register, LSB-first
}

func (br *z80Bridge) bankAddr() uint32 { return uint32(br.bank) << 15 }

func (br *z80Bridge) setBusReq(asserted bool) {
	br.busReqAsserted = asserted
	br.z80.SetBusRequest(asserted)
}

func (br *z80Bridge) setReset(asserted bool) {
	br.resetAsserted = asserted
	br.z80.SetResetLine(asserted)
}

// z80BridgeHost68k is the 68k-side view of the BUSREQ/RESET registers at
// 0xA11100-0xA111FF and 0xA11200-0xA112FF. Real hardware decodes only
// bit 0 of the low byte of a 16-bit access; this models exactly that.
type z80BridgeHost68k struct{ br *z80Bridge }

func (h *z80BridgeHost68k) Length() uint64 { return 0x300 }
func (h *z80BridgeHost68k) Read(addr uint64, out []byte) error {
	var bit byte
	switch {
	case addr < 0x100:
		if !h.br.busReqAsserted || h.br.z80.BusAcked() {
			bit = 1
		}
	case addr < 0x200:
		bit = 0xFF // reserved
	default:
		bit = 0xFF
	}
	for i := range out {
		out[i] = bit
	}
	return nil
}
func (h *z80BridgeHost68k) Write(addr uint64, in []byte) error {
	if len(in) == 0 {
		return nil
	}
	asserted := in[len(in)-1]&1 != 0
	switch {
	case addr < 0x100:
		h.br.setBusReq(asserted)
	case addr < 0x200:
		h.br.setReset(!asserted) // RESET register: 0 = asserted, 1 = released
	}
	return nil
}

// z80BridgeBank is the Z80-side bank-select latch at 0x6000: each write's
// bit 0 shifts into bit 8 of the 9-bit register while the oldest bit
// drops out of bit 0, per real
// Mega Drive hardware (spec.md §9 Open Question, resolved per
// SPEC_FULL.md supplemented feature #3).
type z80BridgeBank struct{ br *z80Bridge }

func (h *z80BridgeBank) Length() uint64 { return 1 }
func (h *z80BridgeBank) Read(addr uint64, out []byte) error {
	for i := range out {
		out[i] = 0xFF
	}
	return nil
}
func (h *z80BridgeBank) Write(addr uint64, in []byte) error {
	if len(in) == 0 {
		return nil
	}
	bit := in[0] & 1
	h.br.bank = (h.br.bank >> 1) | (uint16(bit) << 8)
	return nil
}

// genesisPad holds the pressed/released state of one three-button pad.
// All false is "nothing pressed", the reset state.
type genesisPad struct {
	up, down, left, right bool
	a, b, c, start         bool
}

// sample returns the bits5..0 reading for the given TH level: TH high
// samples up/down/left/right + A/start, TH low samples up/down + B/C
// (spec.md §6). A released button reads 1; a pressed button reads 0.
// Left/right have no TH-low signal and always read released.
func (p *genesisPad) sample(thHigh bool) byte {
	bits := byte(0x3F)
	clear := func(pressed bool, bit uint) {
		if pressed {
			bits &^= 1 << bit
		}
	}
	clear(p.up, 0)
	clear(p.down, 1)
	if thHigh {
		clear(p.left, 2)
		clear(p.right, 3)
		clear(p.a, 4)
		clear(p.start, 5)
	} else {
		clear(p.b, 4)
		clear(p.c, 5)
	}
	return bits
}

// controllerPort is one 68k-side TH-counting pad port: a data register at
// an odd offset (0xA10003/5/7) and a control register eight bytes above it
// (0xA10009/B/D). Grounded directly on spec.md §6's TH-counting contract:
// a write to the data port latches the TH level the next read samples
// against, and a write to the control port resets TH back to its default
// (high) level.
type controllerPort struct {
	pad *genesisPad
	th  bool // true = TH currently high
}

func newControllerPort() *controllerPort {
	return &controllerPort{pad: &genesisPad{}, th: true}
}

func (p *controllerPort) readData() byte {
	var thBit byte
	if p.th {
		thBit = 0x40
	}
	return thBit | p.pad.sample(p.th)
}

func (p *controllerPort) writeData(b byte) { p.th = b&0x40 != 0 }
func (p *controllerPort) resetTH()          { p.th = true }

// ioPorts implements the 0xA10000-0xA1001F I/O region: the version
// register and the three TH-counting controller ports. Ports with no
// plugged-in pad (B and C, until a Host wires them up) always sample as
// "nothing pressed", which is indistinguishable from a disconnected port
// on real hardware. See DESIGN.md.
type ioPorts struct {
	version byte
	ports   [3]*controllerPort
}

func newIOPorts() *ioPorts {
	return &ioPorts{
		version: 0xA0, // NTSC, overseas, no expansion (spec.md §6)
		ports:   [3]*controllerPort{newControllerPort(), newControllerPort(), newControllerPort()},
	}
}

func (io *ioPorts) Length() uint64 { return 0x20 }

func (io *ioPorts) Read(addr uint64, out []byte) error {
	for i := range out {
		out[i] = io.readByte(addr + uint64(i))
	}
	return nil
}

func (io *ioPorts) readByte(off uint64) byte {
	switch off {
	case 0x01:
		return io.version
	case 0x03:
		return io.ports[0].readData()
	case 0x05:
		return io.ports[1].readData()
	case 0x07:
		return io.ports[2].readData()
	default:
		return 0xFF
	}
}

func (io *ioPorts) Write(addr uint64, in []byte) error {
	for i, b := range in {
		io.writeByte(addr+uint64(i), b)
	}
	return nil
}

func (io *ioPorts) writeByte(off uint64, b byte) {
	switch off {
	case 0x03:
		io.ports[0].writeData(b)
	case 0x05:
		io.ports[1].writeData(b)
	case 0x07:
		io.ports[2].writeData(b)
	case 0x09:
		io.ports[0].resetTH()
	case 0x0B:
		io.ports[1].resetTH()
	case 0x0D:
		io.ports[2].resetTH()
	}
}

// Genesis is a complete machine: the 68k core, the Z80 core, the VDP,
// both buses, and the scheduler driving all three as Steppable devices.
type Genesis struct {
	CPU    *m68k.CPU
	Z80    *z80.CPU
	VDP    *vdp.VDP
	Audio  *ym2612Stub
	Bus    *bus.Bus // 68k system bus
	Z80Bus *bus.Bus

	io    *ioPorts
	sched *scheduler.System
	log   *logx.Logger
}

// SetPadButton sets the pressed state of button on the given 1-based
// controller port (1, 2, or 3). Unknown ports and button names are
// ignored. button is one of "up", "down", "left", "right", "a", "b",
// "c", "start".
func (g *Genesis) SetPadButton(port int, button string, pressed bool) {
	if port < 1 || port > len(g.io.ports) {
		return
	}
	pad := g.io.ports[port-1].pad
	switch button {
	case "up":
		pad.up = pressed
	case "down":
		pad.down = pressed
	case "left":
		pad.left = pressed
	case "right":
		pad.right = pressed
	case "a":
		pad.a = pressed
	case "b":
		pad.b = pressed
	case "c":
		pad.c = pressed
	case "start":
		pad.start = pressed
	}
}

// New builds a Genesis with cartridge ROM data mapped at 0x000000. data
// is used as-is (not copied) as the ROM backing store.
func New(cartridge []byte, log *logx.Logger) (*Genesis, error) {
	if log == nil {
		log = logx.New(nil, logx.LevelWarn)
	}

	m68kIntc := intc.New()
	z80Intc := intc.New()

	sysBus := bus.New()
	z80Bus := bus.New()

	cartROM := &rom{data: cartridge}
	workRAM := newRAM(workRAMSize)
	z80RAM := newRAM(z80RAMSize)

	g := &Genesis{Bus: sysBus, Z80Bus: z80Bus, log: log.Scoped("genesis")}

	z80Port := bus.NewPort(z80Bus, 0xFFFF, 1)
	g.Z80 = z80.New(z80Port, nil, z80Intc, z80ClockHz, log)

	bridge := &z80Bridge{z80: g.Z80}

	v := vdp.New(sysBus, m68kIntc, log)
	v.Z80Intc = z80Intc
	g.VDP = v

	if err := sysBus.Insert(0x000000, cartROM.Length(), "cart rom", cartROM); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	if err := sysBus.Insert(0xA00000, 0x10000, "z80 bus window", z80Bus.AsAddressable(0x10000)); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	if err := sysBus.Insert(0xA11100, 0x300, "z80 bridge", &z80BridgeHost68k{br: bridge}); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	g.io = newIOPorts()
	if err := sysBus.Insert(0xA10000, 0x20, "io ports", g.io); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	if err := sysBus.Insert(0xC00000, 0x10000, "vdp ports", &mirror{dev: v, period: v.Length(), length: 0x10000}); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	if err := sysBus.Insert(0xFF0000, workRAM.Length(), "work ram", workRAM); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	sysBus.Seal()

	if err := z80Bus.Insert(0x0000, 0x4000, "z80 ram", &mirror{dev: z80RAM, period: z80RAM.Length(), length: 0x4000}); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	if err := z80Bus.Insert(0x6000, 1, "bank select", &z80BridgeBank{br: bridge}); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	g.Audio = newYM2612Stub()
	if err := z80Bus.Insert(0x4000, 0x2000, "ym2612", &mirror{dev: g.Audio, period: g.Audio.Length(), length: 0x2000}); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	if err := z80Bus.Insert(0x8000, 0x8000, "68k window", &bankWindow{mem: sysBus, bridge: bridge}); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	z80Bus.Seal()

	m68kPort := bus.NewPort(sysBus, 0xFFFFFF, 2)
	g.CPU = m68k.New(m68k.CPU68000, m68kPort, m68kIntc, m68kClockHz, log)

	g.sched = scheduler.New()
	g.sched.Add("m68k", g.CPU, 0)
	g.sched.Add("z80", g.Z80, 0)
	g.sched.Add("vdp", g.VDP, 0)
	g.sched.Add("ym2612", g.Audio, 0)

	return g, nil
}

// Reset brings both CPUs and the VDP to their power-on state. The Z80
// starts held in reset with the bus granted to the 68k, matching real
// Genesis boot order (§6): software releases both lines once it has
// uploaded a Z80 program.
func (g *Genesis) Reset() {
	g.CPU.Reset()
	g.Z80.Reset()
	g.Z80.SetResetLine(true)
	g.Z80.SetBusRequest(true)
}

// RunFor advances the whole machine by elapsed simulation time.
func (g *Genesis) RunFor(elapsed clock.Duration) {
	g.sched.RunFor(elapsed)
}

// Running reports whether the scheduler is still advancing: it turns
// false only after the scheduler's Stop is called. A halted CPU core
// (e.g. a 68k STOP with interrupts masked) does not make it false.
func (g *Genesis) Running() bool { return g.sched.Running() }

// Frame returns the VDP's last published frame.
func (g *Genesis) Frame() *vdp.Frame { return g.VDP.Frame() }

// PullAudio drains and returns the audio chip's pending samples, for a
// Host to forward to its audio sink.
func (g *Genesis) PullAudio() []float32 { return g.Audio.PullSamples() }

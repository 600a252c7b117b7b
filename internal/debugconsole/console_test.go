package debugconsole

import (
	"bytes"
	"strings"
	"testing"

	"retrosim/internal/bus"
	"retrosim/internal/clock"
	"retrosim/internal/cpu/m68k"
	"retrosim/internal/debug"
	"retrosim/internal/intc"
	"retrosim/internal/logx"
)

type ram struct{ data []byte }

func (r *ram) Length() uint64 { return uint64(len(r.data)) }
func (r *ram) Read(addr uint64, out []byte) error {
	copy(out, r.data[addr:addr+uint64(len(out))])
	return nil
}
func (r *ram) Write(addr uint64, in []byte) error {
	copy(r.data[addr:addr+uint64(len(in))], in)
	return nil
}

// fakeMachine stands in for a real Machine; it just counts RunFor calls
// so "step"/"cont" can be exercised without a full machine wiring.
type fakeMachine struct {
	ticks   int
	running bool
}

func (m *fakeMachine) RunFor(elapsed clock.Duration) { m.ticks++ }
func (m *fakeMachine) Running() bool                 { return m.running }

func newTestCPU(t *testing.T) *m68k.CPU {
	t.Helper()
	mem := &ram{data: make([]byte, 0x10000)}
	// NOP at 0x400.
	mem.data[0x400] = 0x4E
	mem.data[0x401] = 0x71

	b := bus.New()
	if err := b.Insert(0, mem.Length(), "ram", mem); err != nil {
		t.Fatalf("insert: %v", err)
	}
	b.Seal()
	port := bus.NewPort(b, 0xFFFFFF, 2)
	ic := intc.New()
	log := logx.New(nil, logx.LevelSilent)
	cpu := m68k.New(m68k.CPU68000, port, ic, 8_000_000, log)
	cpu.Reg.PC = 0x400
	return cpu
}

func newTestConsole(t *testing.T, in string, machine Machine) (*Console, *bytes.Buffer) {
	t.Helper()
	cpu := newTestCPU(t)
	adapter := debug.NewM68KAdapter(cpu)
	out := &bytes.Buffer{}
	c := New(machine, strings.NewReader(in), out, map[string]debug.DebuggableCPU{"m68k": adapter})
	return c, out
}

func TestConsoleRegs(t *testing.T) {
	c, out := newTestConsole(t, "regs m68k\nquit\n", &fakeMachine{})
	c.Run()
	if !strings.Contains(out.String(), "PC") {
		t.Fatalf("expected register dump to mention PC, got:\n%s", out.String())
	}
}

func TestConsoleDisassemble(t *testing.T) {
	c, out := newTestConsole(t, "disas m68k 0x400 1\nquit\n", &fakeMachine{})
	c.Run()
	if !strings.Contains(out.String(), "NOP") {
		t.Fatalf("expected disassembly to contain NOP, got:\n%s", out.String())
	}
}

func TestConsoleBreakpoints(t *testing.T) {
	c, out := newTestConsole(t, "break m68k 0x400\nbreaks\nclear m68k 0x400\nbreaks\nquit\n", &fakeMachine{})
	c.Run()
	text := out.String()
	if !strings.Contains(text, "breakpoint set at 0x400") {
		t.Fatalf("expected breakpoint set message, got:\n%s", text)
	}
	if !strings.Contains(text, "breakpoint cleared at 0x400") {
		t.Fatalf("expected breakpoint cleared message, got:\n%s", text)
	}
}

// stoppingMachine flips Running() to false after a fixed number of ticks,
// so TestConsoleStepAndContinueStops can exercise "cont" without hanging.
type stoppingMachine struct {
	ticks     int
	stopAfter int
}

func (m *stoppingMachine) RunFor(elapsed clock.Duration) { m.ticks++ }
func (m *stoppingMachine) Running() bool                 { return m.ticks < m.stopAfter }

func TestConsoleStepAndContinueStops(t *testing.T) {
	m := &stoppingMachine{stopAfter: 3}
	c, out := newTestConsole(t, "step\ncont\nquit\n", m)
	c.Run()
	if m.ticks < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", m.ticks)
	}
	if !strings.Contains(out.String(), "stopped") {
		t.Fatalf("expected 'stopped' after cont, got:\n%s", out.String())
	}
}

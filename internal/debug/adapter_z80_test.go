package debug

import (
	"testing"

	"retrosim/internal/bus"
	"retrosim/internal/cpu/z80"
	"retrosim/internal/intc"
	"retrosim/internal/logx"
)

func newZ80TestCPU(t *testing.T, mem *ram) *z80.CPU {
	t.Helper()
	b := bus.New()
	if err := b.Insert(0, mem.Length(), "ram", mem); err != nil {
		t.Fatalf("insert: %v", err)
	}
	b.Seal()
	port := bus.NewPort(b, 0xFFFF, 1)
	ic := intc.New()
	log := logx.New(nil, logx.LevelSilent)
	return z80.New(port, nil, ic, 4_000_000, log)
}

func TestZ80AdapterRegisters(t *testing.T) {
	cpu := newZ80TestCPU(t, newRAM(0x10000))
	cpu.SetBC(0x1234)
	cpu.PC = 0x100

	a := NewZ80Adapter(cpu)
	v, ok := a.GetRegister("BC")
	if !ok || v != 0x1234 {
		t.Fatalf("GetRegister(BC) = %#x, %v", v, ok)
	}
	if a.GetPC() != 0x100 {
		t.Fatalf("GetPC() = %#x", a.GetPC())
	}

	if !a.SetRegister("HL", 0xBEEF) {
		t.Fatalf("SetRegister(HL) failed")
	}
	if cpu.HL() != 0xBEEF {
		t.Fatalf("HL = %#x after SetRegister", cpu.HL())
	}
}

func TestZ80AdapterDisassemble(t *testing.T) {
	mem := newRAM(0x10000)
	mem.data[0x100] = 0x00 // NOP
	a := NewZ80Adapter(newZ80TestCPU(t, mem))
	a.SetPC(0x100)

	lines := a.Disassemble(0x100, 1)
	if len(lines) != 1 || lines[0].Mnemonic != "NOP" {
		t.Fatalf("Disassemble = %+v", lines)
	}
	if !lines[0].IsPC {
		t.Fatalf("IsPC = false, want true")
	}
}

func TestZ80AdapterBreakpointsAndMemory(t *testing.T) {
	mem := newRAM(0x10000)
	a := NewZ80Adapter(newZ80TestCPU(t, mem))

	a.SetBreakpoint(0x10)
	a.SetBreakpoint(0x20)
	bps := a.ListBreakpoints()
	if len(bps) != 2 || bps[0] != 0x10 || bps[1] != 0x20 {
		t.Fatalf("ListBreakpoints = %v", bps)
	}
	a.ClearAllBreakpoints()
	if len(a.ListBreakpoints()) != 0 {
		t.Fatalf("breakpoints remain after ClearAllBreakpoints")
	}

	a.WriteMemory(0x50, []byte{0x01, 0x02})
	got := a.ReadMemory(0x50, 2)
	if got[0] != 0x01 || got[1] != 0x02 {
		t.Fatalf("ReadMemory = % X", got)
	}
}

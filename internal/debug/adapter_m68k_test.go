package debug

import (
	"testing"

	"retrosim/internal/bus"
	"retrosim/internal/cpu/m68k"
	"retrosim/internal/intc"
	"retrosim/internal/logx"
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

func newM68KTestCPU(t *testing.T, mem *ram) *m68k.CPU {
	t.Helper()
	b := bus.New()
	if err := b.Insert(0, mem.Length(), "ram", mem); err != nil {
		t.Fatalf("insert: %v", err)
	}
	b.Seal()
	port := bus.NewPort(b, 0xFFFFFF, 2)
	ic := intc.New()
	log := logx.New(nil, logx.LevelSilent)
	return m68k.New(m68k.CPU68000, port, ic, 8_000_000, log)
}

func TestM68KAdapterRegisters(t *testing.T) {
	cpu := newM68KTestCPU(t, newRAM(0x10000))
	cpu.Reg.D[3] = 0xCAFEBABE
	cpu.Reg.PC = 0x400

	a := NewM68KAdapter(cpu)
	v, ok := a.GetRegister("D3")
	if !ok || v != 0xCAFEBABE {
		t.Fatalf("GetRegister(D3) = %#x, %v", v, ok)
	}
	if a.GetPC() != 0x400 {
		t.Fatalf("GetPC() = %#x", a.GetPC())
	}

	if !a.SetRegister("D3", 0x1) {
		t.Fatalf("SetRegister(D3) failed")
	}
	if cpu.Reg.D[3] != 1 {
		t.Fatalf("D3 = %#x after SetRegister", cpu.Reg.D[3])
	}
}

func TestM68KAdapterBreakpoints(t *testing.T) {
	a := NewM68KAdapter(newM68KTestCPU(t, newRAM(0x1000)))

	if !a.SetBreakpoint(0x100) {
		t.Fatalf("SetBreakpoint failed")
	}
	if !a.HasBreakpoint(0x100) {
		t.Fatalf("HasBreakpoint false after set")
	}
	if !a.ClearBreakpoint(0x100) {
		t.Fatalf("ClearBreakpoint failed")
	}
	if a.HasBreakpoint(0x100) {
		t.Fatalf("HasBreakpoint true after clear")
	}
	if a.ClearBreakpoint(0x100) {
		t.Fatalf("ClearBreakpoint on absent addr should fail")
	}
}

func TestM68KAdapterMemoryAndState(t *testing.T) {
	mem := newRAM(0x10000)
	a := NewM68KAdapter(newM68KTestCPU(t, mem))

	a.WriteMemory(0x10, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	got := a.ReadMemory(0x10, 4)
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReadMemory = % X, want % X", got, want)
		}
	}

	buf := a.MarshalState()
	other := NewM68KAdapter(newM68KTestCPU(t, mem))
	if err := other.UnmarshalState(buf); err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}
}

func TestM68KAdapterDisassemble(t *testing.T) {
	mem := newRAM(0x10000)
	mem.data[0x400] = 0x4E
	mem.data[0x401] = 0x71 // NOP
	a := NewM68KAdapter(newM68KTestCPU(t, mem))
	a.SetPC(0x400)

	lines := a.Disassemble(0x400, 1)
	if len(lines) != 1 {
		t.Fatalf("Disassemble returned %d lines, want 1", len(lines))
	}
	if lines[0].Mnemonic != "NOP" {
		t.Fatalf("Mnemonic = %q, want NOP", lines[0].Mnemonic)
	}
	if !lines[0].IsPC {
		t.Fatalf("IsPC = false, want true")
	}
}

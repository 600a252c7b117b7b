package debug

import (
	"sort"

	"retrosim/internal/cpu/z80"
)

// Z80Adapter exposes a z80.CPU through the DebuggableCPU interface.
// Grounded on the teacher's DebugZ80 (debug_cpu_z80.go), trimmed the same
// way as M68KAdapter.
type Z80Adapter struct {
	cpu         *z80.CPU
	breakpoints map[uint64]bool
}

// NewZ80Adapter wraps cpu for debug inspection.
func NewZ80Adapter(cpu *z80.CPU) *Z80Adapter {
	return &Z80Adapter{cpu: cpu, breakpoints: make(map[uint64]bool)}
}

func (a *Z80Adapter) CPUName() string   { return "z80" }
func (a *Z80Adapter) AddressWidth() int { return 16 }

func (a *Z80Adapter) GetRegisters() []RegisterInfo {
	return []RegisterInfo{
		{Name: "AF", BitWidth: 16, Value: uint64(a.cpu.AF()), Group: "main"},
		{Name: "BC", BitWidth: 16, Value: uint64(a.cpu.BC()), Group: "main"},
		{Name: "DE", BitWidth: 16, Value: uint64(a.cpu.DE()), Group: "main"},
		{Name: "HL", BitWidth: 16, Value: uint64(a.cpu.HL()), Group: "main"},
		{Name: "IX", BitWidth: 16, Value: uint64(a.cpu.IX), Group: "index"},
		{Name: "IY", BitWidth: 16, Value: uint64(a.cpu.IY), Group: "index"},
		{Name: "SP", BitWidth: 16, Value: uint64(a.cpu.SP), Group: "control"},
		{Name: "PC", BitWidth: 16, Value: uint64(a.cpu.PC), Group: "control"},
		{Name: "I", BitWidth: 8, Value: uint64(a.cpu.I), Group: "control"},
		{Name: "R", BitWidth: 8, Value: uint64(a.cpu.R), Group: "control"},
		{Name: "IM", BitWidth: 8, Value: uint64(a.cpu.IM), Group: "control"},
	}
}

func (a *Z80Adapter) GetRegister(name string) (uint64, bool) {
	for _, r := range a.GetRegisters() {
		if r.Name == name {
			return r.Value, true
		}
	}
	return 0, false
}

func (a *Z80Adapter) SetRegister(name string, value uint64) bool {
	switch name {
	case "AF":
		a.cpu.SetAF(uint16(value))
	case "BC":
		a.cpu.SetBC(uint16(value))
	case "DE":
		a.cpu.SetDE(uint16(value))
	case "HL":
		a.cpu.SetHL(uint16(value))
	case "IX":
		a.cpu.IX = uint16(value)
	case "IY":
		a.cpu.IY = uint16(value)
	case "SP":
		a.cpu.SP = uint16(value)
	case "PC":
		a.cpu.PC = uint16(value)
	case "I":
		a.cpu.I = uint8(value)
	case "R":
		a.cpu.R = uint8(value)
	case "IM":
		a.cpu.IM = uint8(value)
	default:
		return false
	}
	return true
}

func (a *Z80Adapter) GetPC() uint64     { return uint64(a.cpu.PC) }
func (a *Z80Adapter) SetPC(addr uint64) { a.cpu.PC = uint16(addr) }

func (a *Z80Adapter) Disassemble(addr uint64, count int) []DisassembledLine {
	lines := DisassembleZ80(a.ReadMemory, addr, count)
	for i := range lines {
		lines[i].IsPC = lines[i].Address == a.GetPC()
	}
	return lines
}

func (a *Z80Adapter) SetBreakpoint(addr uint64) bool {
	a.breakpoints[addr] = true
	return true
}

func (a *Z80Adapter) ClearBreakpoint(addr uint64) bool {
	if !a.breakpoints[addr] {
		return false
	}
	delete(a.breakpoints, addr)
	return true
}

func (a *Z80Adapter) ClearAllBreakpoints() { a.breakpoints = make(map[uint64]bool) }

func (a *Z80Adapter) ListBreakpoints() []uint64 {
	out := make([]uint64, 0, len(a.breakpoints))
	for addr := range a.breakpoints {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (a *Z80Adapter) HasBreakpoint(addr uint64) bool { return a.breakpoints[addr] }

func (a *Z80Adapter) ReadMemory(addr uint64, size int) []byte {
	data, err := a.cpu.Port.Read(addr, size)
	if err != nil {
		return nil
	}
	return data
}

func (a *Z80Adapter) WriteMemory(addr uint64, data []byte) {
	_ = a.cpu.Port.Write(addr, data)
}

func (a *Z80Adapter) MarshalState() []byte           { return a.cpu.MarshalState() }
func (a *Z80Adapter) UnmarshalState(buf []byte) error { return a.cpu.UnmarshalState(buf) }

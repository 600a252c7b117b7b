package debug

import (
	"sort"

	"retrosim/internal/cpu/m68k"
)

// M68KAdapter exposes an m68k.CPU through the DebuggableCPU interface.
// Grounded on the teacher's DebugM68K (debug_cpu_m68k.go), trimmed of
// Freeze/Resume and conditional-breakpoint machinery per types.go's doc
// comment.
type M68KAdapter struct {
	cpu         *m68k.CPU
	breakpoints map[uint64]bool
}

// NewM68KAdapter wraps cpu for debug inspection.
func NewM68KAdapter(cpu *m68k.CPU) *M68KAdapter {
	return &M68KAdapter{cpu: cpu, breakpoints: make(map[uint64]bool)}
}

func (a *M68KAdapter) CPUName() string   { return "m68k:" + a.cpu.Type.String() }
func (a *M68KAdapter) AddressWidth() int { return 24 }

func (a *M68KAdapter) GetRegisters() []RegisterInfo {
	r := a.cpu.Reg
	regs := make([]RegisterInfo, 0, 20)
	for i := 0; i < 8; i++ {
		regs = append(regs, RegisterInfo{Name: regName("D", i), BitWidth: 32, Value: uint64(r.D[i]), Group: "data"})
	}
	for i := 0; i < 8; i++ {
		regs = append(regs, RegisterInfo{Name: regName("A", i), BitWidth: 32, Value: uint64(r.A[i]), Group: "address"})
	}
	regs = append(regs,
		RegisterInfo{Name: "PC", BitWidth: 32, Value: uint64(r.PC), Group: "control"},
		RegisterInfo{Name: "SR", BitWidth: 16, Value: uint64(r.SR), Group: "control"},
		RegisterInfo{Name: "USP", BitWidth: 32, Value: uint64(r.USP), Group: "control"},
		RegisterInfo{Name: "SSP", BitWidth: 32, Value: uint64(r.SSP), Group: "control"},
		RegisterInfo{Name: "VBR", BitWidth: 32, Value: uint64(a.cpu.VBR), Group: "control"},
	)
	return regs
}

func (a *M68KAdapter) GetRegister(name string) (uint64, bool) {
	for _, r := range a.GetRegisters() {
		if r.Name == name {
			return r.Value, true
		}
	}
	return 0, false
}

func (a *M68KAdapter) SetRegister(name string, value uint64) bool {
	r := &a.cpu.Reg
	if idx, ok := indexedReg("D", name); ok {
		r.D[idx] = uint32(value)
		return true
	}
	if idx, ok := indexedReg("A", name); ok {
		r.A[idx] = uint32(value)
		return true
	}
	switch name {
	case "PC":
		r.PC = uint32(value)
	case "SR":
		r.SR = uint16(value)
	case "USP":
		r.USP = uint32(value)
	case "SSP":
		r.SSP = uint32(value)
	case "VBR":
		a.cpu.VBR = uint32(value)
	default:
		return false
	}
	return true
}

func (a *M68KAdapter) GetPC() uint64    { return uint64(a.cpu.Reg.PC) }
func (a *M68KAdapter) SetPC(addr uint64) { a.cpu.Reg.PC = uint32(addr) }

func (a *M68KAdapter) Disassemble(addr uint64, count int) []DisassembledLine {
	lines := DisassembleM68K(a.ReadMemory, addr, count)
	for i := range lines {
		lines[i].IsPC = lines[i].Address == a.GetPC()
	}
	return lines
}

func (a *M68KAdapter) SetBreakpoint(addr uint64) bool {
	a.breakpoints[addr] = true
	return true
}

func (a *M68KAdapter) ClearBreakpoint(addr uint64) bool {
	if !a.breakpoints[addr] {
		return false
	}
	delete(a.breakpoints, addr)
	return true
}

func (a *M68KAdapter) ClearAllBreakpoints() { a.breakpoints = make(map[uint64]bool) }

func (a *M68KAdapter) ListBreakpoints() []uint64 {
	out := make([]uint64, 0, len(a.breakpoints))
	for addr := range a.breakpoints {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (a *M68KAdapter) HasBreakpoint(addr uint64) bool { return a.breakpoints[addr] }

func (a *M68KAdapter) ReadMemory(addr uint64, size int) []byte {
	data, err := a.cpu.Port.Read(addr, size)
	if err != nil {
		return nil
	}
	return data
}

func (a *M68KAdapter) WriteMemory(addr uint64, data []byte) {
	_ = a.cpu.Port.Write(addr, data)
}

func (a *M68KAdapter) MarshalState() []byte          { return a.cpu.MarshalState() }
func (a *M68KAdapter) UnmarshalState(buf []byte) error { return a.cpu.UnmarshalState(buf) }

func regName(prefix string, i int) string {
	return prefix + string(rune('0'+i))
}

func indexedReg(prefix, name string) (int, bool) {
	if len(name) != 2 || name[0] != prefix[0] {
		return 0, false
	}
	if name[1] < '0' || name[1] > '7' {
		return 0, false
	}
	return int(name[1] - '0'), true
}

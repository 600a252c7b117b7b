// Package debug provides a CPU-agnostic debug adapter layer: a
// DebuggableCPU interface implemented by both cores, a minimal
// one-instruction-at-a-time disassembler for each, and breakpoint
// bookkeeping. Grounded on the teacher's debug_interface.go,
// debug_cpu_m68k.go, debug_cpu_z80.go, and debug_monitor.go, trimmed to
// what a headless core needs: the teacher's richer conditional
// breakpoints/watchpoints/live worker-goroutine freeze machinery exists
// because its monitor runs against a CPU stepping on its own goroutine;
// this framework's CPUs are stepped synchronously by a scheduler.System,
// so Freeze/Resume collapse to nothing and watchpoints are out of scope
// for this pass (see DESIGN.md).
package debug

// RegisterInfo describes a single CPU register for display.
type RegisterInfo struct {
	Name     string
	BitWidth int
	Value    uint64
	Group    string
}

// DisassembledLine represents one decoded instruction.
type DisassembledLine struct {
	Address      uint64
	HexBytes     string
	Mnemonic     string
	Size         int
	IsPC         bool
	IsBranch     bool
	BranchTarget uint64
}

// BreakpointEvent is published when a CPU hits a breakpoint.
type BreakpointEvent struct {
	CPUName string
	Address uint64
}

// DebuggableCPU is the interface a machine's CPU debug adapter
// implements, consumed by a host-side monitor/console.
type DebuggableCPU interface {
	CPUName() string
	AddressWidth() int

	GetRegisters() []RegisterInfo
	GetRegister(name string) (uint64, bool)
	SetRegister(name string, value uint64) bool
	GetPC() uint64
	SetPC(addr uint64)

	// Disassemble decodes one instruction at addr and returns it together
	// with the bytes immediately following, up to count instructions.
	Disassemble(addr uint64, count int) []DisassembledLine

	SetBreakpoint(addr uint64) bool
	ClearBreakpoint(addr uint64) bool
	ClearAllBreakpoints()
	ListBreakpoints() []uint64
	HasBreakpoint(addr uint64) bool

	ReadMemory(addr uint64, size int) []byte
	WriteMemory(addr uint64, data []byte)

	MarshalState() []byte
	UnmarshalState(buf []byte) error
}

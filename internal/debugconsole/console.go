// Package debugconsole is the interactive register-dump/breakpoint
// console spec.md §7 calls for ("the built-in debugger dumps registers,
// stack, and the failing instruction"). Grounded on the teacher's
// debug_monitor.go (MachineMonitor command loop, CPUEntry registry,
// breakpoint bookkeeping) and terminal_host.go (raw-mode stdin reading),
// trimmed from the teacher's ebiten-overlay HUD — which renders scrollback
// and a blinking cursor into the video frame itself — down to a plain
// line-oriented stdin/stdout REPL, since this framework has no equivalent
// of the teacher's always-on-screen monitor overlay and spec.md never asks
// for one; see DESIGN.md.
package debugconsole

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"retrosim/internal/clock"
	"retrosim/internal/debug"
)

// Machine is the subset of a machine package's API the console drives.
// Both internal/machine/genesis.Genesis and internal/machine/computie's
// Computie satisfy this with their existing RunFor/Running methods.
type Machine interface {
	RunFor(elapsed clock.Duration)
	Running() bool
}

// singleStepDuration approximates "one instruction" since the scheduler
// only exposes run_for/run_until (spec.md §3), not a single-instruction
// step primitive; a console "step" command runs the machine forward by
// this much simulated time. That is shorter than one 4-cycle 68000
// instruction at the 7-8 MHz clocks used here, so a single step does not
// always retire an instruction on every CPU.
const singleStepDuration = clock.Duration(250)

// Console is a command REPL over the named CPUs of one machine.
type Console struct {
	machine Machine
	cpus    map[string]debug.DebuggableCPU
	order   []string

	in  *bufio.Scanner
	out io.Writer
}

// New returns a Console driving machine, with cpus registered by name
// (e.g. "m68k", "z80").
func New(machine Machine, in io.Reader, out io.Writer, cpus map[string]debug.DebuggableCPU) *Console {
	order := make([]string, 0, len(cpus))
	for name := range cpus {
		order = append(order, name)
	}
	return &Console{machine: machine, cpus: cpus, order: order, in: bufio.NewScanner(in), out: out}
}

// Run reads commands until EOF or a "quit" command. Each line is one
// command; unrecognized input prints a usage hint rather than erroring.
func (c *Console) Run() {
	fmt.Fprintln(c.out, "retrosim debug console — type 'help' for commands")
	for {
		fmt.Fprint(c.out, "(dbg) ")
		if !c.in.Scan() {
			return
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		if c.dispatch(line) {
			return
		}
	}
}

func (c *Console) dispatch(line string) (quit bool) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "help":
		c.printHelp()
	case "quit", "exit":
		return true
	case "regs":
		c.printRegisters(args)
	case "disas", "disassemble":
		c.printDisassembly(args)
	case "break":
		c.setBreakpoint(args)
	case "clear":
		c.clearBreakpoint(args)
	case "breaks":
		c.listBreakpoints(args)
	case "step":
		c.machine.RunFor(singleStepDuration)
		fmt.Fprintln(c.out, "stepped")
	case "cont", "continue":
		for c.machine.Running() && !c.anyBreakpointHit() {
			c.machine.RunFor(singleStepDuration)
		}
		fmt.Fprintln(c.out, "stopped")
	default:
		fmt.Fprintf(c.out, "unknown command %q (try 'help')\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, "commands:")
	fmt.Fprintln(c.out, "  regs [cpu]               dump registers")
	fmt.Fprintln(c.out, "  disas [cpu] [addr] [n]   disassemble n instructions at addr (default PC)")
	fmt.Fprintln(c.out, "  break <cpu> <addr>       set a breakpoint")
	fmt.Fprintln(c.out, "  clear <cpu> <addr>       clear a breakpoint")
	fmt.Fprintln(c.out, "  breaks                   list all breakpoints")
	fmt.Fprintln(c.out, "  step                     advance the machine by one tick")
	fmt.Fprintln(c.out, "  cont                     run until halted or a breakpoint is hit")
	fmt.Fprintln(c.out, "  quit                     exit the console")
}

func (c *Console) cpuNamed(name string) (debug.DebuggableCPU, bool) {
	if name == "" {
		if len(c.order) == 0 {
			return nil, false
		}
		name = c.order[0]
	}
	cpu, ok := c.cpus[name]
	return cpu, ok
}

func (c *Console) printRegisters(args []string) {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	cpu, ok := c.cpuNamed(name)
	if !ok {
		fmt.Fprintf(c.out, "no such cpu %q\n", name)
		return
	}
	fmt.Fprintf(c.out, "%s:\n", cpu.CPUName())
	for _, r := range cpu.GetRegisters() {
		fmt.Fprintf(c.out, "  %-4s = %#0*x\n", r.Name, r.BitWidth/4, r.Value)
	}
}

func (c *Console) printDisassembly(args []string) {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	cpu, ok := c.cpuNamed(name)
	if !ok {
		fmt.Fprintf(c.out, "no such cpu %q\n", name)
		return
	}

	addr := cpu.GetPC()
	count := 8
	if len(args) > 1 {
		if v, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 64); err == nil {
			addr = v
		}
	}
	if len(args) > 2 {
		if v, err := strconv.Atoi(args[2]); err == nil {
			count = v
		}
	}

	for _, line := range cpu.Disassemble(addr, count) {
		marker := " "
		if line.IsPC {
			marker = ">"
		}
		fmt.Fprintf(c.out, "%s %08X  %-20s %s\n", marker, line.Address, line.HexBytes, line.Mnemonic)
	}
}

func (c *Console) setBreakpoint(args []string) {
	cpu, addr, ok := c.parseCPUAddr(args)
	if !ok {
		return
	}
	cpu.SetBreakpoint(addr)
	fmt.Fprintf(c.out, "breakpoint set at %#x\n", addr)
}

func (c *Console) clearBreakpoint(args []string) {
	cpu, addr, ok := c.parseCPUAddr(args)
	if !ok {
		return
	}
	if cpu.ClearBreakpoint(addr) {
		fmt.Fprintf(c.out, "breakpoint cleared at %#x\n", addr)
	} else {
		fmt.Fprintf(c.out, "no breakpoint at %#x\n", addr)
	}
}

func (c *Console) listBreakpoints(_ []string) {
	for _, name := range c.order {
		cpu := c.cpus[name]
		bps := cpu.ListBreakpoints()
		if len(bps) == 0 {
			continue
		}
		fmt.Fprintf(c.out, "%s:\n", name)
		for _, addr := range bps {
			fmt.Fprintf(c.out, "  %#x\n", addr)
		}
	}
}

func (c *Console) parseCPUAddr(args []string) (debug.DebuggableCPU, uint64, bool) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "usage: <cmd> <cpu> <addr>")
		return nil, 0, false
	}
	cpu, ok := c.cpuNamed(args[0])
	if !ok {
		fmt.Fprintf(c.out, "no such cpu %q\n", args[0])
		return nil, 0, false
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 64)
	if err != nil {
		fmt.Fprintf(c.out, "bad address %q\n", args[1])
		return nil, 0, false
	}
	return cpu, addr, true
}

func (c *Console) anyBreakpointHit() bool {
	for _, cpu := range c.cpus {
		if cpu.HasBreakpoint(cpu.GetPC()) {
			return true
		}
	}
	return false
}

package m68k

// Exception vector numbers (§4.4, §7).
const (
	VecResetSSP          = 0
	VecResetPC           = 1
	VecBusError          = 2
	VecAddressError      = 3
	VecIllegalInstruction = 4
	VecZeroDivide        = 5
	VecCHK               = 6
	VecTRAPV             = 7
	VecPrivilegeViolation = 8
	VecTrace             = 9
	VecLineA             = 10
	VecLineF             = 11
	VecLevel1Autovector  = 25
	VecTrapBase          = 32 // TRAP #n -> 32+n
)

// deliverInterrupt services the highest-pending interrupt: pushes SR and
// PC to the (possibly just-switched) supervisor stack, enters supervisor
// mode with tracing off, raises the CPU's mask to the delivered priority,
// loads PC from the vector table, and returns the exception's cycle cost
// (§4.4 step 2). A Stopped CPU resumes Running on any unmasked interrupt.
func (c *CPU) deliverInterrupt(priority, vector uint8) int {
	oldSR := c.Reg.SR
	c.enterSupervisor()
	c.Reg.SR &^= SRIPLMask
	c.Reg.SR |= uint16(priority) << SRIPLShift
	c.pushFrame(oldSR, c.Reg.PC, vector)
	c.Reg.PC = c.readVector(vector)
	c.status = StatusRunning
	c.pending = priority
	return 44
}

// raiseException is the synthetic-exception entry point used by illegal
// opcodes, privilege violations, TRAP, CHK, and divide-by-zero. It is
// never seen by the scheduler (§7: "turned into an internal state
// transition...NOT propagated up to the scheduler").
func (c *CPU) raiseException(vector uint8) {
	oldSR := c.Reg.SR
	oldPC := c.Reg.PC
	c.enterSupervisor()
	c.pushFrame(oldSR, oldPC, vector)
	c.Reg.PC = c.readVector(vector)
}

// busError and addressError build the extended fault frame placeholder:
// the 68000's format-1111 frame exists but this core treats both faults
// uniformly as a vectored exception with the faulting address recorded
// for the debugger (§7's "Reported to the CPU as an exception").
func (c *CPU) busError(addr uint32, write bool) {
	c.lastFaultAddr = addr
	c.lastFaultWrite = write
	c.raiseException(VecBusError)
}

func (c *CPU) addressError(addr uint32, write, isInstr bool) {
	c.lastFaultAddr = addr
	c.lastFaultWrite = write
	c.lastFaultInstr = isInstr
	c.raiseException(VecAddressError)
}

func (c *CPU) enterSupervisor() {
	if !c.Reg.Supervisor() {
		c.Reg.USP = c.Reg.A[7]
		c.Reg.A[7] = c.Reg.SSP
	}
	c.Reg.SR |= SRSuper
	c.Reg.SR &^= SRTrace
}

// pushFrame pushes the exception stack frame. On the MC68010, every
// exception additionally pushes a 16-bit format/vector word first, so it
// sits above PC and SR on the stack (§4.4); the MC68000 pushes only PC
// and SR. SR always ends up at the new stack pointer.
func (c *CPU) pushFrame(oldSR uint16, oldPC uint32, vector uint8) {
	if c.Type == CPU68010 {
		c.push16(uint16(vector) << 2)
	}
	c.push32(oldPC)
	c.push16(oldSR)
}

// readVector loads the handler address from the vector table, relocated
// by VBR on the MC68010 (always 0 on the MC68000, per §4.4).
func (c *CPU) readVector(vector uint8) uint32 {
	addr, err := c.Port.Read32(uint64(c.VBR + uint32(vector)*4))
	if err != nil {
		c.Log.Warnf("vector %d unreadable at %#x: %v", vector, c.VBR+uint32(vector)*4, err)
		return 0
	}
	return addr
}

func (c *CPU) push16(v uint16) {
	c.Reg.A[7] -= 2
	if err := c.Port.Write16(uint64(c.Reg.A[7]), v); err != nil {
		c.Log.Warnf("push16 fault: %v", err)
	}
}

func (c *CPU) push32(v uint32) {
	c.Reg.A[7] -= 4
	if err := c.Port.Write32(uint64(c.Reg.A[7]), v); err != nil {
		c.Log.Warnf("push32 fault: %v", err)
	}
}

func (c *CPU) pop16() uint16 {
	v, err := c.Port.Read16(uint64(c.Reg.A[7]))
	if err != nil {
		c.Log.Warnf("pop16 fault: %v", err)
	}
	c.Reg.A[7] += 2
	return v
}

func (c *CPU) pop32() uint32 {
	v, err := c.Port.Read32(uint64(c.Reg.A[7]))
	if err != nil {
		c.Log.Warnf("pop32 fault: %v", err)
	}
	c.Reg.A[7] += 4
	return v
}

// returnFromException implements RTE: pop SR then PC (then, on the
// 68010, the format/vector word), restoring USP/SSP if the S bit
// changes.
func (c *CPU) returnFromException() {
	wasSuper := c.Reg.Supervisor()
	newSR := c.pop16()
	newPC := c.pop32()
	if c.Type == CPU68010 {
		c.pop16() // discard format/vector word
	}
	c.Reg.SR = newSR
	c.Reg.PC = newPC
	if wasSuper && !c.Reg.Supervisor() {
		c.Reg.SSP = c.Reg.A[7]
		c.Reg.A[7] = c.Reg.USP
	} else if !wasSuper && c.Reg.Supervisor() {
		c.Reg.USP = c.Reg.A[7]
		c.Reg.A[7] = c.Reg.SSP
	}
}

// Package intc implements the Interrupt Controller shared between CPUs
// and peripherals (spec.md §3/§4.3): a fixed table of prioritized lines
// that a CPU polls between instructions and a peripheral asserts/deasserts
// as its own step observes state changes.
package intc

import "sync"

// Line is one prioritized interrupt source.
type Line struct {
	Asserted bool
	Priority uint8 // 1-7 for the 68k; a single maskable line (1) plus NMI (NMILevel, 7) for the Z80
	Vector   uint8
}

// MaxLines bounds the table at the 68k's seven priority levels; the Z80
// uses lines 1 (INT) and NMILevel (NMI), a strict subset of the same
// table so both cores can share one Controller type.
const MaxLines = 8

// NMILevel is the priority used for the Z80's non-maskable interrupt line
// and, by convention, for the 68k's level-7 non-maskable interrupt.
const NMILevel = 7

// Controller holds the prioritized line table. It is safe for concurrent
// use: a peripheral's Step (running on the scheduler thread) and a CPU's
// interrupt poll both touch it, and in the optional off-thread scheduler
// configuration (§5) a second thread may read it between frames.
type Controller struct {
	mu    sync.Mutex
	lines [MaxLines + 1]Line // 1-indexed by priority; index 0 unused
}

// New returns a Controller with every line deasserted.
func New() *Controller {
	return &Controller{}
}

// Set updates a single line. It is idempotent: calling Set with the same
// arguments twice has no additional effect. Peripherals are responsible
// for deasserting once the CPU acknowledges (§4.3); level-triggered
// semantics fall out naturally when a peripheral simply keeps its line
// asserted across multiple polls.
func (c *Controller) Set(asserted bool, priority, vector uint8) {
	if priority == 0 || priority > NMILevel {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[priority] = Line{Asserted: asserted, Priority: priority, Vector: vector}
}

// Deassert clears the line at priority, leaving its vector in place
// (devices may reuse the Line struct's vector on the next Set).
func (c *Controller) Deassert(priority uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if priority > 0 && priority <= NMILevel {
		c.lines[priority].Asserted = false
	}
}

// HighestPendingAbove returns the highest-priority asserted line strictly
// above mask, or ok=false if none qualifies. The 68k CPU calls this with
// its current interrupt mask (SR bits I2..I0); delivery requires strictly
// greater priority except at level 7, which is always delivered
// (non-maskable) regardless of mask.
func (c *Controller) HighestPendingAbove(mask uint8) (priority, vector uint8, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := uint8(NMILevel); p >= 1; p-- {
		l := c.lines[p]
		if !l.Asserted {
			continue
		}
		if p == NMILevel || p > mask {
			return l.Priority, l.Vector, true
		}
		// Lines are scanned highest-first; once we hit a line at or
		// below mask that isn't NMI, no lower-priority line can
		// qualify either.
		break
	}
	return 0, 0, false
}

// Pending reports whether the line at priority is asserted, and its
// vector, used by the Z80's IFF1-gated poll (a single maskable line). It
// looks only at that one line and does not compare against a mask.
func (c *Controller) Pending(priority uint8) (vector uint8, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l := c.lines[priority]
	return l.Vector, l.Asserted
}

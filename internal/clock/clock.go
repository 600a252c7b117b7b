// Package clock defines the monotonic time base shared by every device in
// the simulation: the Bus, the Scheduler, the CPU cores, and the VDP all
// measure time in nanoseconds against a single Clock value.
package clock

import "time"

// Clock is a monotonic simulation timestamp measured in nanoseconds.
// It never decreases: the Scheduler is the only component permitted to
// advance it, and only ever forward.
type Clock uint64

// Duration is an elapsed quantity of simulation time, also in nanoseconds.
type Duration uint64

// Add returns c advanced by d nanoseconds.
func (c Clock) Add(d Duration) Clock {
	return c + Clock(d)
}

// Since returns the elapsed duration from earlier to c. earlier must not
// be after c; the simulation clock never runs backwards.
func (c Clock) Since(earlier Clock) Duration {
	return Duration(c - earlier)
}

// FromCycles converts a CPU cycle count to a nanosecond Duration given the
// CPU's clock rate in Hz. It is the shared conversion used by both the
// MC68000/MC68010 core (bus cycles) and the Z80 core (T-states): each
// core's Step multiplies its opcode's cycle cost by its own clock period.
func FromCycles(cycles uint64, hz uint64) Duration {
	if hz == 0 {
		return Duration(cycles)
	}
	// cycles * 1e9 / hz, ordered to minimise truncation for small cycle counts.
	return Duration((cycles * uint64(time.Second)) / hz)
}

// AtLeast1 enforces the scheduler invariant that a Steppable always makes
// forward progress: a step that computes a zero delay is promoted to 1ns.
func AtLeast1(d Duration) Duration {
	if d == 0 {
		return 1
	}
	return d
}

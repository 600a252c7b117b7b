// Package scheduler implements the System: the priority queue of
// Steppable devices that the monotonic simulation Clock drives (spec.md
// §4.2). It is the sole authority over Clock advancement — devices never
// see the clock run backwards, and a step's returned delay is always
// interpreted as "at least 1ns" to guarantee progress.
package scheduler

import (
	"container/heap"

	"retrosim/internal/clock"
)

// Steppable is any device the scheduler drives. Step must return promptly
// (§5: "devices...must return promptly; they may not suspend
// mid-instruction") and reports the delay, in nanoseconds, until it next
// wants to run.
type Steppable interface {
	Step(now clock.Clock) clock.Duration
}

// entry is one scheduler queue slot: a device plus the clock value at
// which it next wants to be stepped, plus the insertion sequence used to
// break ties deterministically (oldest-inserted first).
type entry struct {
	dev     Steppable
	name    string
	next    clock.Clock
	seq     uint64
	index   int
}

// pq is a container/heap.Interface min-heap ordered by (next, seq).
type pq []*entry

func (q pq) Len() int { return len(q) }
func (q pq) Less(i, j int) bool {
	if q[i].next != q[j].next {
		return q[i].next < q[j].next
	}
	return q[i].seq < q[j].seq
}
func (q pq) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *pq) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}
func (q *pq) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// System is the scheduler: devices are registered once at machine build
// time and never removed (spec.md §3 "Lifecycle": no dynamic device
// insertion).
type System struct {
	clock clock.Clock
	queue pq
	seq   uint64
	stop  bool
}

// New returns an empty System with the clock at zero.
func New() *System {
	return &System{}
}

// Clock reports the current simulation clock value.
func (s *System) Clock() clock.Clock { return s.clock }

// Add registers dev, to be first stepped at s.Clock()+firstDelay. name is
// used only in diagnostics (panics, debug dumps).
func (s *System) Add(name string, dev Steppable, firstDelay clock.Duration) {
	s.seq++
	heap.Push(&s.queue, &entry{dev: dev, name: name, next: s.clock.Add(firstDelay), seq: s.seq})
}

// Stop requests that RunUntil/RunFor return at the next step boundary.
// Cancellation is cooperative (§5): the Host calls this from another
// goroutine and the scheduler observes it between steps, never mid-step.
func (s *System) Stop() { s.stop = true }

// Running reports whether no Stop is pending: it is false once Stop has
// been called, until the next RunUntil/RunFor call clears the request.
func (s *System) Running() bool { return !s.stop }

// RunUntil repeatedly pops the earliest device, advances the system clock
// to that device's scheduled time, steps it, and re-enqueues it at
// clock+delay, until the clock reaches target or Stop is called. The
// clock never decreases and a step returning 0 is promoted to 1ns
// (clock.AtLeast1) to guarantee progress.
func (s *System) RunUntil(target clock.Clock) {
	s.stop = false
	for !s.stop && len(s.queue) > 0 && s.queue[0].next <= target {
		e := heap.Pop(&s.queue).(*entry)
		if e.next > s.clock {
			s.clock = e.next
		}
		delay := clock.AtLeast1(e.dev.Step(s.clock))
		e.next = s.clock.Add(delay)
		s.seq++
		e.seq = s.seq
		heap.Push(&s.queue, e)
	}
	if !s.stop && s.clock < target {
		s.clock = target
	}
}

// RunFor advances the system by elapsed nanoseconds: shorthand for
// RunUntil(Clock()+elapsed).
func (s *System) RunFor(elapsed clock.Duration) {
	s.RunUntil(s.clock.Add(elapsed))
}

package genesis

import "retrosim/internal/clock"

// sampleRate is the rate ym2612Stub ticks out silence at; real hardware
// runs its DAC considerably faster, but nothing reads these samples for
// their waveform, only for their cadence, so a host-friendly 44.1kHz is
// used directly rather than modelling the real FM synthesis clock.
const sampleRate = 44100

// stepNS is the simulated-time interval between sample ticks.
const stepNS = clock.Duration(1_000_000_000 / sampleRate)

// ym2612Stub stands in for the YM2612 FM synthesizer at the Z80's
// 0x4000-0x4003 port window. Cycle-accurate FM synthesis is out of
// scope (spec.md Non-goals); what's modelled is the register/status
// handshake software actually polls (busy flag always clear, address
// latches accepted and discarded) and a Steppable that produces a
// steady stream of silent samples, so a Host's add_audio_source sink
// has a real periodic producer rather than nothing to pull from.
type ym2612Stub struct {
	pending []float32
}

func newYM2612Stub() *ym2612Stub { return &ym2612Stub{} }

func (y *ym2612Stub) Length() uint64 { return 4 }

// Read returns 0 for the status port (busy and overflow flags clear)
// and echoes 0xFF elsewhere, matching real hardware's open-bus
// behavior on the write-only address/data ports.
func (y *ym2612Stub) Read(addr uint64, out []byte) error {
	for i := range out {
		if addr == 0 {
			out[i] = 0
		} else {
			out[i] = 0xFF
		}
	}
	return nil
}

func (y *ym2612Stub) Write(addr uint64, in []byte) error { return nil }

// Step implements scheduler.Steppable, appending one silent sample per
// stepNS of elapsed time.
func (y *ym2612Stub) Step(now clock.Clock) clock.Duration {
	y.pending = append(y.pending, 0)
	return stepNS
}

// PullSamples drains and returns the samples produced since the last
// call, for a Host to forward to its audio sink.
func (y *ym2612Stub) PullSamples() []float32 {
	out := y.pending
	y.pending = nil
	return out
}

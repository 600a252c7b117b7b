package ebitenhost

import (
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// otoSink is an AudioSink backed by a single oto.Player. Grounded on the
// teacher's OtoPlayer (audio_backend_oto.go), simplified: the teacher
// pulls samples from a SoundChip via a lock-free atomic pointer because
// its player Read callback runs on oto's own goroutine and must never
// block; this sink keeps the same non-blocking contract with a small
// ring buffer instead of a chip pointer, so any Steppable peripheral —
// not just the teacher's one SoundChip type — can push samples into it.
type otoSink struct {
	ctx    *oto.Context
	player *oto.Player

	mu  sync.Mutex
	buf []float32
}

func newOtoSink(channels, sampleRate int) (*otoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	s := &otoSink{ctx: ctx}
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

// Read implements io.Reader for oto.Player: it drains whatever samples
// PushSamples has queued, zero-filling the rest so underrun produces
// silence rather than stale audio.
func (s *otoSink) Read(p []byte) (int, error) {
	numSamples := len(p) / 4

	s.mu.Lock()
	n := numSamples
	if n > len(s.buf) {
		n = len(s.buf)
	}
	taken := s.buf[:n]
	s.buf = s.buf[n:]
	s.mu.Unlock()

	for i := 0; i < n; i++ {
		putFloat32LE(p[i*4:], taken[i])
	}
	for i := n; i < numSamples; i++ {
		putFloat32LE(p[i*4:], 0)
	}
	return numSamples * 4, nil
}

// PushSamples appends interleaved samples to the sink's pending buffer.
// Called by a peripheral's Step; must not block the scheduler, so the
// buffer is capped and overflow is dropped rather than queued unbounded.
func (s *otoSink) PushSamples(samples []float32) {
	const maxBuffered = 1 << 16

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, samples...)
	if len(s.buf) > maxBuffered {
		s.buf = s.buf[len(s.buf)-maxBuffered:]
	}
}

func (s *otoSink) Close() error {
	if s.player != nil {
		return s.player.Close()
	}
	return nil
}

func putFloat32LE(b []byte, f float32) {
	bits := math.Float32bits(f)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}

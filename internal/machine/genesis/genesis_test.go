package genesis

import (
	"testing"
)

func newTestMachine(t *testing.T, rom []byte) *Genesis {
	t.Helper()
	g, err := New(rom, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.Reset()
	return g
}

// TestResetHoldsZ80 checks that power-on leaves the Z80 parked with the
// bus granted to the 68k, matching real Genesis boot order (§6).
func TestResetHoldsZ80(t *testing.T) {
	g := newTestMachine(t, make([]byte, 0x10000))
	if !g.Z80.BusAcked() {
		t.Fatalf("BUSREQ should be asserted at power-on")
	}
	if g.Z80.PC != 0 {
		t.Fatalf("Z80 PC = %#x, want 0 after reset", g.Z80.PC)
	}
}

// TestWorkRAMRoundTrip exercises the 68k's direct path to its own work
// RAM window.
func TestWorkRAMRoundTrip(t *testing.T) {
	g := newTestMachine(t, make([]byte, 0x10000))
	if err := g.Bus.Write(0xFF0010, []byte{0xDE, 0xAD}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := make([]byte, 2)
	if err := g.Bus.Read(0xFF0010, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 0xDE || out[1] != 0xAD {
		t.Fatalf("work RAM round-trip = %v, want [0xDE 0xAD]", out)
	}
}

// TestZ80BankSelect exercises the 9-bit shift-register bank-select
// protocol (§6, SPEC_FULL supplemented feature #3): 9 single-bit writes
// build up the 68k-side window base address.
func TestZ80BankSelect(t *testing.T) {
	g := newTestMachine(t, make([]byte, 0x10000))
	bridge := &z80Bridge{z80: g.Z80}
	// Write bit pattern 1,0,0,0,0,0,0,0,0; each bit enters at the
	// register's top bit (bit 8) and moves down one place per later write.
	bits := []byte{1, 0, 0, 0, 0, 0, 0, 0, 0}
	for _, b := range bits {
		bridge.bank = (bridge.bank >> 1) | (uint16(b&1) << 8)
	}
	// The first bit written ends up, after 8 further shifts, at bit 0 of
	// the 9-bit register: bank == 1, window base == 1<<15 == 0x8000.
	if bridge.bankAddr() != 0x8000 {
		t.Fatalf("bank address = %#x, want 0x8000", bridge.bankAddr())
	}
}

// TestVDPReachableFromSystemBus confirms the VDP's port window is wired
// into the 68k bus at 0xC00000 and that a register write lands.
func TestVDPReachableFromSystemBus(t *testing.T) {
	g := newTestMachine(t, make([]byte, 0x10000))
	// Register-set command: reg 0 (mode1) = 0x04.
	if err := g.Bus.Write(0xC00004, []byte{0x80, 0x04}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if g.VDP.Regs[0] != 0x04 {
		t.Fatalf("VDP reg0 = %#x, want 0x04", g.VDP.Regs[0])
	}
}

// TestAudioStubProducesSilence checks that the YM2612 stub is wired
// onto the scheduler and accumulates samples a host can pull.
func TestAudioStubProducesSilence(t *testing.T) {
	g := newTestMachine(t, make([]byte, 0x10000))
	g.RunFor(1_000_000) // 1ms of simulated time
	samples := g.PullAudio()
	if len(samples) == 0 {
		t.Fatalf("expected at least one audio sample after 1ms")
	}
	for _, s := range samples {
		if s != 0 {
			t.Fatalf("expected silence, got sample %v", s)
		}
	}
	if len(g.PullAudio()) != 0 {
		t.Fatalf("PullAudio should drain the buffer")
	}
}

// TestVersionRegisterReadsNTSC checks the 0xA10001 version register
// reports NTSC/overseas/no-expansion (§6).
func TestVersionRegisterReadsNTSC(t *testing.T) {
	g := newTestMachine(t, make([]byte, 0x10000))
	out := make([]byte, 1)
	if err := g.Bus.Read(0xA10001, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 0xA0 {
		t.Fatalf("version register = %#x, want 0xA0", out[0])
	}
}

// TestControllerReadWithoutPress exercises scenario D (spec.md §8):
// with no buttons pressed, reading the port A data register returns
// 0x40 with TH high (the reset default) and 0x3F in bits 5..0; pressing
// Start clears bit 5 while TH stays high.
func TestControllerReadWithoutPress(t *testing.T) {
	g := newTestMachine(t, make([]byte, 0x10000))
	out := make([]byte, 1)

	if err := g.Bus.Read(0xA10003, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 0x7F {
		t.Fatalf("data port = %#x, want 0x7F (TH high, nothing pressed)", out[0])
	}

	g.SetPadButton(1, "start", true)
	if err := g.Bus.Read(0xA10003, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 0x5F {
		t.Fatalf("data port with Start held = %#x, want 0x5F (bit 5 clear)", out[0])
	}
}

// TestControllerTHLowSamplesBandC checks that driving TH low (via a data
// port write) switches the sampled nibble to up/down + B/C, and that a
// control port write resets TH back to its high default.
func TestControllerTHLowSamplesBandC(t *testing.T) {
	g := newTestMachine(t, make([]byte, 0x10000))
	out := make([]byte, 1)

	if err := g.Bus.Write(0xA10003, []byte{0x00}); err != nil {
		t.Fatalf("write: %v", err)
	}
	g.SetPadButton(1, "c", true)
	if err := g.Bus.Read(0xA10003, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 0x1F {
		t.Fatalf("data port with TH low and C held = %#x, want 0x1F", out[0])
	}

	if err := g.Bus.Write(0xA10009, []byte{0x00}); err != nil {
		t.Fatalf("control write: %v", err)
	}
	if err := g.Bus.Read(0xA10003, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 0x7F {
		t.Fatalf("data port after control reset = %#x, want 0x7F (TH high, C not sampled there)", out[0])
	}
}

// TestYM2612StatusAlwaysReady checks the status port never reports busy.
func TestYM2612StatusAlwaysReady(t *testing.T) {
	g := newTestMachine(t, make([]byte, 0x10000))
	out := make([]byte, 1)
	if err := g.Z80Bus.Read(0x4000, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 0 {
		t.Fatalf("status port = %#x, want 0 (not busy)", out[0])
	}
}

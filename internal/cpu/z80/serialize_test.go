package z80

import "testing"

func TestMarshalUnmarshalStateRoundTrip(t *testing.T) {
	mem := newRAM(0x10000)
	c := newTestCPU(t, mem)
	c.SetBC(0x1234)
	c.SetDE(0x5678)
	c.SetHL(0x9ABC)
	c.PC = 0x4000
	c.SP = 0x1234
	c.IM = 2
	c.IFF1, c.IFF2 = true, false

	buf := c.MarshalState()

	other := newTestCPU(t, mem)
	if err := other.UnmarshalState(buf); err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}

	if other.BC() != c.BC() {
		t.Fatalf("BC = %#x, want %#x", other.BC(), c.BC())
	}
	if other.HL() != c.HL() {
		t.Fatalf("HL = %#x, want %#x", other.HL(), c.HL())
	}
	if other.PC != c.PC {
		t.Fatalf("PC = %#x, want %#x", other.PC, c.PC)
	}
	if other.IM != c.IM {
		t.Fatalf("IM = %d, want %d", other.IM, c.IM)
	}
	if other.IFF1 != c.IFF1 || other.IFF2 != c.IFF2 {
		t.Fatalf("IFF1/IFF2 = %v/%v, want %v/%v", other.IFF1, other.IFF2, c.IFF1, c.IFF2)
	}
}

func TestUnmarshalStateRejectsShortBuffer(t *testing.T) {
	c := newTestCPU(t, newRAM(0x1000))
	if err := c.UnmarshalState([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for short buffer")
	}
}

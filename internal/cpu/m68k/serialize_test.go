package m68k

import "testing"

func TestMarshalUnmarshalStateRoundTrip(t *testing.T) {
	mem := newRAM(0x10000)
	c := newTestCPU(t, mem)
	c.Reg.D[0] = 0xDEADBEEF
	c.Reg.A[7] = 0x00FFFFFE
	c.Reg.PC = 0x1234
	c.Reg.SR = 0x2700
	c.Reg.USP = 0x1000
	c.Reg.SSP = 0x00FFFFFE
	c.VBR = 0x8000

	buf := c.MarshalState()

	other := newTestCPU(t, mem)
	if err := other.UnmarshalState(buf); err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}

	if other.Reg.D[0] != c.Reg.D[0] {
		t.Fatalf("D0 = %#x, want %#x", other.Reg.D[0], c.Reg.D[0])
	}
	if other.Reg.PC != c.Reg.PC {
		t.Fatalf("PC = %#x, want %#x", other.Reg.PC, c.Reg.PC)
	}
	if other.Reg.A[7] != c.Reg.A[7] {
		t.Fatalf("A7 = %#x, want %#x", other.Reg.A[7], c.Reg.A[7])
	}
	if other.VBR != c.VBR {
		t.Fatalf("VBR = %#x, want %#x", other.VBR, c.VBR)
	}
}

func TestUnmarshalStateRejectsShortBuffer(t *testing.T) {
	c := newTestCPU(t, newRAM(0x1000))
	if err := c.UnmarshalState([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for short buffer")
	}
}

func TestUnmarshalStateRejectsBadVersion(t *testing.T) {
	c := newTestCPU(t, newRAM(0x1000))
	buf := c.MarshalState()
	buf[0] = 0xFF
	if err := c.UnmarshalState(buf); err == nil {
		t.Fatalf("expected error for unsupported version")
	}
}

package computie

import "testing"

func firmwareWithVectors(sp, pc uint32) []byte {
	fw := make([]byte, romSize)
	fw[0], fw[1], fw[2], fw[3] = byte(sp>>24), byte(sp>>16), byte(sp>>8), byte(sp)
	fw[4], fw[5], fw[6], fw[7] = byte(pc>>24), byte(pc>>16), byte(pc>>8), byte(pc)
	return fw
}

func TestResetReadsVectorsFromROM(t *testing.T) {
	c, err := New(firmwareWithVectors(0x00FFFFFE, 0x00000100), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Reset()
	if c.CPU.Reg.A[7] != 0x00FFFFFE {
		t.Fatalf("SSP = %#x, want 0x00FFFFFE", c.CPU.Reg.A[7])
	}
	if c.CPU.Reg.PC != 0x00000100 {
		t.Fatalf("PC = %#x, want 0x100", c.CPU.Reg.PC)
	}
}

func TestRAMRoundTrip(t *testing.T) {
	c, _ := New(firmwareWithVectors(0x00FFFFFE, 0x00000100), nil)
	if err := c.Bus.Write(ramBase+0x10, []byte{0x12, 0x34}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := make([]byte, 2)
	if err := c.Bus.Read(ramBase+0x10, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 0x12 || out[1] != 0x34 {
		t.Fatalf("RAM round-trip = %v, want [0x12 0x34]", out)
	}
}

func TestSerialOutputAndInput(t *testing.T) {
	c, _ := New(firmwareWithVectors(0x00FFFFFE, 0x00000100), nil)

	var out []byte
	c.Serial.OnOutput(func(b byte) { out = append(out, b) })

	if err := c.Bus.Write(serialBase+regOut, []byte{'H'}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(out) != 1 || out[0] != 'H' {
		t.Fatalf("output callback saw %v, want ['H']", out)
	}

	c.Serial.PushInput([]byte("hi\n"))
	status := make([]byte, 1)
	if err := c.Bus.Read(serialBase+regStatus, status); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status[0]&1 == 0 {
		t.Fatalf("status bit0 not set with pending input")
	}
	in := make([]byte, 1)
	for _, want := range []byte("hi\n") {
		if err := c.Bus.Read(serialBase+regIn, in); err != nil {
			t.Fatalf("read in: %v", err)
		}
		if in[0] != want {
			t.Fatalf("TERM_IN = %q, want %q", in[0], want)
		}
	}
}

func TestSentinelStopsScheduler(t *testing.T) {
	c, _ := New(firmwareWithVectors(0x00FFFFFE, 0x00000100), nil)
	c.Reset()
	if !c.Running() {
		t.Fatalf("scheduler should be running after Reset")
	}
	if err := c.Bus.Write(serialBase+regSentinel, []byte{0xDE, 0xAD}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if c.Running() {
		t.Fatalf("scheduler should have stopped on sentinel write")
	}
	if !c.Serial.SentinelTriggered() {
		t.Fatalf("SentinelTriggered should report true")
	}
}

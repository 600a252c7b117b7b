package romload

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// interleaveSMD is the inverse transform, used only by this test to build
// a synthetic SMD image from a known flat image.
func interleaveSMD(flat []byte) []byte {
	out := make([]byte, len(flat))
	half := smdBlockSize / 2
	for block := 0; block+smdBlockSize <= len(flat); block += smdBlockSize {
		src := flat[block : block+smdBlockSize]
		odd := out[block : block+half]
		even := out[block+half : block+smdBlockSize]
		for i := 0; i < half; i++ {
			even[i] = src[2*i]
			odd[i] = src[2*i+1]
		}
	}
	return out
}

func TestLoadFlatBinaryPassesThrough(t *testing.T) {
	want := []byte{0x00, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x04, 0x00}
	dir := t.TempDir()
	path := filepath.Join(dir, "rom.bin")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("flat load = %v, want %v", got, want)
	}
}

func TestLoadSMDDeinterleaves(t *testing.T) {
	flat := make([]byte, smdBlockSize*2)
	for i := range flat {
		flat[i] = byte(i)
	}
	smdBody := interleaveSMD(flat)
	smd := append(make([]byte, smdHeaderSize), smdBody...)

	dir := t.TempDir()
	path := filepath.Join(dir, "rom.smd")
	if err := os.WriteFile(path, smd, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, flat) {
		t.Fatalf("de-interleaved ROM mismatch at first diff")
	}
}

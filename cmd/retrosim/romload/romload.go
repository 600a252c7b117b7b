// Package romload is a Host-side collaborator, not part of the core
// simulation: it turns a cartridge image file on disk into the flat,
// big-endian byte slice the Genesis machine expects at address 0
// (spec.md §6 "Genesis ROM preamble": "SMD-format ROMs are
// preprocessed...by the Host before handoff; the core receives only
// flat binary"). Grounded on the teacher's media_loader.go: a plain
// os.ReadFile plus a format-specific transform, no archive/compression
// dependency (see DESIGN.md's domain-stack note on why
// klauspost/compress and ulikunitz/xz have no component to bind to
// here).
package romload

import "os"

const smdBlockSize = 16 * 1024
const smdHeaderSize = 512

// Load reads path and returns the flat, de-interleaved ROM image ready
// to hand to genesis.New. SMD-format images (detected by a file length
// that is a 512-byte header plus a whole number of 16KiB blocks) are
// de-interleaved; anything else is returned unmodified as a flat binary.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if looksLikeSMD(data) {
		return deinterleaveSMD(data[smdHeaderSize:]), nil
	}
	return data, nil
}

func looksLikeSMD(data []byte) bool {
	if len(data) <= smdHeaderSize {
		return false
	}
	body := len(data) - smdHeaderSize
	return body%smdBlockSize == 0
}

// deinterleaveSMD undoes the SMD format's per-16KiB-block odd/even byte
// split: the first 8KiB of each block holds the odd-indexed output
// bytes, the second 8KiB holds the even-indexed ones.
func deinterleaveSMD(data []byte) []byte {
	out := make([]byte, len(data))
	half := smdBlockSize / 2
	for block := 0; block+smdBlockSize <= len(data); block += smdBlockSize {
		odd := data[block : block+half]
		even := data[block+half : block+smdBlockSize]
		dst := out[block : block+smdBlockSize]
		for i := 0; i < half; i++ {
			dst[2*i] = even[i]
			dst[2*i+1] = odd[i]
		}
	}
	return out
}

package ebitenhost

import "retrosim/internal/vdp"

// genesisFramer is implemented by internal/machine/genesis.Genesis; kept
// as a local interface (rather than importing the genesis package) so
// ebitenhost has no dependency on any specific machine package — any
// machine exposing a *vdp.Frame this way gets a FrameSource for free.
type genesisFramer interface {
	Frame() *vdp.Frame
}

// VDPFrameSource adapts a machine's VDP-backed Frame() accessor to
// FrameSource.
type VDPFrameSource struct {
	machine genesisFramer
}

// NewVDPFrameSource wraps a machine exposing Frame() *vdp.Frame.
func NewVDPFrameSource(machine genesisFramer) *VDPFrameSource {
	return &VDPFrameSource{machine: machine}
}

func (s *VDPFrameSource) CurrentFrame() (pix []uint32, width, height int) {
	f := s.machine.Frame()
	if f == nil {
		return nil, 0, 0
	}
	return f.Pix, f.Width, f.Height
}

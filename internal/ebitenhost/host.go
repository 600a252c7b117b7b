// Package ebitenhost implements the Host capability set a machine build
// consumes (spec.md §6 "Host contract"): add_window, register_controller,
// register_keyboard, create_pty, and add_audio_source. Grounded on the
// teacher's own frontend split — video_backend_ebiten.go for the window,
// audio_backend_oto.go for sound, terminal_host.go for the stdin/stdout
// side of Computie's serial redirection — generalized from the teacher's
// single fixed machine to this repo's Host-contract interfaces so any
// machine package (Genesis, Computie) can be driven through the same Host
// without depending on ebiten/oto itself.
package ebitenhost

import "errors"

var errNoWindow = errors.New("ebitenhost: AddWindow was never called")

// FrameSource is polled once per Draw by the window: a machine's VDP (or
// any other video-producing device) implements this by exposing its last
// published frame as a flat row-major pixel slice.
type FrameSource interface {
	// CurrentFrame returns the pixel buffer, width and height of the most
	// recently completed frame. The returned slice must not be mutated
	// by the caller; ebitenhost copies it before the next poll.
	CurrentFrame() (pix []uint32, width, height int)
}

// KeyEvent is a single raw key transition delivered to a register_keyboard
// sink.
type KeyEvent struct {
	Bytes   []byte // translated byte sequence (ASCII, or an escape sequence for special keys)
	Pressed bool
}

// ControllerEvent is a single button/axis transition delivered to a
// register_controller sink.
type ControllerEvent struct {
	Kind    string
	Button  int
	Pressed bool
}

// AudioSink receives interleaved samples from a peripheral registered via
// AddAudioSource. Channels matches the channel count requested at
// registration.
type AudioSink interface {
	PushSamples(samples []float32)
	Close() error
}

// Host wires a machine to a single ebiten window, one oto output stream
// per registered audio source, and a raw-terminal PTY bridge for serial
// redirection. The zero value is not usable; construct with New.
type Host struct {
	window *ebitenWindow
}

// New returns a Host with no window yet attached. AddWindow must be called
// before Run.
func New() *Host {
	return &Host{}
}

// AddWindow registers source as the frame producer the window polls every
// frame and sets the window title; it returns nothing.
// Matches spec.md §6's `add_window(frame_source)`.
func (h *Host) AddWindow(source FrameSource, title string) {
	h.window = newEbitenWindow(source, title)
}

// RegisterKeyboard installs sink to receive raw key transitions from the
// window. Matches spec.md §6's `register_keyboard(sink)`.
func (h *Host) RegisterKeyboard(sink func(KeyEvent)) {
	if h.window != nil {
		h.window.keySink = sink
	}
}

// RegisterController installs sink to receive controller events of the
// given kind ("genesis-pad", ...). Matches spec.md §6's
// `register_controller(kind, sink)`. The ebiten window backend does not
// yet decode joystick/gamepad input into machine-specific controller
// events (only keyboard), so this records the sink for a future gamepad
// poll without wiring one up — see DESIGN.md.
func (h *Host) RegisterController(kind string, sink func(ControllerEvent)) {
	if h.window != nil {
		h.window.controllerSinks = append(h.window.controllerSinks, sink)
	}
}

// AddAudioSource opens an oto output stream at sampleRate and returns a
// sink peripherals push interleaved float32 samples into. Matches
// spec.md §6's `add_audio_source(channels, sample_rate) -> sink`.
func (h *Host) AddAudioSource(channels, sampleRate int) (AudioSink, error) {
	return newOtoSink(channels, sampleRate)
}

// CreatePTY puts the host terminal in raw mode and bridges stdin/stdout to
// a byte-oriented read/write pair, for Computie's serial console redirect
// (spec.md §6's `create_pty(name)`). name is cosmetic (used only in log
// output) since no real pseudo-terminal allocation library exists in the
// retrieval pack; see DESIGN.md.
func CreatePTY(name string) (*TerminalPTY, error) {
	return newTerminalPTY(name)
}

// Run starts the ebiten window loop and blocks until the window closes.
// Must be called from the main goroutine.
func (h *Host) Run() error {
	if h.window == nil {
		return errNoWindow
	}
	return h.window.run()
}

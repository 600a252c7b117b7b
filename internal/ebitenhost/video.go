package ebitenhost

import (
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ebitenWindow is an ebiten.Game implementation that polls a FrameSource
// once per tick and forwards keyboard input to a registered sink.
// Grounded on the teacher's EbitenOutput (video_backend_ebiten.go),
// trimmed of the golang.design/x/clipboard paste path (no clipboard
// component exists in this framework's Host contract; see DESIGN.md) and
// of the standalone VideoOutput lifecycle interface, since this Host owns
// the window loop directly rather than exposing Start/Stop/Close to a
// caller.
type ebitenWindow struct {
	source FrameSource
	title  string

	mu          sync.RWMutex
	img         *ebiten.Image
	width       int
	height      int
	scale       int
	frameCount  uint64
	keySink     func(KeyEvent)
	controllerSinks []func(ControllerEvent)
}

func newEbitenWindow(source FrameSource, title string) *ebitenWindow {
	return &ebitenWindow{source: source, title: title, scale: 2, width: 320, height: 224}
}

func (w *ebitenWindow) run() error {
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetWindowSize(w.width*w.scale, w.height*w.scale)
	return ebiten.RunGame(w)
}

func (w *ebitenWindow) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	w.handleKeyboard()
	return nil
}

func (w *ebitenWindow) Draw(screen *ebiten.Image) {
	pix, width, height := w.source.CurrentFrame()
	if width <= 0 || height <= 0 {
		return
	}

	w.mu.Lock()
	if w.img == nil || w.width != width || w.height != height {
		w.img = ebiten.NewImage(width, height)
		w.width, w.height = width, height
	}
	rgba := make([]byte, width*height*4)
	for i, c := range pix {
		rgba[i*4+0] = byte(c >> 16)
		rgba[i*4+1] = byte(c >> 8)
		rgba[i*4+2] = byte(c)
		rgba[i*4+3] = 0xFF
	}
	w.img.WritePixels(rgba)
	w.frameCount++
	w.mu.Unlock()

	screen.DrawImage(w.img, nil)
}

func (w *ebitenWindow) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.width, w.height
}

// Snapshot returns a copy of the last drawn frame as a standard image, for
// screenshot/export use (see overlay.go).
func (w *ebitenWindow) Snapshot() *image.RGBA {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.img == nil {
		return nil
	}
	pixels := make([]byte, w.width*w.height*4)
	w.img.ReadPixels(pixels)
	out := &image.RGBA{
		Pix:    pixels,
		Stride: w.width * 4,
		Rect:   image.Rect(0, 0, w.width, w.height),
	}
	return out
}

func (w *ebitenWindow) handleKeyboard() {
	w.mu.RLock()
	sink := w.keySink
	w.mu.RUnlock()
	if sink == nil {
		return
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if r <= 0 || r > 0xFF {
			continue
		}
		sink(KeyEvent{Bytes: []byte{byte(r)}, Pressed: true})
	}

	for _, key := range specialKeys {
		if inpututil.IsKeyJustPressed(key.key) {
			sink(KeyEvent{Bytes: key.seq, Pressed: true})
		}
	}
}

var specialKeys = []struct {
	key ebiten.Key
	seq []byte
}{
	{ebiten.KeyEnter, []byte{'\n'}},
	{ebiten.KeyNumpadEnter, []byte{'\n'}},
	{ebiten.KeyBackspace, []byte{'\b'}},
	{ebiten.KeyTab, []byte{'\t'}},
	{ebiten.KeyEscape, []byte{0x1B}},
	{ebiten.KeyArrowUp, []byte{0x1B, '[', 'A'}},
	{ebiten.KeyArrowDown, []byte{0x1B, '[', 'B'}},
	{ebiten.KeyArrowRight, []byte{0x1B, '[', 'C'}},
	{ebiten.KeyArrowLeft, []byte{0x1B, '[', 'D'}},
	{ebiten.KeyHome, []byte{0x1B, '[', 'H'}},
	{ebiten.KeyEnd, []byte{0x1B, '[', 'F'}},
	{ebiten.KeyDelete, []byte{0x1B, '[', '3', '~'}},
}

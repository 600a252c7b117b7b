//go:build windows

package ebitenhost

import (
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// TerminalPTY is the Windows variant: os.Stdin has no non-blocking read,
// so this blocks in its own goroutine instead of polling EAGAIN. Grounded
// on the teacher's terminal_host_windows.go.
type TerminalPTY struct {
	name     string
	fd       int
	oldState *term.State
	stopCh   chan struct{}
	done     chan struct{}
	stopped  sync.Once
	onByte   func(byte)
}

func newTerminalPTY(name string) (*TerminalPTY, error) {
	return &TerminalPTY{
		name:   name,
		fd:     int(os.Stdin.Fd()),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

func (p *TerminalPTY) OnInput(fn func(byte)) { p.onByte = fn }

func (p *TerminalPTY) Start() error {
	oldState, err := term.MakeRaw(p.fd)
	if err != nil {
		close(p.done)
		return err
	}
	p.oldState = oldState

	go p.readLoop()
	return nil
}

func (p *TerminalPTY) readLoop() {
	defer close(p.done)
	buf := make([]byte, 1)

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if n > 0 {
			b := buf[0]
			if b == '\r' {
				b = '\n'
			}
			if b == 0x7F {
				b = 0x08
			}
			if p.onByte != nil {
				p.onByte(b)
			}
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func (p *TerminalPTY) Write(data []byte) (int, error) {
	return os.Stdout.Write(data)
}

func (p *TerminalPTY) Stop() {
	p.stopped.Do(func() { close(p.stopCh) })
	<-p.done
	if p.oldState != nil {
		_ = term.Restore(p.fd, p.oldState)
		p.oldState = nil
	}
}

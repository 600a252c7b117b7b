//go:build !windows

package ebitenhost

import (
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// TerminalPTY bridges the host's stdin/stdout to a byte-oriented pair for
// Computie's serial console redirect. Grounded directly on the teacher's
// TerminalHost (terminal_host.go): stdin is put in raw mode and read
// non-blocking on its own goroutine, CR is translated to LF and DEL to BS
// to match what a Computie-style line-oriented console expects. No real
// pseudo-terminal allocation happens — the retrieval pack carries no pty
// library — so "PTY" here names the role (spec.md §6's `create_pty`), not
// a /dev/pts device; see DESIGN.md.
type TerminalPTY struct {
	name string

	fd          int
	nonblockSet bool
	oldState    *term.State

	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once

	onByte func(byte)
}

func newTerminalPTY(name string) (*TerminalPTY, error) {
	return &TerminalPTY{
		name:   name,
		fd:     int(os.Stdin.Fd()),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// OnInput registers the callback invoked for each byte read from stdin,
// after CR/DEL translation. Typically wired to a machine's serial
// device's PushInput (one byte at a time).
func (p *TerminalPTY) OnInput(fn func(byte)) { p.onByte = fn }

// Start puts stdin into raw non-blocking mode and begins forwarding bytes
// to the OnInput callback.
func (p *TerminalPTY) Start() error {
	oldState, err := term.MakeRaw(p.fd)
	if err != nil {
		close(p.done)
		return err
	}
	p.oldState = oldState

	if err := syscall.SetNonblock(p.fd, true); err != nil {
		_ = term.Restore(p.fd, p.oldState)
		p.oldState = nil
		close(p.done)
		return err
	}
	p.nonblockSet = true

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

		n, err := syscall.Read(p.fd, buf)
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
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// Write sends output bytes to the host's stdout, for the machine side of
// the serial console to print received characters.
func (p *TerminalPTY) Write(data []byte) (int, error) {
	return os.Stdout.Write(data)
}

// Stop terminates the read goroutine and restores the terminal to
// cooked/blocking mode.
func (p *TerminalPTY) Stop() {
	p.stopped.Do(func() { close(p.stopCh) })
	<-p.done
	if p.nonblockSet {
		_ = syscall.SetNonblock(p.fd, false)
		p.nonblockSet = false
	}
	if p.oldState != nil {
		_ = term.Restore(p.fd, p.oldState)
		p.oldState = nil
	}
}

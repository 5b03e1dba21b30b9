package serialport

import (
	"bytes"
	"sync"
	"time"
)

// Fake is an in-memory Port used by package tests in link, phy, app and
// nvm to exercise the protocol without real hardware, in the spirit of
// moffa90-go-cyacd's io.ReadWriter-backed Programmer tests.
type Fake struct {
	mu sync.Mutex

	// EchoWrites, when true (the default), echoes every written byte
	// back on the next Read before any scripted reply, modelling the
	// half-duplex TX-tied-to-RX wiring in spec §4.1.
	EchoWrites bool

	// echo holds bytes queued by Write and always drains before feed,
	// since a real echo arrives the instant the byte is sent, ahead of
	// whatever the target sends afterwards. Tests otherwise call Feed
	// before the operation under test even runs, which would let a
	// single shared queue hand back the scripted reply as the echo.
	echo     bytes.Buffer
	feed     bytes.Buffer
	outbound bytes.Buffer

	Mode     Mode
	DTR, RTS bool
	Closed   bool

	Breaks int // counts Reconfigure calls that dropped to 300 baud
}

func NewFake() *Fake {
	return &Fake{EchoWrites: true}
}

// Feed queues bytes as if the target had sent them (in addition to any
// echo), for scripting a reply after a command.
func (f *Fake) Feed(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feed.Write(data)
}

// Written returns and clears everything written so far.
func (f *Fake) Written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, f.outbound.Len())
	copy(out, f.outbound.Bytes())
	f.outbound.Reset()
	return out
}

func (f *Fake) Reconfigure(mode Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mode.Baud == 300 {
		f.Breaks++
	}
	f.Mode = mode
	return nil
}

func (f *Fake) SetReadTimeout(time.Duration) error { return nil }

func (f *Fake) Write(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outbound.Write(data)
	if f.EchoWrites {
		f.echo.Write(data)
	}
	return len(data), nil
}

func (f *Fake) Read(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.echo.Len() == 0 && f.feed.Len() == 0 {
		// A real serial port with a read timeout returns 0 bytes and no
		// error when nothing arrives in time; bytes.Buffer would return
		// io.EOF instead, which would be misread as a transport fault.
		return 0, nil
	}
	if f.echo.Len() > 0 {
		return f.echo.Read(buf)
	}
	return f.feed.Read(buf)
}

func (f *Fake) SetDTR(on bool) error { f.DTR = on; return nil }
func (f *Fake) SetRTS(on bool) error { f.RTS = on; return nil }
func (f *Fake) Close() error         { f.Closed = true; return nil }

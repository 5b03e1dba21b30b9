// Package link implements the UPDI half-duplex UART framer: BREAK
// generation, the SYNCH handshake, echo suppression and the per-byte
// response-window timeout (spec §4.1).
//
// The shape follows tocurd-go-isp's ISP struct: a single type wrapping
// a serial.Port, with small methods that each do one wire-level thing
// and return a plain error.
package link

import (
	"time"

	"github.com/serialupdi/updiprog/errs"
	"github.com/serialupdi/updiprog/serialport"
)

const (
	// SYNCH is the first byte the host must send after a BREAK.
	SYNCH = 0x55

	defaultBaud        = 115200
	breakBaud          = 300
	defaultReadTimeout = time.Second
	breakSettleDelay   = 10 * time.Millisecond
)

// Link is the UPDI link-layer handle bound to one serial port. It is
// mutable and must be accessed by only one goroutine at a time (spec §5:
// the link is owned exclusively by the session for its lifetime).
type Link struct {
	Port        serialport.Port
	Baud        int
	ReadTimeout time.Duration

	// BreakCount and EchoFaultCount are observable retry counters, per
	// SPEC_FULL §12 (supplemented from original_source's verbose fault
	// counters) so a caller can log them without the link reaching for
	// a global logger.
	BreakCount     int
	EchoFaultCount int
}

// New wires a Link to an already-open port, with Baud set to 115200 and
// ReadTimeout to 1s per spec §4.1; callers may change either field
// before Open.
func New(port serialport.Port) *Link {
	return &Link{
		Port:        port,
		Baud:        defaultBaud,
		ReadTimeout: defaultReadTimeout,
	}
}

// Open configures the port at the link's baud, 8 data bits, even parity
// and two stop bits, the fixed UPDI frame (spec §4.1).
func (l *Link) Open() error {
	if err := l.Port.Reconfigure(serialport.Mode{
		Baud:     l.Baud,
		Parity:   serialport.ParityEven,
		StopBits: serialport.TwoStopBits,
	}); err != nil {
		return err
	}
	return l.Port.SetReadTimeout(l.ReadTimeout)
}

// Break sends a single BREAK: the port drops to 300 baud, one stop bit,
// and writes one zero byte, which holds the line low for about 33ms (start
// bit, eight zero data bits and a zero even-parity bit, 3.3ms each) --
// above the 24.6ms UPDI requires -- then the port is restored to the
// programming baud. This technique (a "slow zero frame" instead of a
// native break signal) is ported from pymcuprog's send_double_break,
// since no example in the corpus exposes a native UART break primitive.
func (l *Link) Break() error {
	l.BreakCount++
	if err := l.Port.Reconfigure(serialport.Mode{
		Baud:     breakBaud,
		Parity:   serialport.ParityEven,
		StopBits: serialport.OneStopBit,
	}); err != nil {
		return err
	}
	if _, err := l.Port.Write([]byte{0x00}); err != nil {
		return err
	}
	// Discard whatever echoes back at the slow baud; its framing is not
	// meaningful to us.
	discard := make([]byte, 1)
	_, _ = l.Port.Read(discard)

	time.Sleep(breakSettleDelay)
	return l.Open()
}

// DoubleBreak sends two BREAKs with a short gap, which pymcuprog uses to
// force the UPDI state machine into a known state when a single BREAK
// or an echo-mismatch leaves the link in doubt.
func (l *Link) DoubleBreak() error {
	if err := l.Break(); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return l.Break()
}

// Synch sends the SYNCH byte and consumes its echo. This must be the
// first data byte transmitted after a BREAK.
func (l *Link) Synch() error {
	return l.Send([]byte{SYNCH})
}

// Send writes data and consumes exactly one echoed byte per byte
// written before returning, enforcing the echo-symmetry invariant
// (spec §8.1). A mismatched echo byte triggers one DoubleBreak-and-
// resynch before surfacing a LinkFault to the caller.
func (l *Link) Send(data []byte) error {
	if _, err := l.Port.Write(data); err != nil {
		return &errs.LinkFault{Op: "write", Cause: err}
	}

	echoed, err := l.Receive(len(data))
	if err != nil {
		return err
	}

	for i := range data {
		if echoed[i] != data[i] {
			return l.recoverFromEchoMismatch(data[i], echoed[i])
		}
	}
	return nil
}

func (l *Link) recoverFromEchoMismatch(sent, got byte) error {
	l.EchoFaultCount++
	if err := l.DoubleBreak(); err != nil {
		return &errs.LinkFault{Op: "echo", Message: "recovery break failed", Cause: err}
	}
	if err := l.Synch(); err != nil {
		return &errs.LinkFault{Op: "echo", Message: "recovery synch failed", Cause: err}
	}
	return &errs.LinkFault{
		Op:      "echo",
		Message: "byte mismatch after echo; link was re-initialised",
		Cause:   nil,
	}
}

// Receive reads exactly n bytes, each subject to the link's
// ReadTimeout, and raises a LinkFault if the target does not reply in
// time (spec §4.1 "response window").
func (l *Link) Receive(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	deadline := time.Now().Add(l.ReadTimeout * time.Duration(max(n, 1)))
	buf := make([]byte, n)
	for len(out) < n {
		if time.Now().After(deadline) {
			return nil, &errs.LinkFault{Op: "timeout", Message: "no reply within read timeout"}
		}
		k, err := l.Port.Read(buf[:n-len(out)])
		if err != nil {
			return nil, &errs.LinkFault{Op: "read", Cause: err}
		}
		out = append(out, buf[:k]...)
	}
	return out, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

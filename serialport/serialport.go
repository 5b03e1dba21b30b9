// Package serialport is the abstract serial-port service described in
// spec §6: open/configure/write/read/close, kept independent of any
// particular transport so the link layer can be tested against a fake.
// There is no separate break operation; the link layer produces BREAK by
// reconfiguring the port to 300 baud and writing a zero byte.
package serialport

import (
	"time"

	"github.com/serialupdi/updiprog/errs"
)

// Parity mirrors the handful of parity settings UPDI framing needs.
type Parity int

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// StopBits mirrors the stop-bit counts UPDI framing needs.
type StopBits int

const (
	OneStopBit StopBits = iota
	TwoStopBits
)

// Mode is the frame configuration applied at Open and at Reconfigure.
type Mode struct {
	Baud     int
	Parity   Parity
	StopBits StopBits
}

// Port is the abstract serial transport. Implementations must guarantee
// that after Write returns, the bytes have been placed on the wire (no
// internal buffering that would desync echo accounting in the link
// layer above).
type Port interface {
	// Reconfigure changes baud/parity/stop-bits on an already-open port.
	// Used both for normal operation and to drop to 300 baud for BREAK.
	Reconfigure(mode Mode) error

	// SetReadTimeout sets the timeout applied to subsequent Read calls.
	SetReadTimeout(d time.Duration) error

	Write(data []byte) (int, error)
	Read(buf []byte) (int, error)

	// SetDTR and SetRTS drive the modem control lines used by the
	// tool-toggle-power and simple-unsafe-pulse HV activation variants.
	SetDTR(on bool) error
	SetRTS(on bool) error

	Close() error
}

// Name returns the implementation's port name where available. Optional
// interface; callers should type-assert.
type Named interface {
	Name() string
}

// ErrClosed is a ToolError describing a closed serial port. Neither Port
// implementation in this package returns it; after Close, bugstPort
// returns the wrapped go.bug.st/serial error and Fake keeps working.
var ErrClosed = &errs.ToolError{Message: "serial port is closed"}

package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/serialupdi/updiprog/errs"
)

// bugstPort adapts go.bug.st/serial to the Port interface, the way
// tocurd-go-isp's ISP.Port field is configured via serial.Mode and
// driven with SetDTR/SetRTS for activation pulses.
type bugstPort struct {
	name string
	port serial.Port
}

// Open opens name at the given mode using go.bug.st/serial, mirroring
// the teacher's serial.Mode{BaudRate, DataBits, StopBits, Parity}
// construction.
func Open(name string, mode Mode) (Port, error) {
	sp, err := serial.Open(name, toBugstMode(mode))
	if err != nil {
		return nil, &errs.ToolError{Message: fmt.Sprintf("open %s", name), Cause: err}
	}
	return &bugstPort{name: name, port: sp}, nil
}

func toBugstMode(m Mode) *serial.Mode {
	out := &serial.Mode{
		BaudRate: m.Baud,
		DataBits: 8,
	}
	switch m.Parity {
	case ParityEven:
		out.Parity = serial.EvenParity
	case ParityOdd:
		out.Parity = serial.OddParity
	default:
		out.Parity = serial.NoParity
	}
	switch m.StopBits {
	case TwoStopBits:
		out.StopBits = serial.TwoStopBits
	default:
		out.StopBits = serial.OneStopBit
	}
	return out
}

func (p *bugstPort) Name() string { return p.name }

func (p *bugstPort) Reconfigure(mode Mode) error {
	if err := p.port.SetMode(toBugstMode(mode)); err != nil {
		return &errs.ToolError{Message: "reconfigure port", Cause: err}
	}
	return nil
}

func (p *bugstPort) SetReadTimeout(d time.Duration) error {
	if err := p.port.SetReadTimeout(d); err != nil {
		return &errs.ToolError{Message: "set read timeout", Cause: err}
	}
	return nil
}

func (p *bugstPort) Write(data []byte) (int, error) {
	n, err := p.port.Write(data)
	if err != nil {
		return n, &errs.ToolError{Message: "write", Cause: err}
	}
	return n, nil
}

func (p *bugstPort) Read(buf []byte) (int, error) {
	n, err := p.port.Read(buf)
	if err != nil {
		return n, &errs.ToolError{Message: "read", Cause: err}
	}
	return n, nil
}

func (p *bugstPort) SetDTR(on bool) error {
	if err := p.port.SetDTR(on); err != nil {
		return &errs.ToolError{Message: "set DTR", Cause: err}
	}
	return nil
}

func (p *bugstPort) SetRTS(on bool) error {
	if err := p.port.SetRTS(on); err != nil {
		return &errs.ToolError{Message: "set RTS", Cause: err}
	}
	return nil
}

func (p *bugstPort) Close() error {
	if err := p.port.Close(); err != nil {
		return &errs.ToolError{Message: "close", Cause: err}
	}
	return nil
}

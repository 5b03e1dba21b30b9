package link

import (
	"testing"

	"github.com/serialupdi/updiprog/errs"
	"github.com/serialupdi/updiprog/serialport"
)

func TestSendConsumesEcho(t *testing.T) {
	port := serialport.NewFake()
	l := New(port)
	if err := l.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := l.Send([]byte{0x55}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got := port.Written(); len(got) != 1 || got[0] != 0x55 {
		t.Fatalf("unexpected bytes on wire: %x", got)
	}
}

func TestSendDetectsEchoMismatch(t *testing.T) {
	port := serialport.NewFake()
	port.EchoWrites = false
	l := New(port)
	if err := l.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}

	// Script a wrong echo followed by enough bytes for the recovery
	// DoubleBreak+Synch sequence to complete without hanging.
	port.Feed([]byte{0xAA})
	port.Feed([]byte{0x00})           // break echo #1
	port.Feed([]byte{0x00})           // break echo #2
	port.Feed([]byte{SYNCH})          // synch echo

	err := l.Send([]byte{0x55})
	var lf *errs.LinkFault
	if err == nil {
		t.Fatalf("expected LinkFault, got nil")
	}
	if !asLinkFault(err, &lf) {
		t.Fatalf("expected *errs.LinkFault, got %T: %v", err, err)
	}
	if lf.Op != "echo" {
		t.Fatalf("expected op=echo, got %q", lf.Op)
	}
	if l.EchoFaultCount != 1 {
		t.Fatalf("expected EchoFaultCount=1, got %d", l.EchoFaultCount)
	}
	if l.BreakCount != 2 {
		t.Fatalf("expected BreakCount=2 after recovery DoubleBreak, got %d", l.BreakCount)
	}
}

func TestReceiveTimesOutWithoutReply(t *testing.T) {
	port := serialport.NewFake()
	l := New(port)
	l.ReadTimeout = 0
	if err := l.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err := l.Receive(1)
	var lf *errs.LinkFault
	if !asLinkFault(err, &lf) || lf.Op != "timeout" {
		t.Fatalf("expected timeout LinkFault, got %v", err)
	}
}

func asLinkFault(err error, target **errs.LinkFault) bool {
	lf, ok := err.(*errs.LinkFault)
	if !ok {
		return false
	}
	*target = lf
	return true
}

package phy

import (
	"bytes"
	"testing"
	"time"

	"github.com/serialupdi/updiprog/link"
	"github.com/serialupdi/updiprog/serialport"
)

func newTestPhy(t *testing.T) (*Phy, *serialport.Fake) {
	t.Helper()
	port := serialport.NewFake()
	port.EchoWrites = true
	l := link.New(port)
	if err := l.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	return New(l), port
}

func TestLDCS(t *testing.T) {
	p, port := newTestPhy(t)
	port.Feed([]byte{0x55}) // PDI revision byte reply
	v, err := p.LDCS(0x00)
	if err != nil {
		t.Fatalf("ldcs: %v", err)
	}
	if v != 0x55 {
		t.Fatalf("got %02X, want 0x55", v)
	}
	wire := port.Written()
	if !bytes.Equal(wire, []byte{opLDCS | 0x00}) {
		t.Fatalf("wire=% X", wire)
	}
}

func TestSTCS(t *testing.T) {
	p, port := newTestPhy(t)
	if err := p.STCS(0x08, 0x59); err != nil {
		t.Fatalf("stcs: %v", err)
	}
	wire := port.Written()
	if !bytes.Equal(wire, []byte{opSTCS | 0x08, 0x59}) {
		t.Fatalf("wire=% X", wire)
	}
}

func TestSTSTwoPhaseAck(t *testing.T) {
	p, port := newTestPhy(t)
	port.Feed([]byte{ACK}) // address-phase ack
	port.Feed([]byte{ACK}) // data-phase ack
	if err := p.STS(0x1000, 2, []byte{0xAB}); err != nil {
		t.Fatalf("sts: %v", err)
	}
	wire := port.Written()
	wantOpcode := byte(opSTS | Address16 | Data8)
	if wire[0] != wantOpcode {
		t.Fatalf("opcode=%02X want %02X", wire[0], wantOpcode)
	}
}

func TestSTSMissingAckIsProtocolFault(t *testing.T) {
	p, _ := newTestPhy(t)
	// no ACK fed: after the echo is consumed there is nothing left to
	// read before the read timeout expires.
	p.Link.ReadTimeout = time.Microsecond
	err := p.STS(0x1000, 2, []byte{0xAB})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestBlockWriteSuppressedAck(t *testing.T) {
	p, port := newTestPhy(t)
	p.SetSuppressACK(true)
	data := []byte{1, 2, 3, 4}
	if err := p.WriteData(0x4000, data, 2); err != nil {
		t.Fatalf("writedata: %v", err)
	}
	wire := port.Written()
	// ST_PTR opcode + 2 address bytes, REPEAT opcode + count byte,
	// ST opcode, then the 4 data bytes verbatim (no ACK bytes are
	// awaited because ACK suppression is on).
	if !bytes.Contains(wire, data) {
		t.Fatalf("expected data bytes on wire, got % X", wire)
	}
}

func TestReadDataUsesPointerFastPath(t *testing.T) {
	p, port := newTestPhy(t)
	port.Feed([]byte{ACK}) // ST_PTR's address-set unit is ACKed like any other ST
	port.Feed([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	got, err := p.ReadData(0x0100, 4, 2)
	if err != nil {
		t.Fatalf("readdata: %v", err)
	}
	if !bytes.Equal(got, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Fatalf("got % X", got)
	}
	wire := port.Written()
	if wire[0] != byte(opST|PtrAddress|Data16) {
		t.Fatalf("expected ST_PTR opcode first, got %02X", wire[0])
	}
}

func TestRepeatRejectsOutOfRange(t *testing.T) {
	p, _ := newTestPhy(t)
	if err := p.Repeat(0); err == nil {
		t.Fatalf("expected error for n=0")
	}
	if err := p.Repeat(MaxRepeatSize + 1); err == nil {
		t.Fatalf("expected error for n=MaxRepeatSize+1")
	}
}

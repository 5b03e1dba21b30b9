package app

import (
	"testing"
	"time"

	"github.com/serialupdi/updiprog/errs"
	"github.com/serialupdi/updiprog/link"
	"github.com/serialupdi/updiprog/phy"
	"github.com/serialupdi/updiprog/serialport"
)

func newTestApp(t *testing.T) (*App, *serialport.Fake) {
	t.Helper()
	port := serialport.NewFake()
	port.EchoWrites = true
	l := link.New(port)
	if err := l.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	return New(phy.New(l), port), port
}

func TestDecodeSIB(t *testing.T) {
	raw := []byte("tinyAVR  :2:0 8       tinyAVR-0/1/2")
	info, err := DecodeSIB(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Family != "tinyAVR" {
		t.Fatalf("family=%q", info.Family)
	}
	if info.NVM != "2" {
		t.Fatalf("nvm=%q", info.NVM)
	}
}

func TestDecodeSIBRejectsShortString(t *testing.T) {
	if _, err := DecodeSIB([]byte("short")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEnterProgModeHappyPath(t *testing.T) {
	a, port := newTestApp(t)

	port.Feed([]byte{0x00})                  // InProgMode: NVMPROG clear
	port.Feed([]byte{1 << ASIKeyStatusNVMProg}) // key accepted
	port.Feed([]byte{0x00})                  // WaitUnlocked: unlocked
	port.Feed([]byte{1 << ASISysStatusNVMProg}) // final InProgMode check

	if err := a.EnterProgMode(); err != nil {
		t.Fatalf("enter progmode: %v", err)
	}
}

func TestEnterProgModeReturnsLockedError(t *testing.T) {
	a, port := newTestApp(t)
	a.Phy.Link.ReadTimeout = 5 * time.Millisecond

	port.Feed([]byte{0x00})                    // InProgMode: clear
	port.Feed([]byte{1 << ASIKeyStatusNVMProg}) // key accepted
	// No further bytes are fed, so the first status read inside
	// WaitUnlocked times out at the link level.

	err := a.EnterProgMode()
	var locked *errs.LockedError
	if !asLockedError(err, &locked) {
		t.Fatalf("expected LockedError, got %v", err)
	}
}

func TestChipEraseLockedUnlocksDevice(t *testing.T) {
	a, port := newTestApp(t)

	port.Feed([]byte{1 << ASIKeyStatusChipErase}) // key accepted
	port.Feed([]byte{0x00})                       // WaitUnlocked: unlocked

	if err := a.ChipEraseLocked(); err != nil {
		t.Fatalf("chip erase locked: %v", err)
	}
}

func asLockedError(err error, target **errs.LockedError) bool {
	le, ok := err.(*errs.LockedError)
	if !ok {
		return false
	}
	*target = le
	return true
}

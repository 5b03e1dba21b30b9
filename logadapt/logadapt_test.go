package logadapt

import (
	"testing"

	"github.com/serialupdi/updiprog/session"
)

var _ session.Logger = (*Logger)(nil)

func TestNewBuildsAStdoutLogger(t *testing.T) {
	l, err := New(Config{Level: "debug", Output: "stdout"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Debug("probing", "addr", 0x1000)
	l.Info("session started", "device", "attiny827")
	l.Error("nvm timeout", "region", "flash")
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "verbose"}); err == nil {
		t.Fatalf("expected an error for an unrecognized level")
	}
}

package configfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/serialupdi/updiprog/app"
)

func writeTempProfile(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadReturnsNamedProfileWithDefaults(t *testing.T) {
	path := writeTempProfile(t, `
profiles:
  default:
    port: /dev/ttyUSB0
    device: attiny827
`)
	p, err := Load(path, "default")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Port != "/dev/ttyUSB0" || p.Device != "attiny827" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Baud != 115200 {
		t.Fatalf("baud default = %d, want 115200", p.Baud)
	}
}

func TestLoadRejectsUnknownProfileName(t *testing.T) {
	path := writeTempProfile(t, `
profiles:
  default:
    port: /dev/ttyUSB0
    device: attiny827
`)
	if _, err := Load(path, "nope"); err == nil {
		t.Fatalf("expected an error for a missing profile")
	}
}

func TestParseHVModeKnownValues(t *testing.T) {
	cases := map[string]app.HVMode{
		"":                    app.HVNone,
		"none":                app.HVNone,
		"tool-toggle-power":   app.HVToolTogglePower,
		"user-toggle-power":   app.HVUserTogglePower,
		"simple-unsafe-pulse": app.HVSimpleUnsafePulse,
	}
	for name, want := range cases {
		got, err := ParseHVMode(name)
		if err != nil {
			t.Fatalf("ParseHVMode(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseHVMode(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseHVModeRejectsUnknown(t *testing.T) {
	if _, err := ParseHVMode("laser"); err == nil {
		t.Fatalf("expected an error for an unrecognized hv_mode")
	}
}

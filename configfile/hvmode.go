package configfile

import (
	"fmt"

	"github.com/serialupdi/updiprog/app"
)

// ParseHVMode maps a profile's hv_mode string onto app.HVMode.
func ParseHVMode(name string) (app.HVMode, error) {
	switch name {
	case "", "none":
		return app.HVNone, nil
	case "tool-toggle-power":
		return app.HVToolTogglePower, nil
	case "user-toggle-power":
		return app.HVUserTogglePower, nil
	case "simple-unsafe-pulse":
		return app.HVSimpleUnsafePulse, nil
	default:
		return app.HVNone, fmt.Errorf("unknown hv_mode: %s", name)
	}
}

package memmap

import (
	"fmt"

	"github.com/serialupdi/updiprog/errs"
)

// ByName looks up a built-in device descriptor by its Name field, for
// CLI and config-driven callers that only have a string.
func ByName(name string) (*Device, error) {
	switch name {
	case "attiny827":
		return ATtiny827(), nil
	case "atmega4809":
		return ATmega4809(), nil
	case "avr64du32":
		return AVR64DU32(), nil
	default:
		return nil, &errs.ToolError{Message: fmt.Sprintf("unknown device %q", name)}
	}
}

package session

import "github.com/serialupdi/updiprog/app"

// Config is the explicit configuration record spec §9 calls for in
// place of the source's dynamic CLI argument shapes: every knob a
// session needs is an enumerated field here, set through functional
// options following moffa90-go-cyacd's bootloader.Option pattern.
type Config struct {
	Logger Logger

	HVMode app.HVMode

	// LockedUserRow and LockedChipErase select the locked-device entry
	// flow to use when the initial handshake reports the device locked
	// (spec §4.3 unlock/user-row-on-locked-device).
	LockedUserRow   bool
	LockedChipErase bool
}

func defaultConfig() Config {
	return Config{
		Logger: nopLogger{},
		HVMode: app.HVNone,
	}
}

// Option configures a Session at construction time.
type Option func(*Config)

// WithLogger sets the session's log sink.
func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithHVMode selects the high-voltage activation variant applied before
// the first SYNCH (spec §4.3).
func WithHVMode(mode app.HVMode) Option {
	return func(c *Config) { c.HVMode = mode }
}

// WithLockedUserRow allows write_from_segments to fall back to the
// user-row-on-locked-device key flow instead of failing closed.
func WithLockedUserRow(enabled bool) Option {
	return func(c *Config) { c.LockedUserRow = enabled }
}

// WithLockedChipErase allows Start to recover a locked device by
// chip-erasing it with the CHIPERASE key.
func WithLockedChipErase(enabled bool) Option {
	return func(c *Config) { c.LockedChipErase = enabled }
}

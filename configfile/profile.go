// Package configfile loads a named session profile (serial port,
// baud rate, target device, activation mode) from YAML or environment
// variables, following enesaygn-device-service-v3's
// internal/config.Load pattern.
package configfile

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/serialupdi/updiprog/errs"
)

// Profile is one named programming target: which serial port to open,
// at what baud, which device descriptor to assume, and how to enter
// programming mode.
type Profile struct {
	Port   string `mapstructure:"port" validate:"required"`
	Baud   int    `mapstructure:"baud"`
	Device string `mapstructure:"device" validate:"required"`
	HVMode string `mapstructure:"hv_mode"`

	LockedUserRow   bool `mapstructure:"locked_user_row"`
	LockedChipErase bool `mapstructure:"locked_chip_erase"`

	Logging LoggingProfile `mapstructure:"logging"`
}

// LoggingProfile mirrors logadapt.Config's fields under mapstructure
// tags so a profile file can configure both in one place.
type LoggingProfile struct {
	Level      string `mapstructure:"level"`
	Output     string `mapstructure:"output"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Config holds every named Profile read from a configuration source.
type Config struct {
	Profiles map[string]Profile `mapstructure:"profiles"`
}

// Load reads a profile set from configPath (a YAML file, extension
// optional) merged with UPDIPROG_-prefixed environment variables, and
// returns the named profile.
func Load(configPath, profileName string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("UPDIPROG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, &errs.ToolError{Message: fmt.Sprintf("read config %s", configPath), Cause: err}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &errs.ToolError{Message: "decode config", Cause: err}
	}

	profile, ok := cfg.Profiles[profileName]
	if !ok {
		return nil, &errs.ToolError{Message: fmt.Sprintf("no such profile: %s", profileName), Cause: nil}
	}
	if profile.Port == "" {
		return nil, &errs.ToolError{Message: fmt.Sprintf("profile %s: port is required", profileName), Cause: nil}
	}
	if profile.Device == "" {
		return nil, &errs.ToolError{Message: fmt.Sprintf("profile %s: device is required", profileName), Cause: nil}
	}
	return &profile, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("profiles.default.baud", 115200)
	v.SetDefault("profiles.default.hv_mode", "none")
	v.SetDefault("profiles.default.logging.level", "info")
	v.SetDefault("profiles.default.logging.output", "stdout")
	v.SetDefault("profiles.default.logging.max_size_mb", 100)
	v.SetDefault("profiles.default.logging.max_backups", 3)
	v.SetDefault("profiles.default.logging.max_age_days", 28)
}

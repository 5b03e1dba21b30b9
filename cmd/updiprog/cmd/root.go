package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serialupdi/updiprog/configfile"
	"github.com/serialupdi/updiprog/logadapt"
	"github.com/serialupdi/updiprog/memmap"
	"github.com/serialupdi/updiprog/serialport"
	"github.com/serialupdi/updiprog/session"
)

var (
	configPath  string
	profileName string
)

var rootCmd = &cobra.Command{
	Use:   "updiprog",
	Short: "UPDI programmer for tinyAVR-0/1/2 and megaAVR-0 parts",
	Long: `updiprog drives a UPDI target over a single-wire UART link: BREAK/SYNCH
activation, NVM controller programming, and read/write/verify/erase of
flash, eeprom, fuses, lockbits and the user row.

Examples:
  updiprog ping --profile default
  updiprog write --profile default firmware.hex --erase --verify
  updiprog erase --profile default --region flash`,
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "updiprog.yaml", "path to the profile config file")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "default", "named profile to load from --config")
}

// openSession loads the named profile, opens its serial port, builds a
// Logger, and returns an un-started Session plus its logger for
// deferred Close.
func openSession() (*session.Session, *logadapt.Logger, error) {
	profile, err := configfile.Load(configPath, profileName)
	if err != nil {
		return nil, nil, err
	}

	hv, err := configfile.ParseHVMode(profile.HVMode)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logadapt.New(logadapt.Config{
		Level:      profile.Logging.Level,
		Output:     profile.Logging.Output,
		MaxSizeMB:  profile.Logging.MaxSizeMB,
		MaxBackups: profile.Logging.MaxBackups,
		MaxAgeDays: profile.Logging.MaxAgeDays,
		Compress:   profile.Logging.Compress,
	})
	if err != nil {
		return nil, nil, err
	}

	device, err := memmap.ByName(profile.Device)
	if err != nil {
		return nil, logger, err
	}

	port, err := serialport.Open(profile.Port, serialport.Mode{Baud: profile.Baud})
	if err != nil {
		return nil, logger, err
	}

	s := session.New(port, device,
		session.WithLogger(logger),
		session.WithHVMode(hv),
		session.WithLockedUserRow(profile.LockedUserRow),
		session.WithLockedChipErase(profile.LockedChipErase),
	)
	if profile.Baud != 0 {
		s.Link.Baud = profile.Baud
	}
	return s, logger, nil
}

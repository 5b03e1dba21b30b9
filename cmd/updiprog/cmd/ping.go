package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Start a session and read back the device signature",
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	s, logger, err := openSession()
	if err != nil {
		return err
	}
	defer logger.Close()
	defer s.End()

	if err := s.Start(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	sig, err := s.Ping()
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	fmt.Printf("signature: %02X %02X %02X (%s)\n", sig[0], sig[1], sig[2], s.Device.Name)
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Leave programming mode and reset the target",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	s, logger, err := openSession()
	if err != nil {
		return err
	}
	defer logger.Close()

	if err := s.Start(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if err := s.App.Reset(true); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := s.End(); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	fmt.Println("target reset")
	return nil
}

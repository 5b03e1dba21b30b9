package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serialupdi/updiprog/memmap"
)

var eraseRegion string

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase the whole chip, or one region with --region",
	RunE:  runErase,
}

func init() {
	rootCmd.AddCommand(eraseCmd)
	eraseCmd.Flags().StringVar(&eraseRegion, "region", "", "region to erase (flash, eeprom, user_row); omit for a full chip erase")
}

func runErase(cmd *cobra.Command, args []string) error {
	s, logger, err := openSession()
	if err != nil {
		return err
	}
	defer logger.Close()
	defer s.End()

	if err := s.Start(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	var region *memmap.Region
	if eraseRegion != "" {
		r := memmap.Region(eraseRegion)
		region = &r
	}
	if err := s.Erase(region); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	fmt.Println("erase complete")
	return nil
}

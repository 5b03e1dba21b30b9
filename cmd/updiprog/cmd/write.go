package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serialupdi/updiprog/hexfile"
)

var (
	writeErase  bool
	writeVerify bool
)

var writeCmd = &cobra.Command{
	Use:   "write <file.hex>",
	Short: "Write an Intel HEX image to the device",
	Args:  cobra.ExactArgs(1),
	RunE:  runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().BoolVar(&writeErase, "erase", true, "chip-erase before writing")
	writeCmd.Flags().BoolVar(&writeVerify, "verify", true, "read back and compare every segment after writing")
}

func runWrite(cmd *cobra.Command, args []string) error {
	s, logger, err := openSession()
	if err != nil {
		return err
	}
	defer logger.Close()
	defer s.End()

	if err := s.Start(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open hex file: %w", err)
	}
	defer f.Close()

	segments, err := hexfile.Decode(f, s.Device)
	if err != nil {
		return fmt.Errorf("decode hex file: %w", err)
	}

	if err := s.WriteFromSegments(segments, writeErase, writeVerify); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	fmt.Printf("wrote %d segment(s)\n", len(segments))
	return nil
}

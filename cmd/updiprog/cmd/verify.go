package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serialupdi/updiprog/hexfile"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file.hex>",
	Short: "Compare an Intel HEX image against the device without writing",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	var mismatches int
	for _, seg := range segments {
		r, err := s.Region(seg.Region)
		if err != nil {
			return err
		}
		if err := s.Verify(seg.Region, seg.Address-r.Address, seg.Data); err != nil {
			fmt.Fprintln(os.Stderr, err)
			mismatches++
		}
	}
	if mismatches > 0 {
		return fmt.Errorf("%d segment(s) failed verification", mismatches)
	}
	fmt.Printf("%d segment(s) verified\n", len(segments))
	return nil
}

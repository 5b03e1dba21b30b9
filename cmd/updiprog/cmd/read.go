package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serialupdi/updiprog/hexfile"
	"github.com/serialupdi/updiprog/memmap"
)

var (
	readRegion string
	readOffset uint32
	readLength int
	readOut    string
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read a region (or an explicit offset/length) out to an Intel HEX file",
	RunE:  runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringVar(&readRegion, "region", string(memmap.RegionFlash), "region to read")
	readCmd.Flags().Uint32Var(&readOffset, "offset", 0, "offset within the region")
	readCmd.Flags().IntVar(&readLength, "length", 0, "bytes to read; 0 means the whole region")
	readCmd.Flags().StringVar(&readOut, "out", "", "output HEX file path; defaults to <region>.hex")
}

func runRead(cmd *cobra.Command, args []string) error {
	s, logger, err := openSession()
	if err != nil {
		return err
	}
	defer logger.Close()
	defer s.End()

	if err := s.Start(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	region := memmap.Region(readRegion)
	r, err := s.Region(region)
	if err != nil {
		return err
	}
	length := readLength
	if length == 0 {
		length = r.Size
	}

	data, err := s.Read(region, readOffset, length)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	out := readOut
	if out == "" {
		out = readRegion + ".hex"
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	segments := []memmap.Segment{{Region: region, Address: r.Address + readOffset, Data: data}}
	if err := hexfile.Encode(f, segments, s.Device); err != nil {
		return fmt.Errorf("encode hex file: %w", err)
	}
	fmt.Printf("read %d byte(s) to %s\n", len(data), out)
	return nil
}

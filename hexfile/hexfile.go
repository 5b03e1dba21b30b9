// Package hexfile adapts github.com/marcinbor85/gohex's Intel HEX memory
// image to a device's AVR memory-space layout, routing each HEX
// segment to the memmap.Region its address falls in (spec §6).
package hexfile

import (
	"io"

	"github.com/marcinbor85/gohex"

	"github.com/serialupdi/updiprog/errs"
	"github.com/serialupdi/updiprog/memmap"
)

// Decode parses an Intel HEX stream and routes every segment it
// contains to a device region via memmap.RouteHexAddress, rebasing
// each segment's address onto dev's actual address space so the
// result can be handed straight to Session.WriteFromSegments.
func Decode(r io.Reader, dev *memmap.Device) ([]memmap.Segment, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, &errs.ToolError{Message: "parse intel hex", Cause: err}
	}

	var out []memmap.Segment
	for _, seg := range mem.GetDataSegments() {
		region, offset := memmap.RouteHexAddress(seg.Address)
		rgn, err := dev.Region(region)
		if err != nil {
			return nil, err
		}
		out = append(out, memmap.Segment{
			Region:  region,
			Address: rgn.Address + offset,
			Data:    append([]byte(nil), seg.Data...),
		})
	}
	return out, nil
}

// Encode writes segments back out as Intel HEX, applying each
// region's HEX base offset and skipping regions the format omits
// (spec §6's flash/eeprom/fuses/config_words/user_row emission list).
func Encode(w io.Writer, segments []memmap.Segment, dev *memmap.Device) error {
	mem := gohex.NewMemory()
	for _, seg := range segments {
		if !memmap.EmitToHex(seg.Region) {
			continue
		}
		rgn, err := dev.Region(seg.Region)
		if err != nil {
			return err
		}
		base, err := memmap.HexBaseOf(seg.Region)
		if err != nil {
			return err
		}
		offset := seg.Address - rgn.Address
		if err := mem.AddBinary(base+offset, seg.Data); err != nil {
			return &errs.ToolError{Message: "add segment to hex image", Cause: err}
		}
	}
	if err := mem.DumpIntelHex(w, 16); err != nil {
		return &errs.ToolError{Message: "dump intel hex", Cause: err}
	}
	return nil
}

package memmap

import "github.com/serialupdi/updiprog/errs"

// hexBase is the AVR HEX-offset routing table (spec §6): the base
// address a region occupies in the flat Intel-HEX address space. A HEX
// segment's address, minus the matching base, is its offset within the
// region.
var hexBase = map[Region]uint32{
	RegionFlash:    0x000000,
	RegionEeprom:   0x810000,
	RegionFuses:    0x820000,
	RegionLockbits: 0x830000,
	RegionSignatures: 0x840000,
	RegionUserRow:  0x850000,
	RegionBootRow:  0x860000,
}

// hexEmitted lists the regions written out when producing a HEX file
// (spec §6: "only eeprom, flash, fuses, config_words, and user_row are
// emitted").
var hexEmitted = map[Region]bool{
	RegionEeprom:      true,
	RegionFlash:       true,
	RegionFuses:       true,
	RegionConfigWords: true,
	RegionUserRow:     true,
}

// RouteHexAddress maps a flat HEX-file address to the region it targets
// and the offset within that region, by finding the highest base that
// does not exceed addr. An address below every known base routes to
// flash at its own value.
func RouteHexAddress(addr uint32) (Region, uint32) {
	best := RegionFlash
	bestBase := uint32(0)
	found := false
	for region, base := range hexBase {
		if addr >= base && (!found || base > bestBase) {
			best, bestBase, found = region, base, true
		}
	}
	return best, addr - bestBase
}

// HexBaseOf returns the flat HEX-file base address for region, raising
// UnsupportedMemoryError if the region has no HEX representation
// (internal_sram, calibration_row, dia, dci, config_words, user_id, icd).
func HexBaseOf(region Region) (uint32, error) {
	base, ok := hexBase[region]
	if !ok {
		return 0, &errs.UnsupportedMemoryError{Region: string(region), Op: "hex-offset routing"}
	}
	return base, nil
}

// EmitToHex reports whether region is included when reading a device
// out to a HEX file (spec §6).
func EmitToHex(region Region) bool {
	return hexEmitted[region]
}

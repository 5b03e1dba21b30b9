// Package memmap holds the device descriptor (spec §3): the immutable,
// per-session record of a part's family, NVM controller version, address
// width, signature and memory region table, plus the AVR HEX-offset
// routing table (§6) that maps an Intel-HEX segment's address to a
// region.
//
// Grounded on pymcuprog's deviceinfo/devices/attiny827.py
// (original_source), which shapes one device as a dict of per-region
// dicts (address_byte, size_bytes, page_size_bytes, ...) plus a handful
// of peripheral base addresses; this package turns that shape into a
// typed Go record.
package memmap

import "github.com/serialupdi/updiprog/errs"

// Region names the recognised memory regions (spec §3).
type Region string

const (
	RegionFlash          Region = "flash"
	RegionEeprom         Region = "eeprom"
	RegionFuses          Region = "fuses"
	RegionLockbits       Region = "lockbits"
	RegionSignatures     Region = "signatures"
	RegionUserRow        Region = "user_row"
	RegionBootRow        Region = "boot_row"
	RegionInternalSram   Region = "internal_sram"
	RegionCalibrationRow Region = "calibration_row"
	RegionDia            Region = "dia"
	RegionDci            Region = "dci"
	RegionConfigWords    Region = "config_words"
	RegionUserID         Region = "user_id"
	RegionICD            Region = "icd"
)

// RegionFlags captures the per-region behavioural switches the NVM
// driver and session layer branch on (spec §3, §4.4).
type RegionFlags struct {
	ErasableAsPage     bool // supports an individual page-erase op
	RequiresEraseWrite bool // a write must go through erase-write, not a plain write
	WordOriented       bool // writes must be even-length, even-aligned
	HiddenFromHex      bool // never emitted when reading out to a HEX file
	SingleCommitOnly   bool // must be written as exactly one page; a split commit raises AlignmentError
}

// MemoryRegion describes one named region of device memory.
type MemoryRegion struct {
	Name             Region
	Address          uint32
	Size             int
	PageSize         int // 0 for byte-addressable, non-page-buffered regions
	WriteGranularity int // bytes written per ST_PTR/ST cycle; usually 1 or 2
	Flags            RegionFlags
}

// Device is the immutable per-session device descriptor (spec §3).
type Device struct {
	Name        string
	Family      string // e.g. "tinyAVR-0/1/2", "AVR-Dx", "AVR-EA"
	NvmVersion  string // SIB NVM field: "0", "2", "3", "4", "5"
	AddressBits int    // 16 or 24
	Signature   [3]byte

	NvmCtrlBase uint32
	SyscfgBase  uint32

	regions map[Region]MemoryRegion
}

// NewDevice builds a descriptor from its region table. Callers own the
// region slice; NewDevice copies it into a lookup map.
func NewDevice(name, family, nvmVersion string, addressBits int, signature [3]byte, nvmCtrlBase, syscfgBase uint32, regions []MemoryRegion) *Device {
	d := &Device{
		Name:        name,
		Family:      family,
		NvmVersion:  nvmVersion,
		AddressBits: addressBits,
		Signature:   signature,
		NvmCtrlBase: nvmCtrlBase,
		SyscfgBase:  syscfgBase,
		regions:     make(map[Region]MemoryRegion, len(regions)),
	}
	for _, r := range regions {
		d.regions[r.Name] = r
	}
	return d
}

// Region looks up a named region, raising UnsupportedMemoryError if the
// device has no such region.
func (d *Device) Region(name Region) (MemoryRegion, error) {
	r, ok := d.regions[name]
	if !ok {
		return MemoryRegion{}, &errs.UnsupportedMemoryError{Region: string(name), Op: "lookup"}
	}
	return r, nil
}

// AddressSize is the address width in bytes, as the LDS/STS/LD/ST opcode
// encoding expects it (spec §4.2).
func (d *Device) AddressSize() int {
	if d.AddressBits <= 16 {
		return 2
	}
	return 3
}

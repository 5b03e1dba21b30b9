package memmap

// Concrete device descriptors. ATtiny827's region table is ported
// directly from pymcuprog's deviceinfo/devices/attiny827.py
// (original_source); ATmega4809 follows the same tinyAVR-0/megaAVR-0
// NVM-v0 region shape, scaled to its larger flash/SRAM, with its
// signature taken from the spec's own ping scenario (S1: 1E 96 51).
// AVR64DU32 has no corresponding original_source file either; its
// region table is hand-derived the same way ATmega4809's is, from the
// spec's own S6 scenario (a 32-byte user-row write committed as one
// page) and the NVM-v4 word-oriented, no-page-buffer access pattern
// P:2/P:4 already share.

// ATtiny827 returns the descriptor for the attiny827, an NVM-v0
// tinyAVR-0/1/2 part.
func ATtiny827() *Device {
	return NewDevice("attiny827", "tinyAVR-0/1/2", "0", 16, [3]byte{0x1E, 0x93, 0x27},
		0x1000, 0x0F00,
		[]MemoryRegion{
			{Name: RegionEeprom, Address: 0x1400, Size: 0x80, PageSize: 0x20, WriteGranularity: 1,
				Flags: RegionFlags{ErasableAsPage: true, RequiresEraseWrite: true}},
			{Name: RegionFlash, Address: 0x8000, Size: 0x2000, PageSize: 0x40, WriteGranularity: 2,
				Flags: RegionFlags{ErasableAsPage: true, RequiresEraseWrite: true, WordOriented: true}},
			{Name: RegionFuses, Address: 0x1280, Size: 0x09, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{}},
			{Name: RegionInternalSram, Address: 0x3C00, Size: 0x0400, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{HiddenFromHex: true}},
			{Name: RegionLockbits, Address: 0x128A, Size: 0x01, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{}},
			{Name: RegionSignatures, Address: 0x1100, Size: 0x40, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{}},
			{Name: RegionUserRow, Address: 0x1300, Size: 0x20, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{ErasableAsPage: true}},
		})
}

// ATmega4809 returns the descriptor for the atmega4809, an NVM-v0
// megaAVR-0 part, as exercised by the ping scenario in spec §8 (S1).
func ATmega4809() *Device {
	return NewDevice("atmega4809", "megaAVR-0", "0", 16, [3]byte{0x1E, 0x96, 0x51},
		0x1000, 0x0F00,
		[]MemoryRegion{
			{Name: RegionEeprom, Address: 0x1400, Size: 0x200, PageSize: 0x20, WriteGranularity: 1,
				Flags: RegionFlags{ErasableAsPage: true, RequiresEraseWrite: true}},
			{Name: RegionFlash, Address: 0x4000, Size: 0xC000, PageSize: 0x80, WriteGranularity: 2,
				Flags: RegionFlags{ErasableAsPage: true, RequiresEraseWrite: true, WordOriented: true}},
			{Name: RegionFuses, Address: 0x1280, Size: 0x0A, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{}},
			{Name: RegionInternalSram, Address: 0x3800, Size: 0x1800, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{HiddenFromHex: true}},
			{Name: RegionLockbits, Address: 0x128A, Size: 0x01, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{}},
			{Name: RegionSignatures, Address: 0x1100, Size: 0x40, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{}},
			{Name: RegionUserRow, Address: 0x1300, Size: 0x20, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{ErasableAsPage: true}},
		})
}

// AVR64DU32 returns the descriptor for the avr64du32, an NVM-v4
// AVR-DU part. Its user row must be committed as exactly one 32-byte
// page operation (spec §8 S6); SingleCommitOnly on RegionUserRow
// enforces that instead of letting Session.Write silently split it.
func AVR64DU32() *Device {
	return NewDevice("avr64du32", "AVR-DU", "4", 24, [3]byte{0x1E, 0x96, 0x67},
		0x1000, 0x0F00,
		[]MemoryRegion{
			{Name: RegionEeprom, Address: 0x1400, Size: 0x200, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{RequiresEraseWrite: true}},
			{Name: RegionFlash, Address: 0x800000, Size: 0x10000, PageSize: 0x200, WriteGranularity: 2,
				Flags: RegionFlags{WordOriented: true}},
			{Name: RegionFuses, Address: 0x1280, Size: 0x0C, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{}},
			{Name: RegionInternalSram, Address: 0x4000, Size: 0x4000, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{HiddenFromHex: true}},
			{Name: RegionLockbits, Address: 0x128A, Size: 0x01, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{}},
			{Name: RegionSignatures, Address: 0x1100, Size: 0x40, PageSize: 1, WriteGranularity: 1,
				Flags: RegionFlags{}},
			{Name: RegionUserRow, Address: 0x1300, Size: 0x20, PageSize: 0x20, WriteGranularity: 2,
				Flags: RegionFlags{SingleCommitOnly: true}},
		})
}

package memmap

import "testing"

func TestDeviceRegionLookup(t *testing.T) {
	d := ATtiny827()
	r, err := d.Region(RegionFlash)
	if err != nil {
		t.Fatalf("flash lookup: %v", err)
	}
	if r.Address != 0x8000 || r.Size != 0x2000 {
		t.Fatalf("unexpected flash region: %+v", r)
	}
}

func TestDeviceRegionLookupMissing(t *testing.T) {
	d := ATtiny827()
	if _, err := d.Region(RegionBootRow); err == nil {
		t.Fatalf("expected UnsupportedMemoryError for a region this part has no entry for")
	}
}

func TestAddressSizeFollowsAddressBits(t *testing.T) {
	if got := ATtiny827().AddressSize(); got != 2 {
		t.Fatalf("16-bit part address size = %d, want 2", got)
	}
}

func TestRouteHexAddressFuses(t *testing.T) {
	region, offset := RouteHexAddress(0x820003)
	if region != RegionFuses || offset != 3 {
		t.Fatalf("got (%s, %#x), want (fuses, 0x3)", region, offset)
	}
}

func TestRouteHexAddressEeprom(t *testing.T) {
	region, offset := RouteHexAddress(0x810010)
	if region != RegionEeprom || offset != 0x10 {
		t.Fatalf("got (%s, %#x), want (eeprom, 0x10)", region, offset)
	}
}

func TestRouteHexAddressFlash(t *testing.T) {
	region, offset := RouteHexAddress(0x000100)
	if region != RegionFlash || offset != 0x100 {
		t.Fatalf("got (%s, %#x), want (flash, 0x100)", region, offset)
	}
}

func TestEmitToHexExcludesInternalSram(t *testing.T) {
	if EmitToHex(RegionInternalSram) {
		t.Fatalf("internal_sram must never be emitted to a hex file")
	}
	if !EmitToHex(RegionFlash) {
		t.Fatalf("flash must be emitted to a hex file")
	}
}

func TestSplitPagesRespectsPageSize(t *testing.T) {
	seg := Segment{Region: RegionFlash, Address: 0x8000, Data: make([]byte, 0x100)}
	pages := seg.SplitPages(0x40)
	if len(pages) != 4 {
		t.Fatalf("expected 4 pages, got %d", len(pages))
	}
	for i, p := range pages {
		wantAddr := uint32(0x8000 + i*0x40)
		if p.Address != wantAddr || len(p.Data) != 0x40 {
			t.Fatalf("page %d: address=%#x len=%d", i, p.Address, len(p.Data))
		}
	}
}

func TestSplitPagesLeavesShortSegmentWhole(t *testing.T) {
	seg := Segment{Region: RegionEeprom, Address: 0x10, Data: []byte{1, 2}}
	pages := seg.SplitPages(0x20)
	if len(pages) != 1 || len(pages[0].Data) != 2 {
		t.Fatalf("expected segment left whole, got %+v", pages)
	}
}

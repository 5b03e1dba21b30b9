package hexfile

import (
	"bytes"
	"testing"

	"github.com/serialupdi/updiprog/memmap"
)

func TestDecodeRoutesFlashSegmentToDeviceAddress(t *testing.T) {
	dev := memmap.ATtiny827()
	var hex bytes.Buffer
	flash, err := dev.Region(memmap.RegionFlash)
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	if err := Encode(&hex, []memmap.Segment{
		{Region: memmap.RegionFlash, Address: flash.Address, Data: []byte{0x01, 0x02, 0x03, 0x04}},
	}, dev); err != nil {
		t.Fatalf("encode: %v", err)
	}

	segments, err := Decode(&hex, dev)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	got := segments[0]
	if got.Region != memmap.RegionFlash {
		t.Fatalf("region = %v, want flash", got.Region)
	}
	if got.Address != flash.Address {
		t.Fatalf("address = %#x, want %#x", got.Address, flash.Address)
	}
	if !bytes.Equal(got.Data, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Fatalf("data = % X", got.Data)
	}
}

func TestDecodeRoutesEepromSegment(t *testing.T) {
	dev := memmap.ATtiny827()
	eeprom, err := dev.Region(memmap.RegionEeprom)
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	var hex bytes.Buffer
	if err := Encode(&hex, []memmap.Segment{
		{Region: memmap.RegionEeprom, Address: eeprom.Address + 2, Data: []byte{0xAA}},
	}, dev); err != nil {
		t.Fatalf("encode: %v", err)
	}

	segments, err := Decode(&hex, dev)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(segments) != 1 || segments[0].Region != memmap.RegionEeprom {
		t.Fatalf("unexpected segments: %+v", segments)
	}
	if segments[0].Address != eeprom.Address+2 {
		t.Fatalf("address = %#x, want %#x", segments[0].Address, eeprom.Address+2)
	}
}

func TestEncodeSkipsRegionsHiddenFromHex(t *testing.T) {
	dev := memmap.ATtiny827()
	sram, err := dev.Region(memmap.RegionInternalSram)
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	var hex bytes.Buffer
	if err := Encode(&hex, []memmap.Segment{
		{Region: memmap.RegionInternalSram, Address: sram.Address, Data: []byte{0xFF}},
	}, dev); err != nil {
		t.Fatalf("encode: %v", err)
	}

	segments, err := Decode(&hex, dev)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected internal_sram to be omitted, got %+v", segments)
	}
}

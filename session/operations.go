package session

import (
	"github.com/serialupdi/updiprog/errs"
	"github.com/serialupdi/updiprog/memmap"
)

// Erase performs a chip erase when region is nil, otherwise a
// region-erase if the region supports one (spec §4.5 erase(region?)).
func (s *Session) Erase(region *memmap.Region) error {
	if region == nil {
		return s.Nvm.ChipErase()
	}
	switch *region {
	case memmap.RegionEeprom:
		return s.Nvm.EraseEeprom()
	case memmap.RegionUserRow:
		r, err := s.Region(memmap.RegionUserRow)
		if err != nil {
			return err
		}
		return s.Nvm.EraseUserRow(r.Address, r.Size)
	case memmap.RegionFlash:
		r, err := s.Region(memmap.RegionFlash)
		if err != nil {
			return err
		}
		if r.PageSize == 0 {
			return &errs.AlignmentError{Region: string(memmap.RegionFlash), Reason: "flash has no page size to erase by"}
		}
		for off := 0; off < r.Size; off += r.PageSize {
			if err := s.Nvm.EraseFlashPage(r.Address + uint32(off)); err != nil {
				return err
			}
		}
		return nil
	default:
		if _, err := s.Region(*region); err != nil {
			return err
		}
		return &errs.UnsupportedMemoryError{Region: string(*region), Op: "erase"}
	}
}

// Write writes data to region at offset, splitting across pages and
// committing each page before continuing (spec §4.5 write).
func (s *Session) Write(region memmap.Region, offset uint32, data []byte) error {
	r, err := s.Region(region)
	if err != nil {
		return err
	}
	if r.Flags.WordOriented && (len(data)%2 != 0 || offset%2 != 0) {
		return &errs.AlignmentError{Region: string(region), Reason: "word-oriented region requires even length and offset"}
	}
	if r.Flags.SingleCommitOnly && r.PageSize > 0 && int((r.Address+offset)%uint32(r.PageSize))+len(data) > r.PageSize {
		return &errs.AlignmentError{Region: string(region), Reason: "region must be committed as exactly one page"}
	}

	seg := memmap.Segment{Region: region, Address: r.Address + offset, Data: data}
	pages := seg.SplitPages(r.PageSize)

	for _, page := range pages {
		if err := s.writeRegionPage(region, r, page); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) writeRegionPage(region memmap.Region, r memmap.MemoryRegion, page memmap.Segment) error {
	switch region {
	case memmap.RegionFuses, memmap.RegionLockbits:
		return s.Nvm.WriteFuse(page.Address, page.Data)
	case memmap.RegionEeprom:
		return s.Nvm.WriteEeprom(page.Address, page.Data)
	case memmap.RegionUserRow, memmap.RegionBootRow:
		if s.Locked {
			return s.App.WriteUserRowLocked(page.Address, page.Data)
		}
		return s.Nvm.WriteUserRow(page.Address, page.Data)
	default:
		return s.Nvm.WriteFlash(page.Address, page.Data)
	}
}

// Read reads n bytes from region at offset via the block fast path
// (spec §4.5 read).
func (s *Session) Read(region memmap.Region, offset uint32, n int) ([]byte, error) {
	r, err := s.Region(region)
	if err != nil {
		return nil, err
	}
	addr := r.Address + offset
	out := make([]byte, 0, n)
	for len(out) < n {
		chunk := n - len(out)
		if chunk > 256 {
			chunk = 256
		}
		data, err := s.App.Phy.ReadData(addr, chunk, s.App.AddrSize)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
		addr += uint32(chunk)
	}
	return out, nil
}

// Verify reads back region at offset and compares it byte-exact to
// data, raising VerifyMismatchError at the first differing address
// (spec §4.5 verify, §8.2).
func (s *Session) Verify(region memmap.Region, offset uint32, data []byte) error {
	r, err := s.Region(region)
	if err != nil {
		return err
	}
	got, err := s.Read(region, offset, len(data))
	if err != nil {
		return err
	}
	for i := range data {
		if got[i] != data[i] {
			return &errs.VerifyMismatchError{
				Region:   string(region),
				Address:  r.Address + offset + uint32(i),
				Expected: data[i],
				Actual:   got[i],
			}
		}
	}
	return nil
}

// WriteFromSegments routes each segment to its region (already resolved
// by the caller via memmap.RouteHexAddress) and writes it, optionally
// chip-erasing first and verifying after (spec §4.5
// write_from_segments). Segments are processed in the order given; a
// VerifyMismatchError on one segment does not abort the rest.
func (s *Session) WriteFromSegments(segments []memmap.Segment, erase, verify bool) error {
	if erase {
		if err := s.Erase(nil); err != nil {
			return err
		}
	}

	var firstMismatch error
	for _, seg := range segments {
		r, err := s.Region(seg.Region)
		if err != nil {
			return err
		}
		offset := seg.Address - r.Address
		if err := s.Write(seg.Region, offset, seg.Data); err != nil {
			return err
		}
		if verify {
			if err := s.Verify(seg.Region, offset, seg.Data); err != nil && firstMismatch == nil {
				firstMismatch = err
			}
		}
	}
	return firstMismatch
}

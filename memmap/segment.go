package memmap

// Segment is an (address, bytes) pair (spec §3 "Memory segment"),
// addressed within a single region's own address space -- not the flat
// HEX-file address space HexBase/RouteHexAddress translate to and from.
type Segment struct {
	Region  Region
	Address uint32
	Data    []byte
}

// SplitPages breaks a segment into page-aligned chunks of at most
// pageSize bytes each, so the NVM driver can commit one page per write
// (spec §4.5 "splits data across pages; commits each page before
// continuing"). A pageSize of 0 or 1 returns the segment unsplit.
func (s Segment) SplitPages(pageSize int) []Segment {
	if pageSize <= 1 || len(s.Data) == 0 {
		return []Segment{s}
	}
	var out []Segment
	for off := 0; off < len(s.Data); {
		addr := s.Address + uint32(off)
		end := off + pageSize - int(addr%uint32(pageSize))
		if end > len(s.Data) {
			end = len(s.Data)
		}
		out = append(out, Segment{
			Region:  s.Region,
			Address: addr,
			Data:    s.Data[off:end],
		})
		off = end
	}
	return out
}

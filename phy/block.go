package phy

import "github.com/serialupdi/updiprog/errs"

// StPtr loads the internal pointer register with addr, the first step
// of the ST_PTR + REPEAT + ST(PTR_INC) block fast path (spec §4.2).
func (p *Phy) StPtr(addr uint32, addrSize int) error {
	return p.ST(PtrAddress, addrSize, encodeAddress(addr, addrSize))
}

// LdPtrInc reads n bytes through the pointer register, auto-
// incrementing after each byte.
func (p *Phy) LdPtrInc(n int) ([]byte, error) {
	return p.LD(PtrInc, 1, n)
}

// LdPtrInc16 reads words words through the pointer register.
func (p *Phy) LdPtrInc16(words int) ([]byte, error) {
	return p.LD(PtrInc, 2, words)
}

// StPtrInc writes data through the pointer register in unitSize-byte
// units, auto-incrementing after each unit. The caller must have
// already issued StPtr and an appropriately sized Repeat for blocks
// longer than one access unit.
func (p *Phy) StPtrInc(data []byte, unitSize int) error {
	return p.ST(PtrInc, unitSize, data)
}

// ReadData reads size bytes of data space at addr via the block fast
// path, chunked to MaxRepeatSize, matching readwrite.py's read_data.
func (p *Phy) ReadData(addr uint32, size int, addrSize int) ([]byte, error) {
	if size > MaxRepeatSize {
		return nil, &errs.ProtocolFault{Op: "ReadData", Message: "cannot read more than one repeat block at a time"}
	}
	if err := p.StPtr(addr, addrSize); err != nil {
		return nil, err
	}
	if size > 1 {
		if err := p.Repeat(size); err != nil {
			return nil, err
		}
	}
	return p.LdPtrInc(size)
}

// ReadDataWords reads words words of data space at addr.
func (p *Phy) ReadDataWords(addr uint32, words int, addrSize int) ([]byte, error) {
	if words > MaxRepeatSize/2 {
		return nil, &errs.ProtocolFault{Op: "ReadDataWords", Message: "cannot read more than one repeat block at a time"}
	}
	if err := p.StPtr(addr, addrSize); err != nil {
		return nil, err
	}
	if words > 1 {
		if err := p.Repeat(words); err != nil {
			return nil, err
		}
	}
	return p.LdPtrInc16(words)
}

// WriteDataWords writes data (an even-length byte slice) as words to
// addr. A single word is special-cased to one ST of width 2.
func (p *Phy) WriteDataWords(addr uint32, data []byte, addrSize int) error {
	if len(data)%2 != 0 {
		return &errs.AlignmentError{Region: "", Reason: "word write with odd length"}
	}
	if len(data) == 2 {
		return p.STS(addr, addrSize, data)
	}
	if len(data) > MaxRepeatSize*2 {
		return &errs.ProtocolFault{Op: "WriteDataWords", Message: "cannot write more than one repeat block at a time"}
	}
	if err := p.StPtr(addr, addrSize); err != nil {
		return err
	}
	if err := p.Repeat(len(data) / 2); err != nil {
		return err
	}
	return p.StPtrInc(data, 2)
}

// WriteData writes data to addr, special-casing 1- and 2-byte writes to
// direct STS calls and chunking longer writes across MaxRepeatSize-byte
// blocks via the pointer fast path, matching readwrite.py's write_data.
func (p *Phy) WriteData(addr uint32, data []byte, addrSize int) error {
	switch len(data) {
	case 0:
		return nil
	case 1:
		return p.STS(addr, addrSize, data)
	case 2:
		if err := p.STS(addr, addrSize, data[:1]); err != nil {
			return err
		}
		return p.STS(addr+1, addrSize, data[1:])
	}

	index := 0
	remaining := len(data)
	for remaining > 0 {
		chunk := remaining
		if chunk > MaxRepeatSize {
			chunk = MaxRepeatSize
		}
		if err := p.StPtr(addr, addrSize); err != nil {
			return err
		}
		if err := p.Repeat(chunk); err != nil {
			return err
		}
		if err := p.StPtrInc(data[index:index+chunk], 1); err != nil {
			return err
		}
		index += chunk
		addr += uint32(chunk)
		remaining -= chunk
	}
	return nil
}

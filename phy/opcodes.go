// Package phy implements the UPDI physical instruction set: the
// byte-level LDCS/STCS/LDS/STS/LD/ST/REPEAT/KEY opcodes and their
// address/data-size variants (spec §4.2), plus the block read/write
// fast path built from ST_PTR + REPEAT + ST(PTR_INC).
//
// Opcode byte values are ported from pymcuprog's serialupdi/constants.py
// (original_source), which this module's teacher has no equivalent of.
package phy

import (
	"github.com/serialupdi/updiprog/errs"
	"github.com/serialupdi/updiprog/link"
)

// Instruction base opcodes (high nibble / top bits of the opcode byte).
const (
	opLDS    = 0x00
	opSTS    = 0x40
	opLD     = 0x20
	opST     = 0x60
	opLDCS   = 0x80
	opSTCS   = 0xC0
	opREPEAT = 0xA0
	opKEY    = 0xE0
)

// Pointer-access modes for LD/ST, values per constants.py's UPDI_PTR*.
const (
	PtrNone    byte = 0x00 // use pointer register as-is, no increment
	PtrInc     byte = 0x04 // auto-increment after access
	PtrAddress byte = 0x08 // load a new address into the pointer register
)

// Address-size and data-size encodings, packed into the low bits of the
// opcode byte.
const (
	Address8  = 0x00
	Address16 = 0x04
	Address24 = 0x08

	Data8  = 0x00
	Data16 = 0x01
	Data24 = 0x02
)

// KEY size codes.
const (
	Key64  byte = 0x00 // 8-byte key
	Key128 byte = 0x01 // 16-byte key
	Key256 byte = 0x02 // 32-byte key
)

// SIB size codes, aliases of the KEY size codes per constants.py.
const (
	SIB8Bytes  = Key64
	SIB16Bytes = Key128
	SIB32Bytes = Key256
)

const (
	// ACK is the one-byte acknowledgment the PHY sends after accepting
	// a store (glossary: ACK response).
	ACK = 0x40

	// MaxRepeatSize is the largest block a single REPEAT can cover: an
	// 8-bit repeat count with off-by-one counting tops out at 256.
	MaxRepeatSize = 0xFF + 1
)

// Phy is the physical-opcode handle bound to one Link.
type Phy struct {
	Link *link.Link

	// suppressACK mirrors CTRLA.RSD: when true, ST does not wait for
	// the per-unit ACK (spec §4.2 block-write fast path). STS always
	// waits for both of its ACKs.
	suppressACK bool
}

func New(l *link.Link) *Phy {
	return &Phy{Link: l}
}

// LDCS reads a one-byte control/status register.
func (p *Phy) LDCS(csAddress byte) (byte, error) {
	if err := p.Link.Send([]byte{opLDCS | (csAddress & 0x0F)}); err != nil {
		return 0, err
	}
	reply, err := p.Link.Receive(1)
	if err != nil {
		return 0, err
	}
	return reply[0], nil
}

// STCS writes a one-byte control/status register. No reply is sent.
func (p *Phy) STCS(csAddress, value byte) error {
	return p.Link.Send([]byte{opSTCS | (csAddress & 0x0F), value})
}

// Key sends an 8/16/32-byte activation key. No reply is sent.
func (p *Phy) Key(sizeCode byte, key []byte) error {
	return p.Link.Send(append([]byte{opKEY | (sizeCode & 0x03)}, key...))
}

// SIB reads the System Information Block, requesting the given size
// code's worth of ASCII bytes. The reply has no framing beyond its
// fixed length.
func (p *Phy) SIB(sizeCode byte, length int) ([]byte, error) {
	if err := p.Link.Send([]byte{opKEY | 0x04 | (sizeCode & 0x03)}); err != nil {
		return nil, err
	}
	return p.Link.Receive(length)
}

// LDS reads addrSize bytes of address followed by dataSize bytes of
// data from data space at addr.
func (p *Phy) LDS(addr uint32, addrSize, dataSize int) ([]byte, error) {
	opcode := byte(opLDS | addressSizeBits(addrSize) | dataSizeBits(dataSize))
	frame := append([]byte{opcode}, encodeAddress(addr, addrSize)...)
	if err := p.Link.Send(frame); err != nil {
		return nil, err
	}
	return p.Link.Receive(dataSize)
}

// STS writes dataSize bytes of data to data space at addr. The PHY
// acknowledges the address phase before the data is sent and the data
// phase once it is accepted (spec §4.2 "two-phase" store).
func (p *Phy) STS(addr uint32, addrSize int, data []byte) error {
	opcode := byte(opSTS | addressSizeBits(addrSize) | dataSizeBits(len(data)))
	frame := append([]byte{opcode}, encodeAddress(addr, addrSize)...)
	if err := p.Link.Send(frame); err != nil {
		return err
	}
	if err := p.expectACK("STS address phase"); err != nil {
		return err
	}
	if err := p.Link.Send(data); err != nil {
		return err
	}
	return p.expectACK("STS data phase")
}

// LD reads units access units of unitWidth bytes each (1 or 2) through
// the internal pointer register, optionally auto-incrementing it after
// each unit. Reads carry no ACK, so the whole reply is read in one
// shot once a REPEAT has armed the unit count.
func (p *Phy) LD(ptrMode byte, unitWidth, units int) ([]byte, error) {
	opcode := opLD | ptrMode | byte(dataSizeBits(unitWidth))
	if err := p.Link.Send([]byte{opcode}); err != nil {
		return nil, err
	}
	return p.Link.Receive(unitWidth * units)
}

// ST writes one or more access units through the internal pointer
// register. unitSize is the width (in bytes) of a single access; when a
// REPEAT is armed, data holds that many units back-to-back and the PHY
// emits one ACK per unit as it streams in -- this per-unit ACK is what
// spec §4.2's RSD bit suppresses for throughput. When ptrMode is
// PtrAddress, data is instead the single address to load into the
// pointer register (the ST_PTR idiom that starts a block op).
func (p *Phy) ST(ptrMode byte, unitSize int, data []byte) error {
	opcode := opST | ptrMode | byte(dataSizeBits(unitSize))
	if err := p.Link.Send([]byte{opcode}); err != nil {
		return err
	}
	for off := 0; off < len(data); off += unitSize {
		end := off + unitSize
		if end > len(data) {
			end = len(data)
		}
		if err := p.Link.Send(data[off:end]); err != nil {
			return err
		}
		if !p.suppressACK {
			if err := p.expectACK("ST"); err != nil {
				return err
			}
		}
	}
	return nil
}

// Repeat arms the next instruction to execute n times. n must be in
// [1, MaxRepeatSize]; REPEAT is not composable (spec §4.2 invariant).
func (p *Phy) Repeat(n int) error {
	if n < 1 || n > MaxRepeatSize {
		return &errs.ProtocolFault{Op: "REPEAT", Message: "count out of range"}
	}
	count := n - 1
	if count <= 0xFF {
		return p.Link.Send([]byte{opREPEAT | 0x00, byte(count)})
	}
	return p.Link.Send([]byte{opREPEAT | 0x01, byte(count & 0xFF), byte(count >> 8)})
}

// SetSuppressACK toggles whether ST waits for the per-byte ACK,
// mirroring CTRLA.RSD. Callers must still issue the matching STCS to
// the device before relying on this.
func (p *Phy) SetSuppressACK(suppress bool) {
	p.suppressACK = suppress
}

func (p *Phy) expectACK(op string) error {
	reply, err := p.Link.Receive(1)
	if err != nil {
		return err
	}
	if reply[0] != ACK {
		return &errs.ProtocolFault{Op: op, Message: "missing ACK byte"}
	}
	return nil
}

func addressSizeBits(n int) int {
	switch n {
	case 1:
		return Address8
	case 2:
		return Address16
	default:
		return Address24
	}
}

func dataSizeBits(n int) int {
	switch n {
	case 1:
		return Data8
	case 2:
		return Data16
	default:
		return Data24
	}
}

func encodeAddress(addr uint32, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		out[i] = byte(addr >> (8 * i))
	}
	return out
}

// Package nvm implements the family-tagged NVM controller state
// machines (spec §5): chip erase, page erase, page/word write and fuse
// write, dispatched on the (family, NVM version) pair the SIB reveals.
//
// Grounded directly on pymcuprog's serialupdi/nvmp0.py, nvmp4.py and
// nvmp5.py (original_source), which each hard-code one NVM controller
// generation's CTRLA command words and register layout. P:2 and P:3
// (AVR-Dx and AVR-EA) were not present in the retrieval pack as their
// own files; the word-oriented variant below reuses P:4's command
// layout for both, and the page-oriented variant reuses P:5's for both,
// since each pair shares the documented access pattern -- see
// DESIGN.md.
package nvm

import (
	"time"

	"github.com/serialupdi/updiprog/errs"
	"github.com/serialupdi/updiprog/phy"
)

// Version identifies the NVM controller generation, keyed directly on
// the SIB's NVM field.
type Version string

const (
	VersionP0 Version = "0" // tinyAVR-0/1/2, megaAVR-0: 16-bit, page-buffered
	VersionP2 Version = "2" // AVR-Dx: 24-bit, word-oriented, no page buffer
	VersionP3 Version = "3" // AVR-EA: 24-bit, page-buffered
	VersionP4 Version = "4" // AVR-DU: 24-bit, word-oriented, no page buffer
	VersionP5 Version = "5" // AVR-EB: 24-bit, page-buffered
)

// registers is the NVMCTRL peripheral's register layout relative to its
// base address. Only ctrlA and status are used by this driver; addr/data
// are only touched directly by P:0's fuse-write path.
type registers struct {
	ctrlA, status, data, addr byte
}

// commands is one family's CTRLA command word set. Zero-valued fields a
// variant never reads are simply never issued.
type commands struct {
	noCmd                byte
	chipErase            byte
	flashPageErase       byte
	flashWrite           byte // word-oriented direct write
	flashPageBufferClr   byte // page-oriented only
	flashPageWrite       byte // page-oriented only
	flashPageEraseWrite  byte // page-oriented only
	eepromErase          byte
	eepromWrite          byte // word-oriented direct write
	eepromPageBufferClr  byte // page-oriented only
	eepromPageEraseWrite byte // page-oriented only
	writeFuse            byte // P:0 only: dedicated WRITE_FUSE command
}

type statusBits struct {
	writeErrorMask byte
	eepromBusy     byte
	flashBusy      byte
}

// Controller is the generic NVM state machine body; New binds it to one
// family's registers/commands/status-bit layout.
type Controller struct {
	Phy           *phy.Phy
	AddrSize      int
	Base          uint32
	Version       Version
	HasPageBuffer bool

	regs registers
	cmds commands
	bits statusBits
}

// New constructs the controller for the given SIB NVM version.
func New(p *phy.Phy, addrSize int, nvmCtrlBase uint32, version Version) (*Controller, error) {
	switch version {
	case VersionP0:
		return &Controller{
			Phy: p, AddrSize: addrSize, Base: nvmCtrlBase, Version: version,
			HasPageBuffer: true,
			regs:          registers{ctrlA: 0x00, status: 0x02, data: 0x06, addr: 0x08},
			cmds: commands{
				noCmd: 0x00, flashPageWrite: 0x01, flashPageErase: 0x02,
				flashPageEraseWrite: 0x03, flashPageBufferClr: 0x04, chipErase: 0x05,
				eepromErase: 0x06, writeFuse: 0x07,
			},
			bits: statusBits{writeErrorMask: 1 << 2, eepromBusy: 1 << 1, flashBusy: 1 << 0},
		}, nil

	case VersionP2, VersionP4:
		return &Controller{
			Phy: p, AddrSize: addrSize, Base: nvmCtrlBase, Version: version,
			HasPageBuffer: false,
			regs:          registers{ctrlA: 0x00, status: 0x06, data: 0x08, addr: 0x0C},
			cmds: commands{
				noCmd: 0x00, flashWrite: 0x02, flashPageErase: 0x08,
				eepromWrite: 0x12, eepromPageEraseWrite: 0x13, eepromErase: 0x30,
				chipErase: 0x20,
			},
			bits: statusBits{writeErrorMask: 0x70, eepromBusy: 1 << 0, flashBusy: 1 << 1},
		}, nil

	case VersionP3, VersionP5:
		return &Controller{
			Phy: p, AddrSize: addrSize, Base: nvmCtrlBase, Version: version,
			HasPageBuffer: true,
			regs:          registers{ctrlA: 0x00, status: 0x06, data: 0x08, addr: 0x0C},
			cmds: commands{
				noCmd: 0x00, flashPageWrite: 0x04, flashPageEraseWrite: 0x05,
				flashPageErase: 0x08, flashPageBufferClr: 0x0F,
				eepromPageEraseWrite: 0x15,
				eepromPageBufferClr:  0x1F, chipErase: 0x20, eepromErase: 0x30,
			},
			bits: statusBits{writeErrorMask: 0x70, eepromBusy: 1 << 0, flashBusy: 1 << 1},
		}, nil
	}
	return nil, &errs.UnsupportedMemoryError{Region: "nvm", Op: "version " + string(version)}
}

func (c *Controller) executeCommand(cmd byte) error {
	return c.Phy.WriteData(c.Base+uint32(c.regs.ctrlA), []byte{cmd}, c.AddrSize)
}

// waitReady polls NVMCTRL.STATUS until neither busy bit is set, raising
// a NvmTimeoutError after 100ms -- nvmp5.py's default wait_nvm_ready
// budget, applied uniformly across families.
func (c *Controller) waitReady() error {
	deadline := time.Now().Add(100 * time.Millisecond)
	for {
		status, err := c.Phy.ReadData(c.Base+uint32(c.regs.status), 1, c.AddrSize)
		if err != nil {
			return err
		}
		if status[0]&c.bits.writeErrorMask != 0 {
			return &errs.ProtocolFault{Op: "nvm-status", Message: "NVM write error reported by controller"}
		}
		if status[0]&(c.bits.eepromBusy|c.bits.flashBusy) == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return &errs.NvmTimeoutError{Region: "nvmctrl", After: "100ms"}
		}
	}
}

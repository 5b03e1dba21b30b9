package nvm

import "github.com/serialupdi/updiprog/errs"

// ChipErase erases the whole part via the NVM controller. On a locked
// device this fails; a locked part is erased through the chip-erase KEY
// flow in app.ChipEraseLocked instead, which Session.Start runs when the
// LockedChipErase option is set.
func (c *Controller) ChipErase() error {
	if err := c.waitReady(); err != nil {
		return err
	}
	if err := c.executeCommand(c.cmds.chipErase); err != nil {
		return err
	}
	readyErr := c.waitReady()
	_ = c.executeCommand(c.cmds.noCmd)
	return readyErr
}

// EraseFlashPage erases one flash page at address.
func (c *Controller) EraseFlashPage(address uint32) error {
	if err := c.waitReady(); err != nil {
		return err
	}
	if !c.HasPageBuffer {
		// P:2/P:4: erase command is issued before the dummy write.
		if err := c.executeCommand(c.cmds.flashPageErase); err != nil {
			return err
		}
		if err := c.Phy.WriteData(address, []byte{0xFF}, c.AddrSize); err != nil {
			return err
		}
	} else {
		if err := c.Phy.WriteData(address, []byte{0xFF}, c.AddrSize); err != nil {
			return err
		}
		if err := c.executeCommand(c.cmds.flashPageErase); err != nil {
			return err
		}
	}
	readyErr := c.waitReady()
	_ = c.executeCommand(c.cmds.noCmd)
	return readyErr
}

// EraseEeprom erases the whole EEPROM region.
func (c *Controller) EraseEeprom() error {
	if err := c.waitReady(); err != nil {
		return err
	}
	if err := c.executeCommand(c.cmds.eepromErase); err != nil {
		return err
	}
	readyErr := c.waitReady()
	_ = c.executeCommand(c.cmds.noCmd)
	return readyErr
}

// EraseUserRow erases the user row. On P:0 the user row is EEPROM-backed
// and must be erased one location at a time with a dummy write; on every
// other family it is flash-backed and erased as a single page.
func (c *Controller) EraseUserRow(address uint32, size int) error {
	if c.Version != VersionP0 {
		return c.EraseFlashPage(address)
	}
	if err := c.waitReady(); err != nil {
		return err
	}
	for offset := 0; offset < size; offset++ {
		if err := c.Phy.WriteData(address+uint32(offset), []byte{0xFF}, c.AddrSize); err != nil {
			return err
		}
	}
	if err := c.executeCommand(c.cmds.flashPageErase); err != nil {
		return err
	}
	return c.waitReady()
}

// WriteFlash writes data to flash, using word access (flash is always
// word-oriented on UPDI parts).
func (c *Controller) WriteFlash(address uint32, data []byte) error {
	return c.writeNvm(address, data, true, c.flashCommitCommand())
}

func (c *Controller) flashCommitCommand() byte {
	if c.HasPageBuffer {
		return c.cmds.flashPageEraseWrite
	}
	return c.cmds.flashWrite
}

// WriteUserRow writes data to the user row. P:0 treats the user row as
// EEPROM (byte access); every later family treats it as flash, with
// word access on page-buffered families (P:3/P:5) and byte access on
// word-oriented ones (P:2/P:4) -- which is exactly c.HasPageBuffer.
func (c *Controller) WriteUserRow(address uint32, data []byte) error {
	if c.Version == VersionP0 {
		return c.WriteEeprom(address, data)
	}
	return c.writeNvm(address, data, c.HasPageBuffer, c.flashCommitCommand())
}

// WriteEeprom writes data to EEPROM, using byte access.
func (c *Controller) WriteEeprom(address uint32, data []byte) error {
	commit := c.cmds.eepromWrite
	if c.HasPageBuffer {
		commit = c.cmds.eepromPageEraseWrite
	}
	if c.Version == VersionP0 {
		commit = c.cmds.flashPageEraseWrite // P:0 reuses the generic erase-write page command for EEPROM too
	}
	return c.writeNvmEeprom(address, data, commit)
}

// WriteFuse writes one fuse byte. P:0 loads NVMCTRL.ADDR/DATA directly
// and issues the dedicated WRITE_FUSE command; every later family has no
// separate fuse space and fuses are written as EEPROM.
func (c *Controller) WriteFuse(address uint32, data []byte) error {
	if c.Version != VersionP0 {
		return c.WriteEeprom(address, data)
	}
	if len(data) != 1 {
		return &errs.AlignmentError{Region: "fuses", Reason: "fuse write must be exactly one byte"}
	}
	if err := c.waitReady(); err != nil {
		return err
	}
	addrReg := c.Base + uint32(c.regs.addr)
	if err := c.Phy.WriteData(addrReg, []byte{byte(address), byte(address >> 8)}, c.AddrSize); err != nil {
		return err
	}
	if err := c.Phy.WriteData(c.Base+uint32(c.regs.data), data, c.AddrSize); err != nil {
		return err
	}
	if err := c.executeCommand(c.cmds.writeFuse); err != nil {
		return err
	}
	return c.waitReady()
}

// writeNvm implements the common page-buffer-clear-then-commit sequence
// used by flash writes (and, via WriteUserRow, the user row on
// page-buffered families). Word-oriented families skip the clear step
// entirely since they have no page buffer to clear.
func (c *Controller) writeNvm(address uint32, data []byte, wordAccess bool, commit byte) error {
	if err := c.waitReady(); err != nil {
		return err
	}
	if c.HasPageBuffer {
		if err := c.executeCommand(c.cmds.flashPageBufferClr); err != nil {
			return err
		}
		if err := c.waitReady(); err != nil {
			return err
		}
	}

	write := func() error {
		if wordAccess {
			return c.Phy.WriteDataWords(address, data, c.AddrSize)
		}
		return c.Phy.WriteData(address, data, c.AddrSize)
	}

	if c.HasPageBuffer {
		// Page-buffered: data lands in the page buffer first, and a
		// separate commit command then writes it to NVM.
		if err := write(); err != nil {
			return err
		}
		if c.Version == VersionP5 {
			if err := c.verifyPageBufferCRC(address, data, wordAccess); err != nil {
				return err
			}
		}
		if err := c.executeCommand(commit); err != nil {
			return err
		}
	} else {
		// Word-oriented, no page buffer: the commit command arms direct
		// write mode and the data write itself performs the write.
		if err := c.executeCommand(commit); err != nil {
			return err
		}
		if err := write(); err != nil {
			return err
		}
	}
	readyErr := c.waitReady()
	_ = c.executeCommand(c.cmds.noCmd)
	return readyErr
}

// writeNvmEeprom mirrors writeNvm for byte-oriented EEPROM writes,
// clearing the EEPROM page buffer (not the flash one) on page-buffered
// families, and ordering the commit command relative to the data write
// the same way writeNvm does.
func (c *Controller) writeNvmEeprom(address uint32, data []byte, commit byte) error {
	if err := c.waitReady(); err != nil {
		return err
	}
	if c.HasPageBuffer {
		clearCmd := c.cmds.eepromPageBufferClr
		if c.Version == VersionP0 {
			clearCmd = c.cmds.flashPageBufferClr // P:0 has one shared page buffer
		}
		if err := c.executeCommand(clearCmd); err != nil {
			return err
		}
		if err := c.waitReady(); err != nil {
			return err
		}
		if err := c.Phy.WriteData(address, data, c.AddrSize); err != nil {
			return err
		}
		if err := c.executeCommand(commit); err != nil {
			return err
		}
	} else {
		if err := c.executeCommand(commit); err != nil {
			return err
		}
		if err := c.Phy.WriteData(address, data, c.AddrSize); err != nil {
			return err
		}
	}
	readyErr := c.waitReady()
	_ = c.executeCommand(c.cmds.noCmd)
	return readyErr
}

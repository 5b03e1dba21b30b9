// Package app implements the UPDI application/handshake layer (spec
// §4.3): SIB read and decode, device-ID read, KEY-based activation into
// NVM programming mode or chip-erase/user-row-locked flows, and the
// three high-voltage activation variants.
//
// Grounded directly on pymcuprog's serialupdi/application.py
// (original_source): enter_progmode/leave_progmode/unlock/
// write_user_row_locked_device/reset/wait_unlocked/wait_urow_prog map
// one-to-one onto the methods below.
package app

import (
	"time"

	"github.com/serialupdi/updiprog/errs"
	"github.com/serialupdi/updiprog/phy"
	"github.com/serialupdi/updiprog/serialport"
)

// HVMode selects how (or whether) a high-voltage UPDI activation pulse
// is applied before the first SYNCH (spec §4.3).
type HVMode int

const (
	HVNone HVMode = iota
	HVToolTogglePower
	HVUserTogglePower
	HVSimpleUnsafePulse
)

// App is the application-layer handle bound to one Phy.
type App struct {
	Phy      *phy.Phy
	Port     serialport.Port
	AddrSize int // 2 or 3, set once the SIB reveals the NVM version
}

func New(p *phy.Phy, port serialport.Port) *App {
	return &App{Phy: p, Port: port, AddrSize: 3}
}

// Activate brings up the link per the selected HV mode, sends BREAK and
// SYNCH, and reads back the SIB. A failed SIB read is retried once after
// a DoubleBreak and SYNCH. If the retry fails too, its error (a LinkFault
// or ProtocolFault) is returned as is: it is not reclassified as
// errs.LockedError, and Session.Start passes it on unchanged.
func (a *App) Activate(mode HVMode) (*SIBInfo, error) {
	if err := a.applyHVPulse(mode); err != nil {
		return nil, err
	}

	if err := a.Phy.Link.Break(); err != nil {
		return nil, err
	}
	if err := a.Phy.Link.Synch(); err != nil {
		return nil, err
	}

	info, err := a.ReadSIB()
	if err == nil {
		return info, nil
	}

	if err := a.Phy.Link.DoubleBreak(); err != nil {
		return nil, err
	}
	if err := a.Phy.Link.Synch(); err != nil {
		return nil, err
	}
	return a.ReadSIB()
}

func (a *App) applyHVPulse(mode HVMode) error {
	switch mode {
	case HVNone:
		return nil
	case HVToolTogglePower:
		// Tool-driven power cycle: drop DTR and RTS, hold for 100ms, then
		// raise RTS again before the caller issues BREAK, mirroring
		// tocurd-go-isp's Activation() DTR/RTS sequencing.
		if err := a.Port.SetDTR(false); err != nil {
			return err
		}
		if err := a.Port.SetRTS(false); err != nil {
			return err
		}
		time.Sleep(100 * time.Millisecond)
		if err := a.Port.SetRTS(true); err != nil {
			return err
		}
		return nil
	case HVUserTogglePower:
		// Nothing in this module prompts the user to cycle power; this
		// mode drives no lines and only waits 300ms for the rail to
		// stabilise before BREAK.
		time.Sleep(300 * time.Millisecond)
		return nil
	case HVSimpleUnsafePulse:
		if err := a.Port.SetDTR(true); err != nil {
			return err
		}
		time.Sleep(10 * time.Millisecond)
		return a.Port.SetDTR(false)
	default:
		return &errs.ToolError{Message: "unknown HV activation mode"}
	}
}

// ReadSIB requests the 32-byte SIB and decodes it, selecting AddrSize
// for subsequent reads/writes if the family turns out to be NVM
// version 0 (16-bit datalink).
func (a *App) ReadSIB() (*SIBInfo, error) {
	raw, err := a.Phy.SIB(phy.SIB32Bytes, 32)
	if err != nil {
		return nil, err
	}
	info, err := DecodeSIB(raw)
	if err != nil {
		return nil, err
	}
	if info.NVM == "0" {
		a.AddrSize = 2
	} else {
		a.AddrSize = 3
	}
	return info, nil
}

// InProgMode reports whether the NVMPROG status bit is set.
func (a *App) InProgMode() (bool, error) {
	status, err := a.Phy.LDCS(ASISysStatus)
	if err != nil {
		return false, err
	}
	return status&(1<<ASISysStatusNVMProg) != 0, nil
}

// Reset applies or releases the UPDI reset condition.
func (a *App) Reset(apply bool) error {
	value := byte(0x00)
	if apply {
		value = ResetReqValue
	}
	return a.Phy.STCS(ASIResetReq, value)
}

// WaitUnlocked polls LOCKSTATUS until it clears or timeout elapses.
func (a *App) WaitUnlocked(timeout time.Duration) error {
	return a.pollStatusBit(ASISysStatusLockStatus, false, timeout, "wait-unlocked")
}

// WaitUserRowProg polls UROWPROG until it reaches the requested level.
func (a *App) WaitUserRowProg(timeout time.Duration, waitHigh bool) error {
	return a.pollStatusBit(ASISysStatusUROWProg, waitHigh, timeout, "wait-urow-prog")
}

func (a *App) pollStatusBit(bit int, waitHigh bool, timeout time.Duration, op string) error {
	deadline := time.Now().Add(timeout)
	for {
		status, err := a.Phy.LDCS(ASISysStatus)
		if err != nil {
			return err
		}
		set := status&(1<<uint(bit)) != 0
		if set == waitHigh {
			return nil
		}
		if time.Now().After(deadline) {
			return &errs.ProtocolFault{Op: op, Message: "timed out waiting for status bit"}
		}
	}
}

// EnterProgMode writes the NVMProg key, pulses reset, and waits for the
// NVMPROG bit, returning errs.LockedError if the device stays locked.
func (a *App) EnterProgMode() error {
	if already, err := a.InProgMode(); err != nil {
		return err
	} else if already {
		return nil
	}

	if err := a.Reset(true); err != nil {
		return err
	}
	if err := a.Phy.Key(phy.Key64, KeyNVMProg); err != nil {
		return err
	}

	status, err := a.Phy.LDCS(ASIKeyStatus)
	if err != nil {
		return err
	}
	if status&(1<<ASIKeyStatusNVMProg) == 0 {
		return &errs.ProtocolFault{Op: "enter-progmode", Message: "NVMProg key not accepted"}
	}

	if err := a.Reset(true); err != nil {
		return err
	}
	if err := a.Reset(false); err != nil {
		return err
	}

	if err := a.WaitUnlocked(100 * time.Millisecond); err != nil {
		return &errs.LockedError{Op: "enter-progmode"}
	}

	inProg, err := a.InProgMode()
	if err != nil {
		return err
	}
	if !inProg {
		return &errs.ProtocolFault{Op: "enter-progmode", Message: "NVMPROG flag not set after key accepted"}
	}
	return nil
}

// LeaveProgMode resets the device and disables UPDI, releasing any
// activated keys.
func (a *App) LeaveProgMode() error {
	if err := a.Reset(true); err != nil {
		return err
	}
	if err := a.Reset(false); err != nil {
		return err
	}
	return a.Phy.STCS(CSCtrlB, (1<<CtrlBUPDIDis)|(1<<BitCCDetDis))
}

// ChipEraseLocked unlocks a locked device by sending the chip-erase key
// and waiting for LOCKSTATUS to clear.
func (a *App) ChipEraseLocked() error {
	if err := a.Phy.Key(phy.Key64, KeyChipErase); err != nil {
		return err
	}

	status, err := a.Phy.LDCS(ASIKeyStatus)
	if err != nil {
		return err
	}
	if status&(1<<ASIKeyStatusChipErase) == 0 {
		return &errs.ProtocolFault{Op: "chip-erase-locked", Message: "chip-erase key not accepted"}
	}

	if err := a.Reset(true); err != nil {
		return err
	}
	if err := a.Reset(false); err != nil {
		return err
	}

	if err := a.WaitUnlocked(500 * time.Millisecond); err != nil {
		return &errs.ProtocolFault{Op: "chip-erase-locked", Message: "device did not unlock after chip erase"}
	}
	return nil
}

// WriteUserRowLocked writes data to the user row on a locked device
// using the dedicated NVMUs&te key, so the part need not be chip-erased
// to update its user row.
func (a *App) WriteUserRowLocked(address uint32, data []byte) error {
	if err := a.Phy.Key(phy.Key64, KeyUserRow); err != nil {
		return err
	}

	status, err := a.Phy.LDCS(ASIKeyStatus)
	if err != nil {
		return err
	}
	if status&(1<<ASIKeyStatusUROWWrite) == 0 {
		return &errs.ProtocolFault{Op: "user-row-locked", Message: "user-row key not accepted"}
	}

	if err := a.Reset(true); err != nil {
		return err
	}
	if err := a.Reset(false); err != nil {
		return err
	}

	if err := a.WaitUserRowProg(500*time.Millisecond, true); err != nil {
		return &errs.ProtocolFault{Op: "user-row-locked", Message: "failed to enter user-row write mode"}
	}

	if err := a.Phy.WriteData(address, data, a.AddrSize); err != nil {
		return err
	}

	if err := a.Phy.STCS(ASISysCtrlA, (1<<ASISysCtrlAUROWFinal)|(1<<BitCCDetDis)); err != nil {
		return err
	}

	if err := a.WaitUserRowProg(500*time.Millisecond, false); err != nil {
		_ = a.Reset(true)
		_ = a.Reset(false)
		return &errs.ProtocolFault{Op: "user-row-locked", Message: "failed to exit user-row write mode"}
	}

	if err := a.Phy.STCS(ASIKeyStatus, (1<<ASIKeyStatusUROWWrite)|(1<<BitCCDetDis)); err != nil {
		return err
	}

	if err := a.Reset(true); err != nil {
		return err
	}
	return a.Reset(false)
}

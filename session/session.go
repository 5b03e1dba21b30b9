// Package session implements the public orchestration surface (spec
// §4.5): start_session/ping/erase/write/read/verify/
// write_from_segments/end_session, binding one serial port to one
// device descriptor for the session's lifetime (spec §5: the device and
// its port are exclusively owned by the session).
//
// Grounded on pymcuprog's nvmserialupdi.py (original_source):
// NvmAccessProviderSerial's start/read_device_id/erase/write/read/stop
// map onto the methods below, with
// its Dut helper folded into memmap.Device.
package session

import (
	"github.com/google/uuid"

	"github.com/serialupdi/updiprog/app"
	"github.com/serialupdi/updiprog/errs"
	"github.com/serialupdi/updiprog/link"
	"github.com/serialupdi/updiprog/memmap"
	"github.com/serialupdi/updiprog/nvm"
	"github.com/serialupdi/updiprog/phy"
	"github.com/serialupdi/updiprog/serialport"
)

// Session is the process-wide construct bound to one device and one
// serial port (spec §3 "Session"). Locked reflects whether the device
// entered programming mode locked; Started records whether Start
// succeeded, and End uses it to decide whether to leave programming
// mode. The other methods do not check Started.
type Session struct {
	ID     uuid.UUID
	Device *memmap.Device
	Port   serialport.Port
	Link   *link.Link
	App    *app.App
	Nvm    *nvm.Controller

	Started bool
	Locked  bool

	cfg Config
}

// New binds a Session to an already-constructed port and device
// descriptor. The port must already be open at the OS level; Link.Open
// configures its framing.
func New(port serialport.Port, device *memmap.Device, opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	l := link.New(port)
	return &Session{
		ID:     uuid.New(),
		Device: device,
		Port:   port,
		Link:   l,
		App:    app.New(phy.New(l), port),
		cfg:    cfg,
	}
}

// Start opens the link, activates the device per the configured HV
// mode, reads the SIB to select the NVM driver variant, and enters
// programming mode (spec §4.5 start_session). A locked device is
// recovered according to the LockedChipErase/LockedUserRow options;
// otherwise Start returns errs.LockedError and the session remains
// unstarted.
func (s *Session) Start() error {
	if err := s.Link.Open(); err != nil {
		return err
	}

	sib, err := s.App.Activate(s.cfg.HVMode)
	if err != nil {
		return err
	}
	s.cfg.Logger.Info("read SIB", "family", sib.Family, "nvm", sib.NVM)

	ctrl, err := nvm.New(s.App.Phy, s.App.AddrSize, s.Device.NvmCtrlBase, nvm.Version(sib.NVM))
	if err != nil {
		return err
	}
	s.Nvm = ctrl

	err = s.App.EnterProgMode()
	if err == nil {
		s.Started = true
		return nil
	}

	var locked *errs.LockedError
	if !asLockedError(err, &locked) {
		return err
	}

	s.Locked = true
	s.cfg.Logger.Info("device reports locked", "id", s.ID)

	if s.cfg.LockedChipErase {
		if err := s.App.ChipEraseLocked(); err != nil {
			return err
		}
		if err := s.App.EnterProgMode(); err != nil {
			return err
		}
		s.Locked = false
		s.Started = true
		return nil
	}
	if s.cfg.LockedUserRow {
		// The device stays locked; only WriteUserRowLocked is usable
		// until a caller explicitly chip-erases it.
		s.Started = true
		return nil
	}
	return &errs.LockedError{Op: "start-session"}
}

// End leaves programming mode and closes the serial port (spec §4.5
// "destroyed on end_session").
func (s *Session) End() error {
	if s.Started {
		if err := s.App.LeaveProgMode(); err != nil {
			return err
		}
	}
	s.Started = false
	return s.Port.Close()
}

// Ping reads the device's signature bytes and compares them to the
// descriptor, raising DeviceIdMismatch on a mismatch (spec §4.5, §8.7).
func (s *Session) Ping() ([3]byte, error) {
	var got [3]byte
	sig, err := s.Region(memmap.RegionSignatures)
	if err != nil {
		return got, err
	}
	raw, err := s.App.Phy.ReadData(sig.Address, 3, s.App.AddrSize)
	if err != nil {
		return got, err
	}
	copy(got[:], raw)
	if got != s.Device.Signature {
		return got, &errs.DeviceIdMismatch{Expected: s.Device.Signature, Actual: got}
	}
	return got, nil
}

// Region looks up a region on the session's device.
func (s *Session) Region(name memmap.Region) (memmap.MemoryRegion, error) {
	return s.Device.Region(name)
}

func asLockedError(err error, target **errs.LockedError) bool {
	le, ok := err.(*errs.LockedError)
	if !ok {
		return false
	}
	*target = le
	return true
}

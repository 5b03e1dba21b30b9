package app

// Control/status and ASI register addresses, ported from pymcuprog's
// serialupdi/constants.py (original_source).
const (
	CSStatusA     = 0x00
	CSStatusB     = 0x01
	CSCtrlA       = 0x02
	CSCtrlB       = 0x03
	ASIKeyStatus  = 0x07
	ASIResetReq   = 0x08
	ASICtrlA      = 0x09
	ASISysCtrlA   = 0x0A
	ASISysStatus  = 0x0B
	ASICrcStatus  = 0x0C
)

const (
	CtrlARSDBit = 3
	// BitCCDetDis is bit 3, UPDI's collision-detection-disable bit. It
	// lives at this position in CTRLB but is reused at the same bit
	// position when finalizing/clearing ASI_SYS_CTRLA and
	// ASI_KEY_STATUS writes during the locked user-row flow below, so
	// it isn't named after any one register.
	BitCCDetDis  = 3
	CtrlBUPDIDis = 2
)

const (
	ASIKeyStatusChipErase  = 3
	ASIKeyStatusNVMProg    = 4
	ASIKeyStatusUROWWrite  = 5

	ASISysStatusRstSys     = 5
	ASISysStatusInSleep    = 4
	ASISysStatusNVMProg    = 3
	ASISysStatusUROWProg   = 2
	ASISysStatusLockStatus = 0

	ASISysCtrlAUROWFinal = 1

	ResetReqValue = 0x59
)

// Activation keys, sent 8 bytes at a time (spec §4.3).
var (
	KeyNVMProg    = []byte("NVMProg ")
	KeyChipErase  = []byte("NVMErase")
	KeyUserRow    = []byte("NVMUs&te")
)

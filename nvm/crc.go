package nvm

import (
	"github.com/sigurn/crc16"

	"github.com/serialupdi/updiprog/errs"
)

// pageBufferCRCTable is shared across every P:5 commit; crc16.MakeTable
// builds a 256-entry lookup table from Params and is safe to reuse
// across goroutines since it is never written to after construction.
var pageBufferCRCTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// verifyPageBufferCRC re-reads the page buffer just filled on an AVR-EB
// (P:5) part and compares its CRC16 against the data that was meant to
// land there, catching a corrupted fill before the longer erase+write
// commit runs. Earlier families have no dedicated page buffer register
// worth the extra bus traffic; P:5's own mandatory read-back verify
// after commit would only catch this same fault after the part has
// already erased the page.
func (c *Controller) verifyPageBufferCRC(address uint32, data []byte, wordAccess bool) error {
	var readback []byte
	var err error
	if wordAccess {
		readback, err = c.Phy.ReadDataWords(address, len(data)/2, c.AddrSize)
	} else {
		readback, err = c.Phy.ReadData(address, len(data), c.AddrSize)
	}
	if err != nil {
		return err
	}
	if want, got := crc16.Checksum(data, pageBufferCRCTable), crc16.Checksum(readback, pageBufferCRCTable); want != got {
		return &errs.ProtocolFault{Op: "nvm-page-crc", Message: "page buffer CRC mismatch before commit"}
	}
	return nil
}

package app

import (
	"strings"
	"unicode"

	"github.com/serialupdi/updiprog/errs"
)

// SIBInfo is the decoded System Information Block, ported field-for-
// field from pymcuprog's application.decode_sib (original_source).
type SIBInfo struct {
	Family string
	NVM    string
	OCD    string
	OSC    string
	Extra  string
}

// DecodeSIB parses a raw SIB read. Non-ASCII bytes or a line shorter
// than the 19 characters that carry the vital fields both count as "a
// garbled line" per spec §4.3 and return a ProtocolFault.
func DecodeSIB(raw []byte) (*SIBInfo, error) {
	for _, b := range raw {
		if b > unicode.MaxASCII {
			return nil, &errs.ProtocolFault{Op: "SIB", Message: "non-ASCII byte in SIB"}
		}
	}
	text := string(raw)
	if len(text) < 19 {
		return nil, &errs.ProtocolFault{Op: "SIB", Message: "incomplete SIB string"}
	}

	field := func(lo, hi int) string {
		if hi > len(text) {
			hi = len(text)
		}
		return strings.TrimSpace(text[lo:hi])
	}

	afterColon := func(s string) string {
		if i := strings.IndexByte(s, ':'); i >= 0 {
			return s[i+1:]
		}
		return s
	}

	return &SIBInfo{
		Family: field(0, 7),
		NVM:    afterColon(field(8, 11)),
		OCD:    afterColon(field(11, 14)),
		OSC:    field(15, 19),
		Extra:  field(19, len(text)),
	}, nil
}

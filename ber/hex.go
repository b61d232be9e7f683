package ber

import (
	"encoding/hex"
	"strings"
)

// Hex2bytes converts a hex string to bytes.  Any non-hex characters in the
// string are stripped first.
func Hex2bytes(s string) []byte {
	// strip non hex bytes
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'F':
		case r >= 'a' && r <= 'f':
		default:
			return -1 // drop
		}
		return r
	}, s)
	b, _ := hex.DecodeString(s)
	return b
}

package ber

import (
	"math"
	"time"
)

// kerberosTimeLayout matches KerberosTime, a GeneralizedTime restricted to
// whole seconds and Zulu time.  The trailing Z is checked separately because
// it is a literal in the encoding, not a numeric zone offset.
const kerberosTimeLayout = "20060102150405"

// ParseInt decodes a two's complement INTEGER value of 1 to 8 octets.
func ParseInt(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, NewStructural(ErrInvalidInteger).Append("empty INTEGER value")
	}
	if len(b) > 8 {
		return 0, NewStructural(ErrInvalidInteger).Appendf("INTEGER value of %d octets overflows int64", len(b))
	}
	v := int64(int8(b[0]))
	for _, c := range b[1:] {
		v = v<<8 | int64(c)
	}
	return v, nil
}

// ParseInt32 decodes an INTEGER value constrained to the signed 32-bit range.
func ParseInt32(b []byte) (int32, error) {
	v, err := ParseInt(b)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, NewStructural(ErrInvalidInteger).Appendf("INTEGER value %d outside the 32-bit range", v)
	}
	return int32(v), nil
}

// ParseUint32 decodes an INTEGER value constrained to 0..4294967295.  Values
// in the upper half of the range arrive as five octets with a leading zero,
// since the underlying INTEGER is signed.
func ParseUint32(b []byte) (uint32, error) {
	v, err := ParseInt(b)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > math.MaxUint32 {
		return 0, NewStructural(ErrInvalidInteger).Appendf("INTEGER value %d outside the unsigned 32-bit range", v)
	}
	return uint32(v), nil
}

// ParseGeneralizedTime decodes a KerberosTime value: exactly 15 octets,
// yyyymmddhhmmssZ, no fractional seconds.
func ParseGeneralizedTime(b []byte) (time.Time, error) {
	if len(b) != 15 || b[14] != 'Z' {
		return time.Time{}, NewStructural(ErrInvalidTime).Appendf("%q is not of the form yyyymmddhhmmssZ", b)
	}
	t, err := time.Parse(kerberosTimeLayout, string(b[:14]))
	if err != nil {
		return time.Time{}, NewStructural(ErrInvalidTime).Appendf("%q is not a valid time: %v", b, err)
	}
	return t, nil
}

// ParseBitString decodes a BIT STRING value, returning the count of unused
// bits in the final octet and the bit octets themselves.  The returned slice
// aliases b.
func ParseBitString(b []byte) (int, []byte, error) {
	if len(b) == 0 {
		return 0, nil, NewStructural(ErrInvalidBitString).Append("BIT STRING value missing the unused-bits octet")
	}
	unused := int(b[0])
	if unused > 7 {
		return 0, nil, NewStructural(ErrInvalidBitString).Appendf("%d unused bits in the final octet", unused)
	}
	if len(b) == 1 && unused != 0 {
		return 0, nil, NewStructural(ErrInvalidBitString).Appendf("%d unused bits in an empty BIT STRING", unused)
	}
	return unused, b[1:], nil
}

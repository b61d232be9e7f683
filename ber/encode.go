package ber

import (
	"bytes"
	"time"
)

// LengthSize returns the number of octets the definite length n occupies,
// using the short form below 128 and the minimal long form above.
func LengthSize(n int) int {
	if n < 0x80 {
		return 1
	}
	size := 2
	for n > 0xFF {
		n >>= 8
		size++
	}
	return size
}

// FullSize returns the encoded size of a whole TLV with a value of n bytes:
// one identifier octet, the length octets, and the value.
func FullSize(n int) int {
	return 1 + LengthSize(n) + n
}

// IntSize returns the number of value octets in the minimal two's complement
// encoding of v.
func IntSize(v int64) int {
	n := 1
	for v > 0x7F || v < -0x80 {
		v >>= 8
		n++
	}
	return n
}

// Uint32Size returns the number of value octets needed for v as an INTEGER.
// Values with the high bit set take five octets, with a leading zero.
func Uint32Size(v uint32) int {
	return IntSize(int64(v))
}

// WriteHeader writes the identifier octet and minimal definite length.
func WriteHeader(buf *bytes.Buffer, t Tag, length int) {
	buf.WriteByte(byte(t))
	if length < 0x80 {
		buf.WriteByte(byte(length))
		return
	}
	n := LengthSize(length) - 1
	buf.WriteByte(byte(0x80 | n))
	for shift := 8 * (n - 1); shift >= 0; shift -= 8 {
		buf.WriteByte(byte(length >> shift))
	}
}

// WriteValue writes a complete primitive TLV.
func WriteValue(buf *bytes.Buffer, t Tag, v []byte) {
	WriteHeader(buf, t, len(v))
	buf.Write(v)
}

// WriteString writes a complete primitive TLV holding s.
func WriteString(buf *bytes.Buffer, t Tag, s string) {
	WriteHeader(buf, t, len(s))
	buf.WriteString(s)
}

// WriteInt writes a complete INTEGER TLV in minimal two's complement form.
func WriteInt(buf *bytes.Buffer, t Tag, v int64) {
	n := IntSize(v)
	WriteHeader(buf, t, n)
	for shift := 8 * (n - 1); shift >= 0; shift -= 8 {
		buf.WriteByte(byte(v >> shift))
	}
}

// WriteUint32 writes a complete INTEGER TLV for an unsigned 32-bit value.
func WriteUint32(buf *bytes.Buffer, t Tag, v uint32) {
	WriteInt(buf, t, int64(v))
}

// WriteGeneralizedTime writes a complete KerberosTime TLV, always 15 value
// octets in Zulu time with no fractional seconds.
func WriteGeneralizedTime(buf *bytes.Buffer, t Tag, tm time.Time) {
	WriteHeader(buf, t, 15)
	buf.WriteString(tm.UTC().Format(kerberosTimeLayout))
	buf.WriteByte('Z')
}

// WriteBitString writes a complete BIT STRING TLV with the given count of
// unused bits in the final octet.
func WriteBitString(buf *bytes.Buffer, t Tag, unused int, bits []byte) {
	WriteHeader(buf, t, 1+len(bits))
	buf.WriteByte(byte(unused))
	buf.Write(bits)
}

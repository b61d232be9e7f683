package krb5

import (
	"bytes"
	"time"

	"github.com/gemalto/krb5-go/ber"
)

// Encodable is a message or component that can serialize itself.  Encoding is
// two phase: ComputeLength reports the exact encoded size of the value's
// outermost TLV, then encodeTo writes those bytes.  The two must agree, which
// Encode verifies.
type Encodable interface {
	// ComputeLength returns the complete encoded size in bytes, header
	// octets included.
	ComputeLength() int

	encodeTo(buf *bytes.Buffer)
}

// RawMessage is an already-encoded message, for handlers that produce bytes
// some other way.
type RawMessage []byte

func (m RawMessage) ComputeLength() int {
	return len(m)
}

func (m RawMessage) encodeTo(buf *bytes.Buffer) {
	buf.Write(m)
}

// Field writers for the EXPLICIT context tags Kerberos wraps every structure
// member in.  Each writes a wrapper TLV holding one inner TLV, and has a
// matching size function used by ComputeLength implementations.

func intFieldSize(v int64) int {
	return ber.FullSize(ber.FullSize(ber.IntSize(v)))
}

func writeIntField(buf *bytes.Buffer, tag ber.Tag, v int64) {
	ber.WriteHeader(buf, tag, ber.FullSize(ber.IntSize(v)))
	ber.WriteInt(buf, ber.TagInteger, v)
}

func uint32FieldSize(v uint32) int {
	return ber.FullSize(ber.FullSize(ber.Uint32Size(v)))
}

func writeUint32Field(buf *bytes.Buffer, tag ber.Tag, v uint32) {
	ber.WriteHeader(buf, tag, ber.FullSize(ber.Uint32Size(v)))
	ber.WriteUint32(buf, ber.TagInteger, v)
}

func bytesFieldSize(b []byte) int {
	return ber.FullSize(ber.FullSize(len(b)))
}

func writeBytesField(buf *bytes.Buffer, tag ber.Tag, b []byte) {
	ber.WriteHeader(buf, tag, ber.FullSize(len(b)))
	ber.WriteValue(buf, ber.TagOctetString, b)
}

func stringFieldSize(s string) int {
	return ber.FullSize(ber.FullSize(len(s)))
}

func writeStringField(buf *bytes.Buffer, tag ber.Tag, s string) {
	ber.WriteHeader(buf, tag, ber.FullSize(len(s)))
	ber.WriteString(buf, ber.TagGeneralString, s)
}

// KerberosTime is always 15 value octets.
const timeFieldSize = 2 + 2 + 15

func writeTimeField(buf *bytes.Buffer, tag ber.Tag, tm time.Time) {
	ber.WriteHeader(buf, tag, 2+15)
	ber.WriteGeneralizedTime(buf, ber.TagGeneralizedTime, tm)
}

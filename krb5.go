package krb5

import (
	"bytes"

	"github.com/ansel1/merry"
	"github.com/gemalto/krb5-go/ber"
)

// Encode serializes a message to its BER wire form.  The buffer is allocated
// once at the computed size; a mismatch between the computed and written
// sizes is reported as ErrEncodingSize rather than silently returning a
// malformed message.
func Encode(e Encodable) ([]byte, error) {
	n := e.ComputeLength()
	buf := bytes.NewBuffer(make([]byte, 0, n))
	e.encodeTo(buf)
	if buf.Len() != n {
		return nil, merry.Here(ErrEncodingSize).Appendf("computed %d bytes, wrote %d", n, buf.Len())
	}
	return buf.Bytes(), nil
}

// decodeFull runs one complete message through c's grammar.  Unlike feeding a
// ber.Decoder directly, a buffer that ends mid-message is an error here.
func decodeFull(c ber.Container, b []byte) error {
	d := ber.NewDecoder(c)
	if err := d.Decode(b); err != nil {
		return err
	}
	if !d.Complete() {
		return ber.NewStructural(ber.ErrTruncated).Appendf("message ends after %d bytes", len(b))
	}
	return nil
}

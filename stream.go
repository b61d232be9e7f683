package krb5

import (
	"encoding/binary"
	"io"

	"github.com/ansel1/merry"
	"github.com/gemalto/krb5-go/ber"
)

// RFC 4120 7.2.2: each message on a TCP stream is preceded by a 4 octet big
// endian record length.  The high bit of the length is reserved for future
// expansion; records with it set are rejected.

// DefaultMaxRecordSize caps the record length a MessageReader accepts when
// MaxRecordSize is left zero.
const DefaultMaxRecordSize = 1 << 20

const reservedLengthBit = 0x80000000

// readChunkSize is how many bytes of a record are read from the stream and
// handed to the decoder at a time.
const readChunkSize = 4096

// WriteMessage encodes m and writes it to w as one length prefixed record.
func WriteMessage(w io.Writer, m Encodable) error {
	b, err := Encode(m)
	if err != nil {
		return err
	}
	return WriteRawMessage(w, b)
}

// WriteRawMessage writes an already encoded record to w with the length
// prefix.
func WriteRawMessage(w io.Writer, b []byte) error {
	if uint(len(b)) >= reservedLengthBit {
		return merry.Here(ErrRecordTooLarge).Appendf("record is %d bytes", len(b))
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(b)))
	if _, err := w.Write(hdr[:]); err != nil {
		return merry.Prepend(err, "writing record length")
	}
	if _, err := w.Write(b); err != nil {
		return merry.Prepend(err, "writing record")
	}
	return nil
}

// MessageReader reads length prefixed records from a stream, decoding each
// one through the streaming decoder as its bytes arrive.
type MessageReader struct {
	// MaxRecordSize caps the record length this reader accepts.  Zero
	// means DefaultMaxRecordSize.
	MaxRecordSize int

	r     io.Reader
	dec   *ber.Decoder
	chunk []byte
}

func NewMessageReader(r io.Reader) *MessageReader {
	return &MessageReader{r: r}
}

// Next reads one record and returns the decoded message together with the
// raw record bytes.  It returns io.EOF when the stream ends cleanly between
// records.  When a well framed record fails to decode, Next still consumes
// the rest of the record, keeping the stream aligned on the next record, and
// returns the raw bytes alongside the decode error.
func (mr *MessageReader) Next() (Message, RawMessage, error) {
	n, err := mr.readLength()
	if err != nil {
		return nil, nil, err
	}
	c := NewMessageContainer()
	if mr.dec == nil {
		mr.dec = ber.NewDecoder(c)
		mr.chunk = make([]byte, readChunkSize)
	} else {
		mr.dec.Reset(c)
	}
	raw := make(RawMessage, 0, n)
	var decodeErr error
	for len(raw) < n {
		chunk := mr.chunk
		if rem := n - len(raw); rem < len(chunk) {
			chunk = chunk[:rem]
		}
		if _, err := io.ReadFull(mr.r, chunk); err != nil {
			return nil, nil, merry.Prepend(err, "reading record")
		}
		raw = append(raw, chunk...)
		if decodeErr == nil {
			decodeErr = mr.dec.Decode(chunk)
		}
	}
	if decodeErr != nil {
		return nil, raw, decodeErr
	}
	if !mr.dec.Complete() {
		return nil, raw, ber.NewStructural(ber.ErrTruncated).Appendf("record ends after %d bytes mid message", n)
	}
	return c.Message(), raw, nil
}

func (mr *MessageReader) readLength() (int, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(mr.r, hdr[:]); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, merry.Prepend(err, "reading record length")
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n&reservedLengthBit != 0 {
		return 0, merry.Here(ErrReservedBit).Appendf("record length is %#08x", n)
	}
	max := mr.MaxRecordSize
	if max <= 0 {
		max = DefaultMaxRecordSize
	}
	if int64(n) > int64(max) {
		return 0, merry.Here(ErrRecordTooLarge).Appendf("record is %d bytes, limit is %d", n, max)
	}
	return int(n), nil
}

// ReadMessage reads and decodes a single record from r.
func ReadMessage(r io.Reader) (Message, RawMessage, error) {
	return NewMessageReader(r).Next()
}

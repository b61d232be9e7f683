package krb5

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/gemalto/flume/flumetest"
	"github.com/gemalto/krb5-go/ber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame prefixes b with the 4 octet record length.
func frame(b []byte) []byte {
	f := make([]byte, 4, 4+len(b))
	binary.BigEndian.PutUint32(f, uint32(len(b)))
	return append(f, b...)
}

func TestWriteMessage(t *testing.T) {
	defer flumetest.Start(t)()

	var buf bytes.Buffer
	err := WriteMessage(&buf, sampleAsReq())
	require.NoError(t, err)

	assert.Equal(t, hex2bytes("00 00 00 63"), buf.Bytes()[:4])
	assert.Equal(t, hex2bytes(sampleAsReqHex), buf.Bytes()[4:])
}

func TestWriteRawMessage(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRawMessage(&buf, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	require.NoError(t, err)
	assert.Equal(t, hex2bytes("00 00 00 04 DE AD BE EF"), buf.Bytes())
}

func TestReadMessage(t *testing.T) {
	defer flumetest.Start(t)()

	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, sampleAsReq()))

	msg, raw, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, RawMessage(hex2bytes(sampleAsReqHex)), raw)
	assert.Equal(t, sampleAsReq(), msg)
}

func TestMessageReader(t *testing.T) {
	defer flumetest.Start(t)()

	tgs := &TgsReq{KdcReq: KdcReq{
		Pvno:    5,
		MsgType: MsgTypeTgsReq,
		PaData:  []PaData{{PaDataType: PaTgsReq, PaDataValue: []byte{0x01}}},
		ReqBody: sampleAsReq().ReqBody,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, sampleAsReq()))
	require.NoError(t, WriteMessage(&buf, tgs))

	mr := NewMessageReader(&buf)

	msg, _, err := mr.Next()
	require.NoError(t, err)
	assert.Equal(t, sampleAsReq(), msg)

	msg, _, err = mr.Next()
	require.NoError(t, err)
	assert.Equal(t, tgs, msg)

	_, _, err = mr.Next()
	assert.Equal(t, io.EOF, err)
}

// A record that is well framed but fails to decode must not desync the
// stream: the next record still decodes.
func TestMessageReader_keepsAlignment(t *testing.T) {
	defer flumetest.Start(t)()

	bad := hex2bytes(sampleAsReqHex)
	bad = append(bad, 0x00) // garbage after the message, record still well framed

	var buf bytes.Buffer
	require.NoError(t, WriteRawMessage(&buf, bad))
	require.NoError(t, WriteMessage(&buf, sampleAsReq()))

	mr := NewMessageReader(&buf)

	msg, raw, err := mr.Next()
	require.Error(t, err)
	assert.True(t, Is(err, ber.ErrTrailingBytes), Details(err))
	assert.Nil(t, msg)
	assert.Equal(t, RawMessage(bad), raw)

	msg, _, err = mr.Next()
	require.NoError(t, err)
	assert.Equal(t, sampleAsReq(), msg)
}

func TestMessageReader_errors(t *testing.T) {
	defer flumetest.Start(t)()

	goodRecord := hex2bytes(sampleAsReqHex)

	tests := []struct {
		name   string
		stream []byte
		max    int
		expect error
	}{
		{
			name:   "reserved bit set",
			stream: hex2bytes("80 00 00 04 DE AD BE EF"),
			expect: ErrReservedBit,
		},
		{
			name:   "record too large",
			stream: frame(goodRecord),
			max:    16,
			expect: ErrRecordTooLarge,
		},
		{
			name:   "record ends mid message",
			stream: frame(goodRecord[:10]),
			expect: ber.ErrTruncated,
		},
		{
			name:   "empty record",
			stream: frame(nil),
			expect: ber.ErrTruncated,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mr := NewMessageReader(bytes.NewReader(tc.stream))
			mr.MaxRecordSize = tc.max
			_, _, err := mr.Next()
			require.Error(t, err)
			assert.True(t, Is(err, tc.expect), Details(err))
		})
	}
}

func TestMessageReader_truncatedStream(t *testing.T) {
	defer flumetest.Start(t)()

	full := frame(hex2bytes(sampleAsReqHex))

	// clean end of stream before any record
	_, _, err := NewMessageReader(bytes.NewReader(nil)).Next()
	assert.Equal(t, io.EOF, err)

	// cut mid length prefix
	_, _, err = NewMessageReader(bytes.NewReader(full[:2])).Next()
	require.Error(t, err)
	assert.True(t, Is(err, io.ErrUnexpectedEOF), Details(err))

	// cut mid record
	_, _, err = NewMessageReader(bytes.NewReader(full[:20])).Next()
	require.Error(t, err)
	assert.True(t, Is(err, io.ErrUnexpectedEOF), Details(err))
}

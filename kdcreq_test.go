package krb5

import (
	"testing"

	"github.com/gemalto/krb5-go/ber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKdcReq_paDataCounts(t *testing.T) {
	pa := []PaData{
		{PaDataType: PaEncTimestamp, PaDataValue: []byte{0xDE, 0xAD}},
		{PaDataType: PaPkAsReq, PaDataValue: []byte{0x01}},
		{PaDataType: PaTgsReq, PaDataValue: []byte{0x02, 0x03}},
	}
	for _, count := range []int{0, 1, 3} {
		req := sampleAsReq()
		if count > 0 {
			req.PaData = pa[:count]
		}

		b, err := Encode(req)
		require.NoError(t, err)

		req2, err := DecodeAsReq(b)
		require.NoError(t, err)
		require.Len(t, req2.PaData, count)
		assert.Equal(t, req, req2)
	}
}

func TestKdcReq_constraints(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		sentinel error
	}{
		{
			name:     "pvno not 5",
			in:       "30 05 | a1 03 02 01 06",
			sentinel: ErrInvalidPvno,
		},
		{
			name:     "msg-type 99",
			in:       "30 0a | a1 03 02 01 05 | a2 03 02 01 63",
			sentinel: ErrInvalidMsgType,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeKdcReq(hex2bytes(tc.in))
			require.Error(t, err)
			assert.True(t, Is(err, tc.sentinel), "expected %v, got %v", tc.sentinel, err)
			assert.True(t, Is(err, ber.ErrConstraint))
			assert.False(t, Is(err, ber.ErrStructural))
		})
	}
}

func TestTicket_badVno(t *testing.T) {
	_, err := DecodeTicket(hex2bytes("61 07 | 30 05 | a0 03 02 01 04"))
	require.Error(t, err)
	assert.True(t, Is(err, ErrInvalidTktVno))
	assert.True(t, Is(err, ber.ErrConstraint))
}

func TestDecodeAsReq_wrapperMismatch(t *testing.T) {
	// a TGS msg-type inside an AS-REQ application wrapper
	req := sampleAsReq()
	req.MsgType = MsgTypeTgsReq
	b, err := Encode(req)
	require.NoError(t, err)

	_, err = DecodeAsReq(b)
	require.Error(t, err)
	assert.True(t, Is(err, ErrInvalidMsgType))
	assert.True(t, Is(err, ber.ErrConstraint))
}

func TestKdcReq_unexpectedTag(t *testing.T) {
	// [3] where only [1] pvno may open the sequence
	_, err := DecodeKdcReq(hex2bytes("30 03 | a3 01 00"))
	require.Error(t, err)
	assert.True(t, Is(err, ber.ErrUnexpectedTag))
	assert.True(t, Is(err, ber.ErrStructural))
	assert.Equal(t, "KDC-REQ.SEQ", ber.ErrorState(err))
	assert.Contains(t, err.Error(), "KDC-REQ")
}

func TestDecodeAsReq_truncated(t *testing.T) {
	full := hex2bytes(sampleAsReqHex)

	_, err := DecodeAsReq(full[:len(full)-1])
	require.Error(t, err)
	assert.True(t, Is(err, ber.ErrTruncated))
	assert.True(t, Is(err, ber.ErrStructural))

	// the streaming decoder reports the same bytes as suspension, not error
	d := ber.NewDecoder(NewAsReqContainer())
	require.NoError(t, d.Decode(full[:len(full)-1]))
	require.False(t, d.Complete())
}

func TestDecodeAsReq_trailingBytes(t *testing.T) {
	b := append(hex2bytes(sampleAsReqHex), 0x00)
	_, err := DecodeAsReq(b)
	require.Error(t, err)
	assert.True(t, Is(err, ber.ErrTrailingBytes))
}

func TestAsReq_streaming(t *testing.T) {
	full := hex2bytes(sampleAsReqHex)

	// two chunks at every split point
	for i := 0; i <= len(full); i++ {
		c := NewAsReqContainer()
		d := ber.NewDecoder(c)
		require.NoError(t, d.Decode(full[:i]), "split %d", i)
		if i < len(full) {
			require.False(t, d.Complete(), "split %d", i)
		}
		require.NoError(t, d.Decode(full[i:]), "split %d", i)
		require.True(t, d.Complete(), "split %d", i)
		assert.Equal(t, sampleAsReq(), c.AsReq())
	}

	// one byte at a time
	c := NewAsReqContainer()
	d := ber.NewDecoder(c)
	for i := range full {
		require.NoError(t, d.Decode(full[i:i+1]), "byte %d", i)
	}
	require.True(t, d.Complete())
	assert.Equal(t, sampleAsReq(), c.AsReq())
}

func TestDecodeMessage(t *testing.T) {
	asBytes, err := Encode(sampleAsReq())
	require.NoError(t, err)

	msg, err := DecodeMessage(asBytes)
	require.NoError(t, err)
	require.IsType(t, &AsReq{}, msg)
	assert.Equal(t, MsgTypeAsReq, msg.MessageType())
	assert.Equal(t, sampleAsReq(), msg)

	tgs := &TgsReq{KdcReq: KdcReq{
		Pvno:    5,
		MsgType: MsgTypeTgsReq,
		ReqBody: sampleAsReq().ReqBody,
	}}
	tgsBytes, err := Encode(tgs)
	require.NoError(t, err)

	msg, err = DecodeMessage(tgsBytes)
	require.NoError(t, err)
	require.IsType(t, &TgsReq{}, msg)
	assert.Equal(t, tgs, msg)

	_, err = DecodeMessage(hex2bytes("30 00"))
	require.Error(t, err)
	assert.True(t, Is(err, ber.ErrUnexpectedTag))
}

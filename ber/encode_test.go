package ber

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthSize(t *testing.T) {
	tests := []struct {
		n   int
		exp int
	}{
		{n: 0, exp: 1},
		{n: 1, exp: 1},
		{n: 127, exp: 1},
		{n: 128, exp: 2},
		{n: 255, exp: 2},
		{n: 256, exp: 3},
		{n: 65535, exp: 3},
		{n: 65536, exp: 4},
		{n: 1 << 24, exp: 5},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.n), func(t *testing.T) {
			assert.Equal(t, test.exp, LengthSize(test.n))
			assert.Equal(t, 1+test.exp+test.n, FullSize(test.n))
		})
	}
}

func TestIntSize(t *testing.T) {
	tests := []struct {
		v   int64
		exp int
	}{
		{v: 0, exp: 1},
		{v: 5, exp: 1},
		{v: 127, exp: 1},
		{v: 128, exp: 2},
		{v: 255, exp: 2},
		{v: 256, exp: 2},
		{v: 32767, exp: 2},
		{v: 32768, exp: 3},
		{v: -1, exp: 1},
		{v: -128, exp: 1},
		{v: -129, exp: 2},
		{v: -32768, exp: 2},
		{v: -32769, exp: 3},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.v), func(t *testing.T) {
			assert.Equal(t, test.exp, IntSize(test.v))
		})
	}
}

func TestUint32Size(t *testing.T) {
	assert.Equal(t, 1, Uint32Size(0))
	assert.Equal(t, 1, Uint32Size(127))
	assert.Equal(t, 2, Uint32Size(128))
	assert.Equal(t, 4, Uint32Size(1<<30))
	assert.Equal(t, 5, Uint32Size(1<<31))
	assert.Equal(t, 5, Uint32Size(0xFFFFFFFF))
}

func TestWriteHeader(t *testing.T) {
	tests := []struct {
		tag    Tag
		length int
		exp    string
	}{
		{tag: TagSequence, length: 0, exp: "30 00"},
		{tag: TagSequence, length: 12, exp: "30 0c"},
		{tag: ContextTag(1), length: 127, exp: "a1 7f"},
		{tag: ContextTag(1), length: 128, exp: "a1 81 80"},
		{tag: ApplicationTag(10), length: 256, exp: "6a 82 01 00"},
		{tag: TagOctetString, length: 65536, exp: "04 83 01 00 00"},
	}
	for _, test := range tests {
		t.Run(test.exp, func(t *testing.T) {
			var buf bytes.Buffer
			WriteHeader(&buf, test.tag, test.length)
			assert.Equal(t, hex2bytes(test.exp), buf.Bytes())
			assert.Equal(t, FullSize(test.length)-test.length, buf.Len())
		})
	}
}

func TestWriteInt(t *testing.T) {
	tests := []struct {
		v   int64
		exp string
	}{
		{v: 0, exp: "02 01 00"},
		{v: 5, exp: "02 01 05"},
		{v: 127, exp: "02 01 7f"},
		{v: 128, exp: "02 02 00 80"},
		{v: 256, exp: "02 02 01 00"},
		{v: -1, exp: "02 01 ff"},
		{v: -128, exp: "02 01 80"},
		{v: -129, exp: "02 02 ff 7f"},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.v), func(t *testing.T) {
			var buf bytes.Buffer
			WriteInt(&buf, TagInteger, test.v)
			assert.Equal(t, hex2bytes(test.exp), buf.Bytes())

			// writes must parse back to the same value
			rt, err := ParseInt(buf.Bytes()[2:])
			require.NoError(t, err)
			assert.Equal(t, test.v, rt)
		})
	}
}

func TestWriteUint32(t *testing.T) {
	var buf bytes.Buffer
	WriteUint32(&buf, TagInteger, 0xFFFFFFFF)
	assert.Equal(t, hex2bytes("02 05 00 ff ff ff ff"), buf.Bytes())

	rt, err := ParseUint32(buf.Bytes()[2:])
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), rt)
}

func TestWriteValue(t *testing.T) {
	var buf bytes.Buffer
	WriteValue(&buf, TagOctetString, []byte{1, 2, 3})
	assert.Equal(t, hex2bytes("04 03 01 02 03"), buf.Bytes())

	buf.Reset()
	WriteValue(&buf, TagOctetString, nil)
	assert.Equal(t, hex2bytes("04 00"), buf.Bytes())

	buf.Reset()
	WriteString(&buf, TagGeneralString, "krbtgt")
	assert.Equal(t, append(hex2bytes("1b 06"), "krbtgt"...), buf.Bytes())
}

func TestWriteGeneralizedTime(t *testing.T) {
	var buf bytes.Buffer
	tm := time.Date(2026, 8, 24, 15, 45, 30, 0, time.UTC)
	WriteGeneralizedTime(&buf, TagGeneralizedTime, tm)
	assert.Equal(t, append(hex2bytes("18 0f"), "20260824154530Z"...), buf.Bytes())

	rt, err := ParseGeneralizedTime(buf.Bytes()[2:])
	require.NoError(t, err)
	assert.True(t, tm.Equal(rt))

	// non-UTC times are written in Zulu
	buf.Reset()
	loc := time.FixedZone("UTC+2", 2*60*60)
	WriteGeneralizedTime(&buf, TagGeneralizedTime, tm.In(loc))
	assert.Equal(t, append(hex2bytes("18 0f"), "20260824154530Z"...), buf.Bytes())
}

func TestWriteBitString(t *testing.T) {
	var buf bytes.Buffer
	WriteBitString(&buf, TagBitString, 0, []byte{0x40, 0x81, 0x00, 0x00})
	assert.Equal(t, hex2bytes("03 05 00 40 81 00 00"), buf.Bytes())

	unused, bits, err := ParseBitString(buf.Bytes()[2:])
	require.NoError(t, err)
	assert.Equal(t, 0, unused)
	assert.Equal(t, []byte{0x40, 0x81, 0x00, 0x00}, bits)
}

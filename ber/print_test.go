package ber

import (
	"bytes"
	"testing"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	b := hex2bytes("30 0c a0 03 02 01 05 a1 05 04 03 01 02 03")
	buf := &bytes.Buffer{}
	err := Print(buf, "", "  ", b)
	require.NoError(t, err)
	assert.Equal(t, `SEQUENCE (12):
  [0] (3):
    INTEGER (1): 5
  [1] (5):
    OCTET STRING (3): 0x010203`, buf.String())

	// tolerates a truncated value: prints what it can, returns the error
	buf.Reset()
	err = Print(buf, "", "  ", hex2bytes("04 05 01 02"))
	require.Error(t, err)
	assert.True(t, merry.Is(err, ErrTruncated))
	assert.Equal(t, `OCTET STRING (5): (value truncated) 0x0102`, buf.String())

	// tolerates an invalid header: dumps the raw bytes, returns the error
	buf.Reset()
	err = Print(buf, "", "  ", hex2bytes("00 01 02"))
	require.Error(t, err)
	assert.True(t, merry.Is(err, ErrNullTag))
	assert.Contains(t, buf.String(), "0x000102")
}

func TestPrint_strings(t *testing.T) {
	buf := &bytes.Buffer{}
	b := append(hex2bytes("1b 06"), "krbtgt"...)
	require.NoError(t, Print(buf, "", "  ", b))
	assert.Equal(t, `GeneralString (6): "krbtgt"`, buf.String())

	buf.Reset()
	b = append(hex2bytes("18 0f"), "20260824154530Z"...)
	require.NoError(t, Print(buf, "", "  ", b))
	assert.Equal(t, `GeneralizedTime (15): "20260824154530Z"`, buf.String())
}

func TestPrintPrettyHex(t *testing.T) {
	b := hex2bytes("30 0c a0 03 02 01 05 a1 05 04 03 01 02 03")
	buf := &bytes.Buffer{}
	err := PrintPrettyHex(buf, "", "  ", b)
	require.NoError(t, err)
	assert.Equal(t, `30 | 0c
  a0 | 03
    02 | 01 | 05
  a1 | 05
    04 | 03 | 010203`, buf.String())

	// an undecodable remainder is dumped as plain hex with no error
	buf.Reset()
	err = PrintPrettyHex(buf, "", "  ", hex2bytes("00 01 02"))
	require.NoError(t, err)
	assert.Equal(t, `000102`, buf.String())

	// a truncated value is dumped after the header line
	buf.Reset()
	err = PrintPrettyHex(buf, "", "  ", hex2bytes("04 05 01 02"))
	require.NoError(t, err)
	assert.Equal(t, "04 | 05\n0102", buf.String())
}

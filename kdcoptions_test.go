package krb5

import (
	"testing"

	"github.com/gemalto/krb5-go/ber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKDCOptions_String(t *testing.T) {
	tests := []struct {
		in  KDCOptions
		out string
	}{
		{0, "0"},
		{KDCFlagForwardable, "forwardable"},
		{KDCFlagForwardable | KDCFlagRenewable, "forwardable|renewable"},
		{KDCFlagRenewableOK | KDCFlagCanonicalize, "canonicalize|renewable-ok"},
		// unnamed residue bits print as hex
		{KDCFlagForwardable | 0x00000200, "forwardable|0x000200"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.out, tc.in.String())
	}
}

func TestParseKDCOptions(t *testing.T) {
	tests := []struct {
		in  string
		out KDCOptions
	}{
		{"", 0},
		{"forwardable", KDCFlagForwardable},
		{"Forwardable", KDCFlagForwardable},
		{"renewable_ok", KDCFlagRenewableOK},
		{"forwardable|renewable", KDCFlagForwardable | KDCFlagRenewable},
		{"forwardable | 0x00000200", KDCFlagForwardable | 0x00000200},
		{"1073741824", KDCFlagForwardable},
	}
	for _, tc := range tests {
		v, err := ParseKDCOptions(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.out, v, tc.in)
	}

	_, err := ParseKDCOptions("no-such-flag")
	require.Error(t, err)
}

func TestKDCOptions_IsSet(t *testing.T) {
	o := KDCFlagForwardable | KDCFlagRenewable
	assert.True(t, o.IsSet(KDCFlagForwardable))
	assert.True(t, o.IsSet(KDCFlagForwardable|KDCFlagRenewable))
	assert.False(t, o.IsSet(KDCFlagProxy))
}

func TestKDCOptions_bits(t *testing.T) {
	o := KDCFlagForwardable | KDCFlagValidate
	assert.Equal(t, []byte{0x40, 0x00, 0x00, 0x01}, o.bits())

	v, err := parseKDCOptionsBits(hex2bytes("00 40 00 00 01"))
	require.NoError(t, err)
	assert.Equal(t, o, v)

	// fewer than 32 bits
	_, err = parseKDCOptionsBits(hex2bytes("00 40 00"))
	require.Error(t, err)
	assert.True(t, Is(err, ber.ErrInvalidBitString))

	// bits past the first 32 are ignored
	v, err = parseKDCOptionsBits(hex2bytes("00 40 00 00 01 ff"))
	require.NoError(t, err)
	assert.Equal(t, o, v)
}

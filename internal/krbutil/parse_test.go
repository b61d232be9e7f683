package krbutil

import (
	"math"
	"testing"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt32(t *testing.T) {
	tests := []struct {
		in  string
		out int32
		err bool
	}{
		{in: "0", out: 0},
		{in: "18", out: 18},
		{in: "-1", out: -1},
		{in: "2147483647", out: math.MaxInt32},
		{in: "2147483648", err: true},
		{in: "0x12", out: 0x12},
		{in: "0x00000012", out: 0x12},
		{in: "0xFFFFFFFF", out: -1},
		// hex strings must be whole bytes
		{in: "0x1", err: true},
		{in: "0x0102030405", err: true},
		{in: "0xZZ", err: true},
		{in: "teddybear", err: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			v, err := ParseInt32(tc.in)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.out, v)
		})
	}
}

func TestParseInt32_invalidHex(t *testing.T) {
	_, err := ParseInt32("0xnope")
	require.Error(t, err)
	assert.True(t, merry.Is(err, ErrInvalidHexString))
}

func TestParseUint32(t *testing.T) {
	tests := []struct {
		in  string
		out uint32
		err bool
	}{
		{in: "0", out: 0},
		{in: "18", out: 18},
		{in: "4294967295", out: math.MaxUint32},
		{in: "4294967296", err: true},
		{in: "-1", err: true},
		{in: "0x12", out: 0x12},
		{in: "0xFFFFFFFF", out: math.MaxUint32},
		{in: "x", err: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			v, err := ParseUint32(tc.in)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.out, v)
		})
	}
}

package krbutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"aes256-cts-hmac-sha1-96": "aes256-cts-hmac-sha1-96",
		"AES256_CTS_HMAC_SHA1_96": "aes256-cts-hmac-sha1-96",
		"AES256 CTS HMAC SHA1 96": "aes256-cts-hmac-sha1-96",
		"  Forwardable  ":         "forwardable",
		"Renewable OK":            "renewable-ok",
		"pa_enc_timestamp":        "pa-enc-timestamp",
		"NT-PRINCIPAL":            "nt-principal",
		"a  _ b":                  "a-b",
		"X":                       "x",
	}

	for input, output := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, output, NormalizeName(input))
		})
	}
}

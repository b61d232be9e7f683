package krbutil

import (
	"regexp"
	"strings"
)

var separators = regexp.MustCompile(`[\s_]+`)

// NormalizeName converts an enumeration name to the registry form used for
// lookups: lower case, with runs of whitespace and underscores replaced by
// single dashes, so "AES256_CTS_HMAC_SHA1_96" matches "aes256-cts-hmac-sha1-96".
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	s = separators.ReplaceAllString(s, "-")
	return strings.ToLower(s)
}

package krb5

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ansel1/merry"
	"github.com/gemalto/krb5-go/ber"
	"github.com/gemalto/krb5-go/internal/krbutil"
)

// KDCOptions is the KDC-REQ option flag set, RFC 4120 5.4.1.  On the wire it
// is a BIT STRING of at least 32 bits; ASN.1 numbers bits from the high end,
// so flag n maps to 1<<(31-n) here.
type KDCOptions uint32

const (
	KDCFlagForwardable           KDCOptions = 1 << (31 - 1)
	KDCFlagForwarded             KDCOptions = 1 << (31 - 2)
	KDCFlagProxiable             KDCOptions = 1 << (31 - 3)
	KDCFlagProxy                 KDCOptions = 1 << (31 - 4)
	KDCFlagAllowPostdate         KDCOptions = 1 << (31 - 5)
	KDCFlagPostdated             KDCOptions = 1 << (31 - 6)
	KDCFlagRenewable             KDCOptions = 1 << (31 - 8)
	KDCFlagOptHardwareAuth       KDCOptions = 1 << (31 - 11)
	KDCFlagCanonicalize          KDCOptions = 1 << (31 - 15)
	KDCFlagDisableTransitedCheck KDCOptions = 1 << (31 - 26)
	KDCFlagRenewableOK           KDCOptions = 1 << (31 - 27)
	KDCFlagEncTktInSkey          KDCOptions = 1 << (31 - 28)
	KDCFlagRenew                 KDCOptions = 1 << (31 - 30)
	KDCFlagValidate              KDCOptions = 1 << (31 - 31)
)

// kdcFlagNames is ordered by bit number so String output is stable.
var kdcFlagNames = []struct {
	flag KDCOptions
	name string
}{
	{KDCFlagForwardable, "forwardable"},
	{KDCFlagForwarded, "forwarded"},
	{KDCFlagProxiable, "proxiable"},
	{KDCFlagProxy, "proxy"},
	{KDCFlagAllowPostdate, "allow-postdate"},
	{KDCFlagPostdated, "postdated"},
	{KDCFlagRenewable, "renewable"},
	{KDCFlagOptHardwareAuth, "opt-hardware-auth"},
	{KDCFlagCanonicalize, "canonicalize"},
	{KDCFlagDisableTransitedCheck, "disable-transited-check"},
	{KDCFlagRenewableOK, "renewable-ok"},
	{KDCFlagEncTktInSkey, "enc-tkt-in-skey"},
	{KDCFlagRenew, "renew"},
	{KDCFlagValidate, "validate"},
}

var kdcFlagValues = map[string]KDCOptions{}

func init() {
	for _, f := range kdcFlagNames {
		kdcFlagValues[f.name] = f.flag
	}
}

// IsSet reports whether all bits of f are set in o.
func (o KDCOptions) IsSet(f KDCOptions) bool {
	return o&f == f
}

func (o KDCOptions) String() string {
	if o == 0 {
		return "0"
	}
	r := o
	var sb strings.Builder
	for _, f := range kdcFlagNames {
		if r&f.flag == f.flag {
			if sb.Len() > 0 {
				sb.WriteString("|")
			}
			sb.WriteString(f.name)
			r ^= f.flag
		}
	}
	if r != 0 {
		if sb.Len() > 0 {
			sb.WriteString("|")
		}
		fmt.Fprintf(&sb, "%#08x", uint32(r))
	}
	return sb.String()
}

// ParseKDCOptions parses a set of flags joined with "|".  Each part may be a
// flag name, a decimal number, or a "0x" hex string, and the parts are ORed
// together.
func ParseKDCOptions(s string) (KDCOptions, error) {
	var v KDCOptions
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if f, ok := kdcFlagValues[krbutil.NormalizeName(part)]; ok {
			v |= f
			continue
		}
		u, err := krbutil.ParseUint32(part)
		if err != nil {
			return 0, merry.Prependf(err, "%q is not a KDC option name, number, or hex string", part)
		}
		v |= KDCOptions(u)
	}
	return v, nil
}

// parseKDCOptionsBits decodes the flag set from a BIT STRING value.  The
// protocol requires at least 32 bits; bits beyond the first 32 are ignored.
func parseKDCOptionsBits(b []byte) (KDCOptions, error) {
	_, bits, err := ber.ParseBitString(b)
	if err != nil {
		return 0, err
	}
	if len(bits) < 4 {
		return 0, ber.NewStructural(ber.ErrInvalidBitString).Appendf("kdc-options holds %d bits, needs at least 32", len(bits)*8)
	}
	return KDCOptions(binary.BigEndian.Uint32(bits[:4])), nil
}

// bits returns the canonical 32-bit wire form.
func (o KDCOptions) bits() []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(o))
	return b[:]
}

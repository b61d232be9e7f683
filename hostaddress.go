package krb5

import (
	"bytes"
	"encoding/hex"
	"net"

	"github.com/gemalto/krb5-go/ber"
)

// HostAddress is a transport address, RFC 4120 5.2.5.
//
//	HostAddress     ::= SEQUENCE {
//	        addr-type       [0] Int32,
//	        address         [1] OCTET STRING
//	}
type HostAddress struct {
	AddrType AddressType
	Address  []byte
}

// HostAddresses is the SEQUENCE OF HostAddress used by the addresses fields.
type HostAddresses []HostAddress

// AddressFromIP builds a HostAddress from an IP address, in the 4 byte or 16
// byte form as appropriate.
func AddressFromIP(ip net.IP) HostAddress {
	if v4 := ip.To4(); v4 != nil {
		return HostAddress{AddrType: AddrTypeIPv4, Address: v4}
	}
	return HostAddress{AddrType: AddrTypeIPv6, Address: ip.To16()}
}

func (a HostAddress) String() string {
	switch a.AddrType {
	case AddrTypeIPv4, AddrTypeIPv6:
		return net.IP(a.Address).String()
	case AddrTypeNetBios:
		return string(a.Address)
	}
	return hex.EncodeToString(a.Address)
}

const (
	haStart ber.State = iota
	haSeq
	haAddrTypeTag
	haAddrTypeValue
	haAddressTag
	haAddressValue
)

var hostAddressGrammar = ber.NewGrammar("HostAddress", []string{
	"START", "SEQ", "ADDR_TYPE_TAG", "ADDR_TYPE_VALUE", "ADDRESS_TAG", "ADDRESS_VALUE",
})

const (
	hasStart ber.State = iota
	hasSeq
)

var hostAddressesGrammar = ber.NewGrammar("HostAddresses", []string{
	"START", "SEQ",
})

func init() {
	storeAddrType := &ber.Action{Name: "HostAddress.storeAddrType", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseInt32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*HostAddressContainer).addr.AddrType = AddressType(v)
		return nil
	}}
	storeAddress := &ber.Action{Name: "HostAddress.storeAddress", Do: func(d *ber.Decoder, c ber.Container) error {
		hc := c.(*HostAddressContainer)
		hc.addr.Address = d.CurrentTLV().CopyValue()
		hc.SetGrammarEndAllowed(true)
		return nil
	}}

	hostAddressGrammar.AddTransition(haStart, ber.TagSequence, haSeq, nil)
	hostAddressGrammar.AddTransition(haSeq, ber.ContextTag(0), haAddrTypeTag, ber.CheckNotNullLength)
	hostAddressGrammar.AddTransition(haAddrTypeTag, ber.TagInteger, haAddrTypeValue, storeAddrType)
	hostAddressGrammar.AddTransition(haAddrTypeValue, ber.ContextTag(1), haAddressTag, ber.CheckNotNullLength)
	hostAddressGrammar.AddTransition(haAddressTag, ber.TagOctetString, haAddressValue, storeAddress)

	enterAddresses := &ber.Action{Name: "HostAddresses.enter", Do: func(d *ber.Decoder, c ber.Container) error {
		c.SetGrammarEndAllowed(true)
		return nil
	}}
	addAddress := &ber.Action{Name: "HostAddresses.addAddress", Do: func(d *ber.Decoder, c ber.Container) error {
		ac := c.(*HostAddressesContainer)
		child := NewHostAddressContainer()
		return d.PushGrammar(child, func() error {
			ac.addrs = append(ac.addrs, *child.HostAddress())
			return nil
		})
	}}

	hostAddressesGrammar.AddTransition(hasStart, ber.TagSequence, hasSeq, enterAddresses)
	hostAddressesGrammar.AddTransition(hasSeq, ber.TagSequence, hasSeq, addAddress)
}

// HostAddressContainer accumulates a HostAddress during a parse.
type HostAddressContainer struct {
	ber.BaseContainer
	addr *HostAddress
}

func NewHostAddressContainer() *HostAddressContainer {
	return &HostAddressContainer{addr: &HostAddress{}}
}

func (c *HostAddressContainer) Grammar() *ber.Grammar {
	return hostAddressGrammar
}

func (c *HostAddressContainer) HostAddress() *HostAddress {
	return c.addr
}

// HostAddressesContainer accumulates a HostAddresses list during a parse.
type HostAddressesContainer struct {
	ber.BaseContainer
	addrs HostAddresses
}

func NewHostAddressesContainer() *HostAddressesContainer {
	return &HostAddressesContainer{}
}

func (c *HostAddressesContainer) Grammar() *ber.Grammar {
	return hostAddressesGrammar
}

func (c *HostAddressesContainer) HostAddresses() HostAddresses {
	return c.addrs
}

// DecodeHostAddress decodes one complete HostAddress from b.
func DecodeHostAddress(b []byte) (*HostAddress, error) {
	c := NewHostAddressContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.HostAddress(), nil
}

func (a *HostAddress) seqLen() int {
	return intFieldSize(int64(a.AddrType)) + bytesFieldSize(a.Address)
}

func (a *HostAddress) ComputeLength() int {
	return ber.FullSize(a.seqLen())
}

func (a *HostAddress) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.TagSequence, a.seqLen())
	writeIntField(buf, ber.ContextTag(0), int64(a.AddrType))
	writeBytesField(buf, ber.ContextTag(1), a.Address)
}

func (as HostAddresses) seqLen() int {
	var n int
	for i := range as {
		n += as[i].ComputeLength()
	}
	return n
}

func (as HostAddresses) ComputeLength() int {
	return ber.FullSize(as.seqLen())
}

func (as HostAddresses) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.TagSequence, as.seqLen())
	for i := range as {
		as[i].encodeTo(buf)
	}
}

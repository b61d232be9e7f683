package krb5

import (
	"bytes"
	"strings"

	"github.com/gemalto/krb5-go/ber"
)

// PrincipalName names a client or service principal, RFC 4120 5.2.2.  The
// realm is always carried separately.
//
//	PrincipalName   ::= SEQUENCE {
//	        name-type       [0] Int32,
//	        name-string     [1] SEQUENCE OF KerberosString
//	}
type PrincipalName struct {
	NameType   NameType
	NameString []string
}

// ParsePrincipalName builds a PrincipalName from the conventional
// slash-separated form, e.g. "krbtgt/EXAMPLE.COM".
func ParsePrincipalName(nt NameType, s string) PrincipalName {
	return PrincipalName{NameType: nt, NameString: strings.Split(s, "/")}
}

func (pn PrincipalName) String() string {
	return strings.Join(pn.NameString, "/")
}

const (
	pnStart ber.State = iota
	pnSeq
	pnNameTypeTag
	pnNameTypeValue
	pnNameStringTag
	pnNameStringSeq
)

var principalNameGrammar = ber.NewGrammar("PrincipalName", []string{
	"START", "SEQ", "NAME_TYPE_TAG", "NAME_TYPE_VALUE", "NAME_STRING_TAG", "NAME_STRING_SEQ",
})

func init() {
	storeNameType := &ber.Action{Name: "PrincipalName.storeNameType", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseInt32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*PrincipalNameContainer).name.NameType = NameType(v)
		return nil
	}}
	enterNameString := &ber.Action{Name: "PrincipalName.enterNameString", Do: func(d *ber.Decoder, c ber.Container) error {
		c.SetGrammarEndAllowed(true)
		return nil
	}}
	addName := &ber.Action{Name: "PrincipalName.addName", Do: func(d *ber.Decoder, c ber.Container) error {
		pc := c.(*PrincipalNameContainer)
		pc.name.NameString = append(pc.name.NameString, string(d.CurrentTLV().Value()))
		return nil
	}}

	principalNameGrammar.AddTransition(pnStart, ber.TagSequence, pnSeq, nil)
	principalNameGrammar.AddTransition(pnSeq, ber.ContextTag(0), pnNameTypeTag, ber.CheckNotNullLength)
	principalNameGrammar.AddTransition(pnNameTypeTag, ber.TagInteger, pnNameTypeValue, storeNameType)
	principalNameGrammar.AddTransition(pnNameTypeValue, ber.ContextTag(1), pnNameStringTag, ber.CheckNotNullLength)
	principalNameGrammar.AddTransition(pnNameStringTag, ber.TagSequence, pnNameStringSeq, enterNameString)
	principalNameGrammar.AddTransition(pnNameStringSeq, ber.TagGeneralString, pnNameStringSeq, addName)
}

// PrincipalNameContainer accumulates a PrincipalName during a parse.
type PrincipalNameContainer struct {
	ber.BaseContainer
	name *PrincipalName
}

func NewPrincipalNameContainer() *PrincipalNameContainer {
	return &PrincipalNameContainer{name: &PrincipalName{}}
}

func (c *PrincipalNameContainer) Grammar() *ber.Grammar {
	return principalNameGrammar
}

func (c *PrincipalNameContainer) PrincipalName() *PrincipalName {
	return c.name
}

// DecodePrincipalName decodes one complete PrincipalName from b.
func DecodePrincipalName(b []byte) (*PrincipalName, error) {
	c := NewPrincipalNameContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.PrincipalName(), nil
}

func (pn *PrincipalName) nameStringLen() int {
	var n int
	for _, s := range pn.NameString {
		n += ber.FullSize(len(s))
	}
	return n
}

func (pn *PrincipalName) seqLen() int {
	return intFieldSize(int64(pn.NameType)) + ber.FullSize(ber.FullSize(pn.nameStringLen()))
}

func (pn *PrincipalName) ComputeLength() int {
	return ber.FullSize(pn.seqLen())
}

func (pn *PrincipalName) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.TagSequence, pn.seqLen())
	writeIntField(buf, ber.ContextTag(0), int64(pn.NameType))
	nsLen := pn.nameStringLen()
	ber.WriteHeader(buf, ber.ContextTag(1), ber.FullSize(nsLen))
	ber.WriteHeader(buf, ber.TagSequence, nsLen)
	for _, s := range pn.NameString {
		ber.WriteString(buf, ber.TagGeneralString, s)
	}
}

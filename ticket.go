package krb5

import (
	"bytes"

	"github.com/gemalto/krb5-go/ber"
)

// Ticket is a record that helps a client authenticate to a service,
// RFC 4120 5.3.  Only the KDC and the service can read the enc-part.
//
//	Ticket          ::= [APPLICATION 1] SEQUENCE {
//	        tkt-vno         [0] INTEGER (5),
//	        realm           [1] Realm,
//	        sname           [2] PrincipalName,
//	        enc-part        [3] EncryptedData
//	}
type Ticket struct {
	TktVno  int32
	Realm   string
	SName   PrincipalName
	EncPart EncryptedData
}

const (
	tkStart ber.State = iota
	tkApp
	tkSeq
	tkVnoTag
	tkVnoValue
	tkRealmTag
	tkRealmValue
	tkSNameTag
	tkSNameValue
	tkEncPartTag
	tkEncPartValue
)

var ticketGrammar = ber.NewGrammar("Ticket", []string{
	"START", "APP", "SEQ", "VNO_TAG", "VNO_VALUE", "REALM_TAG", "REALM_VALUE",
	"SNAME_TAG", "SNAME_VALUE", "ENC_PART_TAG", "ENC_PART_VALUE",
})

func init() {
	storeTktVno := &ber.Action{Name: "Ticket.storeTktVno", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseInt32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		if v != 5 {
			return d.ConstraintErrorf(ErrInvalidTktVno, "tkt-vno is %d", v)
		}
		c.(*TicketContainer).ticket.TktVno = v
		return nil
	}}
	storeRealm := &ber.Action{Name: "Ticket.storeRealm", Do: func(d *ber.Decoder, c ber.Container) error {
		c.(*TicketContainer).ticket.Realm = string(d.CurrentTLV().Value())
		return nil
	}}
	storeSName := &ber.Action{Name: "Ticket.storeSName", Do: func(d *ber.Decoder, c ber.Container) error {
		tc := c.(*TicketContainer)
		child := NewPrincipalNameContainer()
		return d.PushGrammar(child, func() error {
			tc.ticket.SName = *child.PrincipalName()
			return nil
		})
	}}
	storeEncPart := &ber.Action{Name: "Ticket.storeEncPart", Do: func(d *ber.Decoder, c ber.Container) error {
		tc := c.(*TicketContainer)
		child := NewEncryptedDataContainer()
		return d.PushGrammar(child, func() error {
			tc.ticket.EncPart = *child.EncryptedData()
			tc.SetGrammarEndAllowed(true)
			return nil
		})
	}}

	ticketGrammar.AddTransition(tkStart, ber.ApplicationTag(1), tkApp, nil)
	ticketGrammar.AddTransition(tkApp, ber.TagSequence, tkSeq, nil)
	ticketGrammar.AddTransition(tkSeq, ber.ContextTag(0), tkVnoTag, ber.CheckNotNullLength)
	ticketGrammar.AddTransition(tkVnoTag, ber.TagInteger, tkVnoValue, storeTktVno)
	ticketGrammar.AddTransition(tkVnoValue, ber.ContextTag(1), tkRealmTag, ber.CheckNotNullLength)
	ticketGrammar.AddTransition(tkRealmTag, ber.TagGeneralString, tkRealmValue, storeRealm)
	ticketGrammar.AddTransition(tkRealmValue, ber.ContextTag(2), tkSNameTag, ber.CheckNotNullLength)
	ticketGrammar.AddTransition(tkSNameTag, ber.TagSequence, tkSNameValue, storeSName)
	ticketGrammar.AddTransition(tkSNameValue, ber.ContextTag(3), tkEncPartTag, ber.CheckNotNullLength)
	ticketGrammar.AddTransition(tkEncPartTag, ber.TagSequence, tkEncPartValue, storeEncPart)
}

// TicketContainer accumulates a Ticket during a parse.
type TicketContainer struct {
	ber.BaseContainer
	ticket *Ticket
}

func NewTicketContainer() *TicketContainer {
	return &TicketContainer{ticket: &Ticket{}}
}

func (c *TicketContainer) Grammar() *ber.Grammar {
	return ticketGrammar
}

func (c *TicketContainer) Ticket() *Ticket {
	return c.ticket
}

// DecodeTicket decodes one complete Ticket from b.
func DecodeTicket(b []byte) (*Ticket, error) {
	c := NewTicketContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.Ticket(), nil
}

func (t *Ticket) seqLen() int {
	return intFieldSize(int64(t.TktVno)) +
		stringFieldSize(t.Realm) +
		ber.FullSize(t.SName.ComputeLength()) +
		ber.FullSize(t.EncPart.ComputeLength())
}

func (t *Ticket) ComputeLength() int {
	return ber.FullSize(ber.FullSize(t.seqLen()))
}

func (t *Ticket) encodeTo(buf *bytes.Buffer) {
	seqLen := t.seqLen()
	ber.WriteHeader(buf, ber.ApplicationTag(1), ber.FullSize(seqLen))
	ber.WriteHeader(buf, ber.TagSequence, seqLen)
	writeIntField(buf, ber.ContextTag(0), int64(t.TktVno))
	writeStringField(buf, ber.ContextTag(1), t.Realm)
	ber.WriteHeader(buf, ber.ContextTag(2), t.SName.ComputeLength())
	t.SName.encodeTo(buf)
	ber.WriteHeader(buf, ber.ContextTag(3), t.EncPart.ComputeLength())
	t.EncPart.encodeTo(buf)
}

package krb5

import (
	"bytes"
	"time"

	"github.com/gemalto/krb5-go/ber"
)

// KdcReqBody is the body shared by AS-REQ and TGS-REQ, RFC 4120 5.4.1.
//
//	KDC-REQ-BODY    ::= SEQUENCE {
//	        kdc-options             [0] KDCOptions,
//	        cname                   [1] PrincipalName OPTIONAL,
//	        realm                   [2] Realm,
//	        sname                   [3] PrincipalName OPTIONAL,
//	        from                    [4] KerberosTime OPTIONAL,
//	        till                    [5] KerberosTime,
//	        rtime                   [6] KerberosTime OPTIONAL,
//	        nonce                   [7] UInt32,
//	        etype                   [8] SEQUENCE OF Int32,
//	        addresses               [9] HostAddresses OPTIONAL,
//	        enc-authorization-data  [10] EncryptedData OPTIONAL,
//	        additional-tickets      [11] SEQUENCE OF Ticket OPTIONAL
//	}
type KdcReqBody struct {
	KdcOptions           KDCOptions
	CName                *PrincipalName
	Realm                string
	SName                *PrincipalName
	From                 *time.Time
	Till                 time.Time
	RTime                *time.Time
	Nonce                uint32
	EType                []EncryptionType
	Addresses            HostAddresses
	EncAuthorizationData *EncryptedData
	AdditionalTickets    []Ticket
}

const (
	bodyStart ber.State = iota
	bodySeq
	bodyKdcOptionsTag
	bodyKdcOptionsValue
	bodyCNameTag
	bodyCNameValue
	bodyRealmTag
	bodyRealmValue
	bodySNameTag
	bodySNameValue
	bodyFromTag
	bodyFromValue
	bodyTillTag
	bodyTillValue
	bodyRTimeTag
	bodyRTimeValue
	bodyNonceTag
	bodyNonceValue
	bodyETypeTag
	bodyETypeSeq
	bodyAddressesTag
	bodyAddressesValue
	bodyEncAuthDataTag
	bodyEncAuthDataValue
	bodyAddTicketsTag
	bodyAddTicketsSeq
)

var kdcReqBodyGrammar = ber.NewGrammar("KDC-REQ-BODY", []string{
	"START", "SEQ", "KDC_OPTIONS_TAG", "KDC_OPTIONS_VALUE", "CNAME_TAG", "CNAME_VALUE",
	"REALM_TAG", "REALM_VALUE", "SNAME_TAG", "SNAME_VALUE", "FROM_TAG", "FROM_VALUE",
	"TILL_TAG", "TILL_VALUE", "RTIME_TAG", "RTIME_VALUE", "NONCE_TAG", "NONCE_VALUE",
	"ETYPE_TAG", "ETYPE_SEQ", "ADDRESSES_TAG", "ADDRESSES_VALUE",
	"ENC_AUTH_DATA_TAG", "ENC_AUTH_DATA_VALUE", "ADDITIONAL_TICKETS_TAG", "ADDITIONAL_TICKETS_SEQ",
})

func init() {
	storeKdcOptions := &ber.Action{Name: "KDC-REQ-BODY.storeKdcOptions", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := parseKDCOptionsBits(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*KdcReqBodyContainer).body.KdcOptions = v
		return nil
	}}
	storeCName := &ber.Action{Name: "KDC-REQ-BODY.storeCName", Do: func(d *ber.Decoder, c ber.Container) error {
		bc := c.(*KdcReqBodyContainer)
		child := NewPrincipalNameContainer()
		return d.PushGrammar(child, func() error {
			bc.body.CName = child.PrincipalName()
			return nil
		})
	}}
	storeRealm := &ber.Action{Name: "KDC-REQ-BODY.storeRealm", Do: func(d *ber.Decoder, c ber.Container) error {
		c.(*KdcReqBodyContainer).body.Realm = string(d.CurrentTLV().Value())
		return nil
	}}
	storeSName := &ber.Action{Name: "KDC-REQ-BODY.storeSName", Do: func(d *ber.Decoder, c ber.Container) error {
		bc := c.(*KdcReqBodyContainer)
		child := NewPrincipalNameContainer()
		return d.PushGrammar(child, func() error {
			bc.body.SName = child.PrincipalName()
			return nil
		})
	}}
	storeFrom := &ber.Action{Name: "KDC-REQ-BODY.storeFrom", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseGeneralizedTime(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*KdcReqBodyContainer).body.From = &v
		return nil
	}}
	storeTill := &ber.Action{Name: "KDC-REQ-BODY.storeTill", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseGeneralizedTime(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*KdcReqBodyContainer).body.Till = v
		return nil
	}}
	storeRTime := &ber.Action{Name: "KDC-REQ-BODY.storeRTime", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseGeneralizedTime(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*KdcReqBodyContainer).body.RTime = &v
		return nil
	}}
	storeNonce := &ber.Action{Name: "KDC-REQ-BODY.storeNonce", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseUint32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*KdcReqBodyContainer).body.Nonce = v
		return nil
	}}
	// the message may legally end once the etype list has been entered, so
	// the end marker is raised here rather than in addEType
	enterEType := &ber.Action{Name: "KDC-REQ-BODY.enterEType", Do: func(d *ber.Decoder, c ber.Container) error {
		c.SetGrammarEndAllowed(true)
		return nil
	}}
	addEType := &ber.Action{Name: "KDC-REQ-BODY.addEType", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseInt32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		bc := c.(*KdcReqBodyContainer)
		bc.body.EType = append(bc.body.EType, EncryptionType(v))
		return nil
	}}
	storeAddresses := &ber.Action{Name: "KDC-REQ-BODY.storeAddresses", Do: func(d *ber.Decoder, c ber.Container) error {
		bc := c.(*KdcReqBodyContainer)
		child := NewHostAddressesContainer()
		return d.PushGrammar(child, func() error {
			bc.body.Addresses = child.HostAddresses()
			return nil
		})
	}}
	storeEncAuthData := &ber.Action{Name: "KDC-REQ-BODY.storeEncAuthData", Do: func(d *ber.Decoder, c ber.Container) error {
		bc := c.(*KdcReqBodyContainer)
		child := NewEncryptedDataContainer()
		return d.PushGrammar(child, func() error {
			bc.body.EncAuthorizationData = child.EncryptedData()
			return nil
		})
	}}
	addTicket := &ber.Action{Name: "KDC-REQ-BODY.addTicket", Do: func(d *ber.Decoder, c ber.Container) error {
		bc := c.(*KdcReqBodyContainer)
		child := NewTicketContainer()
		return d.PushGrammar(child, func() error {
			bc.body.AdditionalTickets = append(bc.body.AdditionalTickets, *child.Ticket())
			return nil
		})
	}}

	g := kdcReqBodyGrammar
	g.AddTransition(bodyStart, ber.TagSequence, bodySeq, nil)
	g.AddTransition(bodySeq, ber.ContextTag(0), bodyKdcOptionsTag, ber.CheckNotNullLength)
	g.AddTransition(bodyKdcOptionsTag, ber.TagBitString, bodyKdcOptionsValue, storeKdcOptions)
	g.AddTransition(bodyKdcOptionsValue, ber.ContextTag(1), bodyCNameTag, ber.CheckNotNullLength)
	g.AddTransition(bodyKdcOptionsValue, ber.ContextTag(2), bodyRealmTag, ber.CheckNotNullLength)
	g.AddTransition(bodyCNameTag, ber.TagSequence, bodyCNameValue, storeCName)
	g.AddTransition(bodyCNameValue, ber.ContextTag(2), bodyRealmTag, ber.CheckNotNullLength)
	g.AddTransition(bodyRealmTag, ber.TagGeneralString, bodyRealmValue, storeRealm)
	g.AddTransition(bodyRealmValue, ber.ContextTag(3), bodySNameTag, ber.CheckNotNullLength)
	g.AddTransition(bodyRealmValue, ber.ContextTag(4), bodyFromTag, ber.CheckNotNullLength)
	g.AddTransition(bodyRealmValue, ber.ContextTag(5), bodyTillTag, ber.CheckNotNullLength)
	g.AddTransition(bodySNameTag, ber.TagSequence, bodySNameValue, storeSName)
	g.AddTransition(bodySNameValue, ber.ContextTag(4), bodyFromTag, ber.CheckNotNullLength)
	g.AddTransition(bodySNameValue, ber.ContextTag(5), bodyTillTag, ber.CheckNotNullLength)
	g.AddTransition(bodyFromTag, ber.TagGeneralizedTime, bodyFromValue, storeFrom)
	g.AddTransition(bodyFromValue, ber.ContextTag(5), bodyTillTag, ber.CheckNotNullLength)
	g.AddTransition(bodyTillTag, ber.TagGeneralizedTime, bodyTillValue, storeTill)
	g.AddTransition(bodyTillValue, ber.ContextTag(6), bodyRTimeTag, ber.CheckNotNullLength)
	g.AddTransition(bodyTillValue, ber.ContextTag(7), bodyNonceTag, ber.CheckNotNullLength)
	g.AddTransition(bodyRTimeTag, ber.TagGeneralizedTime, bodyRTimeValue, storeRTime)
	g.AddTransition(bodyRTimeValue, ber.ContextTag(7), bodyNonceTag, ber.CheckNotNullLength)
	g.AddTransition(bodyNonceTag, ber.TagInteger, bodyNonceValue, storeNonce)
	g.AddTransition(bodyNonceValue, ber.ContextTag(8), bodyETypeTag, ber.CheckNotNullLength)
	g.AddTransition(bodyETypeTag, ber.TagSequence, bodyETypeSeq, enterEType)
	g.AddTransition(bodyETypeSeq, ber.TagInteger, bodyETypeSeq, addEType)
	// once the etype list closes the state stays on ETYPE_SEQ, so the
	// optional tail fields hang off it
	g.AddTransition(bodyETypeSeq, ber.ContextTag(9), bodyAddressesTag, ber.CheckNotNullLength)
	g.AddTransition(bodyETypeSeq, ber.ContextTag(10), bodyEncAuthDataTag, ber.CheckNotNullLength)
	g.AddTransition(bodyETypeSeq, ber.ContextTag(11), bodyAddTicketsTag, ber.CheckNotNullLength)
	g.AddTransition(bodyAddressesTag, ber.TagSequence, bodyAddressesValue, storeAddresses)
	g.AddTransition(bodyAddressesValue, ber.ContextTag(10), bodyEncAuthDataTag, ber.CheckNotNullLength)
	g.AddTransition(bodyAddressesValue, ber.ContextTag(11), bodyAddTicketsTag, ber.CheckNotNullLength)
	g.AddTransition(bodyEncAuthDataTag, ber.TagSequence, bodyEncAuthDataValue, storeEncAuthData)
	g.AddTransition(bodyEncAuthDataValue, ber.ContextTag(11), bodyAddTicketsTag, ber.CheckNotNullLength)
	g.AddTransition(bodyAddTicketsTag, ber.TagSequence, bodyAddTicketsSeq, nil)
	g.AddTransition(bodyAddTicketsSeq, ber.ApplicationTag(1), bodyAddTicketsSeq, addTicket)
}

// KdcReqBodyContainer accumulates a KDC-REQ-BODY during a parse.
type KdcReqBodyContainer struct {
	ber.BaseContainer
	body *KdcReqBody
}

func NewKdcReqBodyContainer() *KdcReqBodyContainer {
	return &KdcReqBodyContainer{body: &KdcReqBody{}}
}

func (c *KdcReqBodyContainer) Grammar() *ber.Grammar {
	return kdcReqBodyGrammar
}

func (c *KdcReqBodyContainer) KdcReqBody() *KdcReqBody {
	return c.body
}

// DecodeKdcReqBody decodes one complete KDC-REQ-BODY from b.
func DecodeKdcReqBody(b []byte) (*KdcReqBody, error) {
	c := NewKdcReqBodyContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.KdcReqBody(), nil
}

// [0] wrapper around a BIT STRING of 32 bits
const kdcOptionsFieldSize = 2 + 2 + 5

func (rb *KdcReqBody) etypeLen() int {
	var n int
	for _, et := range rb.EType {
		n += ber.FullSize(ber.IntSize(int64(et)))
	}
	return n
}

func (rb *KdcReqBody) additionalTicketsLen() int {
	var n int
	for i := range rb.AdditionalTickets {
		n += rb.AdditionalTickets[i].ComputeLength()
	}
	return n
}

func (rb *KdcReqBody) seqLen() int {
	n := kdcOptionsFieldSize
	if rb.CName != nil {
		n += ber.FullSize(rb.CName.ComputeLength())
	}
	n += stringFieldSize(rb.Realm)
	if rb.SName != nil {
		n += ber.FullSize(rb.SName.ComputeLength())
	}
	if rb.From != nil {
		n += timeFieldSize
	}
	n += timeFieldSize
	if rb.RTime != nil {
		n += timeFieldSize
	}
	n += uint32FieldSize(rb.Nonce)
	n += ber.FullSize(ber.FullSize(rb.etypeLen()))
	if len(rb.Addresses) > 0 {
		n += ber.FullSize(rb.Addresses.ComputeLength())
	}
	if rb.EncAuthorizationData != nil {
		n += ber.FullSize(rb.EncAuthorizationData.ComputeLength())
	}
	if len(rb.AdditionalTickets) > 0 {
		n += ber.FullSize(ber.FullSize(rb.additionalTicketsLen()))
	}
	return n
}

func (rb *KdcReqBody) ComputeLength() int {
	return ber.FullSize(rb.seqLen())
}

func (rb *KdcReqBody) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.TagSequence, rb.seqLen())
	ber.WriteHeader(buf, ber.ContextTag(0), ber.FullSize(1+4))
	ber.WriteBitString(buf, ber.TagBitString, 0, rb.KdcOptions.bits())
	if rb.CName != nil {
		ber.WriteHeader(buf, ber.ContextTag(1), rb.CName.ComputeLength())
		rb.CName.encodeTo(buf)
	}
	writeStringField(buf, ber.ContextTag(2), rb.Realm)
	if rb.SName != nil {
		ber.WriteHeader(buf, ber.ContextTag(3), rb.SName.ComputeLength())
		rb.SName.encodeTo(buf)
	}
	if rb.From != nil {
		writeTimeField(buf, ber.ContextTag(4), *rb.From)
	}
	writeTimeField(buf, ber.ContextTag(5), rb.Till)
	if rb.RTime != nil {
		writeTimeField(buf, ber.ContextTag(6), *rb.RTime)
	}
	writeUint32Field(buf, ber.ContextTag(7), rb.Nonce)
	etypeLen := rb.etypeLen()
	ber.WriteHeader(buf, ber.ContextTag(8), ber.FullSize(etypeLen))
	ber.WriteHeader(buf, ber.TagSequence, etypeLen)
	for _, et := range rb.EType {
		ber.WriteInt(buf, ber.TagInteger, int64(et))
	}
	if len(rb.Addresses) > 0 {
		ber.WriteHeader(buf, ber.ContextTag(9), rb.Addresses.ComputeLength())
		rb.Addresses.encodeTo(buf)
	}
	if rb.EncAuthorizationData != nil {
		ber.WriteHeader(buf, ber.ContextTag(10), rb.EncAuthorizationData.ComputeLength())
		rb.EncAuthorizationData.encodeTo(buf)
	}
	if len(rb.AdditionalTickets) > 0 {
		ticketsLen := rb.additionalTicketsLen()
		ber.WriteHeader(buf, ber.ContextTag(11), ber.FullSize(ticketsLen))
		ber.WriteHeader(buf, ber.TagSequence, ticketsLen)
		for i := range rb.AdditionalTickets {
			rb.AdditionalTickets[i].encodeTo(buf)
		}
	}
}

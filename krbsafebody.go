package krb5

import (
	"bytes"
	"time"

	"github.com/gemalto/krb5-go/ber"
)

// KrbSafeBody is the user-visible part of a KRB-SAFE message, RFC 4120 5.6.1.
//
//	KRB-SAFE-BODY   ::= SEQUENCE {
//	        user-data       [0] OCTET STRING,
//	        timestamp       [1] KerberosTime OPTIONAL,
//	        usec            [2] Microseconds OPTIONAL,
//	        seq-number      [3] UInt32 OPTIONAL,
//	        s-address       [4] HostAddress,
//	        r-address       [5] HostAddress OPTIONAL
//	}
type KrbSafeBody struct {
	UserData  []byte
	Timestamp *time.Time
	Usec      *int32
	SeqNumber *uint32
	SAddress  HostAddress
	RAddress  *HostAddress
}

const (
	sbStart ber.State = iota
	sbSeq
	sbUserDataTag
	sbUserDataValue
	sbTimestampTag
	sbTimestampValue
	sbUsecTag
	sbUsecValue
	sbSeqNumberTag
	sbSeqNumberValue
	sbSAddressTag
	sbSAddressValue
	sbRAddressTag
	sbRAddressValue
)

var krbSafeBodyGrammar = ber.NewGrammar("KRB-SAFE-BODY", []string{
	"START", "SEQ", "USER_DATA_TAG", "USER_DATA_VALUE", "TIMESTAMP_TAG", "TIMESTAMP_VALUE",
	"USEC_TAG", "USEC_VALUE", "SEQ_NUMBER_TAG", "SEQ_NUMBER_VALUE",
	"S_ADDRESS_TAG", "S_ADDRESS_VALUE", "R_ADDRESS_TAG", "R_ADDRESS_VALUE",
})

func init() {
	storeUserData := &ber.Action{Name: "KRB-SAFE-BODY.storeUserData", Do: func(d *ber.Decoder, c ber.Container) error {
		t := d.CurrentTLV()
		if t.Length() == 0 {
			return d.StructuralErrorf(ber.ErrNullLength, "user-data must not be empty")
		}
		c.(*KrbSafeBodyContainer).body.UserData = t.CopyValue()
		return nil
	}}
	storeTimestamp := &ber.Action{Name: "KRB-SAFE-BODY.storeTimestamp", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseGeneralizedTime(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*KrbSafeBodyContainer).body.Timestamp = &v
		return nil
	}}
	storeUsec := &ber.Action{Name: "KRB-SAFE-BODY.storeUsec", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseInt32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		if v < 0 || v > 999999 {
			return d.ConstraintErrorf(ErrInvalidUsec, "usec is %d", v)
		}
		c.(*KrbSafeBodyContainer).body.Usec = &v
		return nil
	}}
	storeSeqNumber := &ber.Action{Name: "KRB-SAFE-BODY.storeSeqNumber", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseUint32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*KrbSafeBodyContainer).body.SeqNumber = &v
		return nil
	}}
	storeSAddress := &ber.Action{Name: "KRB-SAFE-BODY.storeSAddress", Do: func(d *ber.Decoder, c ber.Container) error {
		sc := c.(*KrbSafeBodyContainer)
		child := NewHostAddressContainer()
		return d.PushGrammar(child, func() error {
			sc.body.SAddress = *child.HostAddress()
			sc.SetGrammarEndAllowed(true)
			return nil
		})
	}}
	storeRAddress := &ber.Action{Name: "KRB-SAFE-BODY.storeRAddress", Do: func(d *ber.Decoder, c ber.Container) error {
		sc := c.(*KrbSafeBodyContainer)
		child := NewHostAddressContainer()
		return d.PushGrammar(child, func() error {
			sc.body.RAddress = child.HostAddress()
			return nil
		})
	}}

	g := krbSafeBodyGrammar
	g.AddTransition(sbStart, ber.TagSequence, sbSeq, nil)
	g.AddTransition(sbSeq, ber.ContextTag(0), sbUserDataTag, ber.CheckNotNullLength)
	g.AddTransition(sbUserDataTag, ber.TagOctetString, sbUserDataValue, storeUserData)
	// timestamp, usec, and seq-number are optional: each completed field may
	// be followed by any later tag, down to the required s-address
	g.AddTransition(sbUserDataValue, ber.ContextTag(1), sbTimestampTag, ber.CheckNotNullLength)
	g.AddTransition(sbUserDataValue, ber.ContextTag(2), sbUsecTag, ber.CheckNotNullLength)
	g.AddTransition(sbUserDataValue, ber.ContextTag(3), sbSeqNumberTag, ber.CheckNotNullLength)
	g.AddTransition(sbUserDataValue, ber.ContextTag(4), sbSAddressTag, ber.CheckNotNullLength)
	g.AddTransition(sbTimestampTag, ber.TagGeneralizedTime, sbTimestampValue, storeTimestamp)
	g.AddTransition(sbTimestampValue, ber.ContextTag(2), sbUsecTag, ber.CheckNotNullLength)
	g.AddTransition(sbTimestampValue, ber.ContextTag(3), sbSeqNumberTag, ber.CheckNotNullLength)
	g.AddTransition(sbTimestampValue, ber.ContextTag(4), sbSAddressTag, ber.CheckNotNullLength)
	g.AddTransition(sbUsecTag, ber.TagInteger, sbUsecValue, storeUsec)
	g.AddTransition(sbUsecValue, ber.ContextTag(3), sbSeqNumberTag, ber.CheckNotNullLength)
	g.AddTransition(sbUsecValue, ber.ContextTag(4), sbSAddressTag, ber.CheckNotNullLength)
	g.AddTransition(sbSeqNumberTag, ber.TagInteger, sbSeqNumberValue, storeSeqNumber)
	g.AddTransition(sbSeqNumberValue, ber.ContextTag(4), sbSAddressTag, ber.CheckNotNullLength)
	g.AddTransition(sbSAddressTag, ber.TagSequence, sbSAddressValue, storeSAddress)
	g.AddTransition(sbSAddressValue, ber.ContextTag(5), sbRAddressTag, ber.CheckNotNullLength)
	g.AddTransition(sbRAddressTag, ber.TagSequence, sbRAddressValue, storeRAddress)
}

// KrbSafeBodyContainer accumulates a KRB-SAFE-BODY during a parse.
type KrbSafeBodyContainer struct {
	ber.BaseContainer
	body *KrbSafeBody
}

func NewKrbSafeBodyContainer() *KrbSafeBodyContainer {
	return &KrbSafeBodyContainer{body: &KrbSafeBody{}}
}

func (c *KrbSafeBodyContainer) Grammar() *ber.Grammar {
	return krbSafeBodyGrammar
}

func (c *KrbSafeBodyContainer) KrbSafeBody() *KrbSafeBody {
	return c.body
}

// DecodeKrbSafeBody decodes one complete KRB-SAFE-BODY from b.
func DecodeKrbSafeBody(b []byte) (*KrbSafeBody, error) {
	c := NewKrbSafeBodyContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.KrbSafeBody(), nil
}

func (sb *KrbSafeBody) seqLen() int {
	n := bytesFieldSize(sb.UserData)
	if sb.Timestamp != nil {
		n += timeFieldSize
	}
	if sb.Usec != nil {
		n += intFieldSize(int64(*sb.Usec))
	}
	if sb.SeqNumber != nil {
		n += uint32FieldSize(*sb.SeqNumber)
	}
	n += ber.FullSize(sb.SAddress.ComputeLength())
	if sb.RAddress != nil {
		n += ber.FullSize(sb.RAddress.ComputeLength())
	}
	return n
}

func (sb *KrbSafeBody) ComputeLength() int {
	return ber.FullSize(sb.seqLen())
}

func (sb *KrbSafeBody) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.TagSequence, sb.seqLen())
	writeBytesField(buf, ber.ContextTag(0), sb.UserData)
	if sb.Timestamp != nil {
		writeTimeField(buf, ber.ContextTag(1), *sb.Timestamp)
	}
	if sb.Usec != nil {
		writeIntField(buf, ber.ContextTag(2), int64(*sb.Usec))
	}
	if sb.SeqNumber != nil {
		writeUint32Field(buf, ber.ContextTag(3), *sb.SeqNumber)
	}
	ber.WriteHeader(buf, ber.ContextTag(4), sb.SAddress.ComputeLength())
	sb.SAddress.encodeTo(buf)
	if sb.RAddress != nil {
		ber.WriteHeader(buf, ber.ContextTag(5), sb.RAddress.ComputeLength())
		sb.RAddress.encodeTo(buf)
	}
}

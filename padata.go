package krb5

import (
	"bytes"

	"github.com/gemalto/krb5-go/ber"
)

// PaData is one pre-authentication data element, RFC 4120 5.2.7.  Note the
// context tags start at [1]: there is no [0], a relic the RFC preserves from
// RFC 1510.
//
//	PA-DATA         ::= SEQUENCE {
//	        padata-type     [1] Int32,
//	        padata-value    [2] OCTET STRING
//	}
type PaData struct {
	PaDataType  PaDataType
	PaDataValue []byte
}

const (
	pdStart ber.State = iota
	pdSeq
	pdTypeTag
	pdTypeValue
	pdValueTag
	pdValueValue
)

var paDataGrammar = ber.NewGrammar("PA-DATA", []string{
	"START", "SEQ", "TYPE_TAG", "TYPE_VALUE", "VALUE_TAG", "VALUE_VALUE",
})

func init() {
	storeType := &ber.Action{Name: "PA-DATA.storeType", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseInt32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*PaDataContainer).pd.PaDataType = PaDataType(v)
		return nil
	}}
	storeValue := &ber.Action{Name: "PA-DATA.storeValue", Do: func(d *ber.Decoder, c ber.Container) error {
		pc := c.(*PaDataContainer)
		pc.pd.PaDataValue = d.CurrentTLV().CopyValue()
		pc.SetGrammarEndAllowed(true)
		return nil
	}}

	paDataGrammar.AddTransition(pdStart, ber.TagSequence, pdSeq, nil)
	paDataGrammar.AddTransition(pdSeq, ber.ContextTag(1), pdTypeTag, ber.CheckNotNullLength)
	paDataGrammar.AddTransition(pdTypeTag, ber.TagInteger, pdTypeValue, storeType)
	paDataGrammar.AddTransition(pdTypeValue, ber.ContextTag(2), pdValueTag, ber.CheckNotNullLength)
	paDataGrammar.AddTransition(pdValueTag, ber.TagOctetString, pdValueValue, storeValue)
}

// PaDataContainer accumulates a PA-DATA during a parse.
type PaDataContainer struct {
	ber.BaseContainer
	pd *PaData
}

func NewPaDataContainer() *PaDataContainer {
	return &PaDataContainer{pd: &PaData{}}
}

func (c *PaDataContainer) Grammar() *ber.Grammar {
	return paDataGrammar
}

func (c *PaDataContainer) PaData() *PaData {
	return c.pd
}

// DecodePaData decodes one complete PA-DATA from b.
func DecodePaData(b []byte) (*PaData, error) {
	c := NewPaDataContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.PaData(), nil
}

func (pd *PaData) seqLen() int {
	return intFieldSize(int64(pd.PaDataType)) + bytesFieldSize(pd.PaDataValue)
}

func (pd *PaData) ComputeLength() int {
	return ber.FullSize(pd.seqLen())
}

func (pd *PaData) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.TagSequence, pd.seqLen())
	writeIntField(buf, ber.ContextTag(1), int64(pd.PaDataType))
	writeBytesField(buf, ber.ContextTag(2), pd.PaDataValue)
}

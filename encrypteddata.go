package krb5

import (
	"bytes"

	"github.com/gemalto/krb5-go/ber"
)

// EncryptedData carries ciphertext and the parameters needed to decrypt it,
// RFC 4120 5.2.9.
//
//	EncryptedData   ::= SEQUENCE {
//	        etype   [0] Int32,
//	        kvno    [1] UInt32 OPTIONAL,
//	        cipher  [2] OCTET STRING
//	}
type EncryptedData struct {
	EType  EncryptionType
	Kvno   *uint32
	Cipher []byte
}

const (
	edStart ber.State = iota
	edSeq
	edETypeTag
	edETypeValue
	edKvnoTag
	edKvnoValue
	edCipherTag
	edCipherValue
)

var encryptedDataGrammar = ber.NewGrammar("EncryptedData", []string{
	"START", "SEQ", "ETYPE_TAG", "ETYPE_VALUE", "KVNO_TAG", "KVNO_VALUE", "CIPHER_TAG", "CIPHER_VALUE",
})

func init() {
	storeEType := &ber.Action{Name: "EncryptedData.storeEType", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseInt32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*EncryptedDataContainer).ed.EType = EncryptionType(v)
		return nil
	}}
	storeKvno := &ber.Action{Name: "EncryptedData.storeKvno", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseUint32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*EncryptedDataContainer).ed.Kvno = &v
		return nil
	}}
	storeCipher := &ber.Action{Name: "EncryptedData.storeCipher", Do: func(d *ber.Decoder, c ber.Container) error {
		ec := c.(*EncryptedDataContainer)
		ec.ed.Cipher = d.CurrentTLV().CopyValue()
		ec.SetGrammarEndAllowed(true)
		return nil
	}}

	encryptedDataGrammar.AddTransition(edStart, ber.TagSequence, edSeq, nil)
	encryptedDataGrammar.AddTransition(edSeq, ber.ContextTag(0), edETypeTag, ber.CheckNotNullLength)
	encryptedDataGrammar.AddTransition(edETypeTag, ber.TagInteger, edETypeValue, storeEType)
	// kvno is optional: etype may be followed by either [1] or [2]
	encryptedDataGrammar.AddTransition(edETypeValue, ber.ContextTag(1), edKvnoTag, ber.CheckNotNullLength)
	encryptedDataGrammar.AddTransition(edETypeValue, ber.ContextTag(2), edCipherTag, ber.CheckNotNullLength)
	encryptedDataGrammar.AddTransition(edKvnoTag, ber.TagInteger, edKvnoValue, storeKvno)
	encryptedDataGrammar.AddTransition(edKvnoValue, ber.ContextTag(2), edCipherTag, ber.CheckNotNullLength)
	encryptedDataGrammar.AddTransition(edCipherTag, ber.TagOctetString, edCipherValue, storeCipher)
}

// EncryptedDataContainer accumulates an EncryptedData during a parse.
type EncryptedDataContainer struct {
	ber.BaseContainer
	ed *EncryptedData
}

func NewEncryptedDataContainer() *EncryptedDataContainer {
	return &EncryptedDataContainer{ed: &EncryptedData{}}
}

func (c *EncryptedDataContainer) Grammar() *ber.Grammar {
	return encryptedDataGrammar
}

func (c *EncryptedDataContainer) EncryptedData() *EncryptedData {
	return c.ed
}

// DecodeEncryptedData decodes one complete EncryptedData from b.
func DecodeEncryptedData(b []byte) (*EncryptedData, error) {
	c := NewEncryptedDataContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.EncryptedData(), nil
}

func (ed *EncryptedData) seqLen() int {
	n := intFieldSize(int64(ed.EType))
	if ed.Kvno != nil {
		n += uint32FieldSize(*ed.Kvno)
	}
	return n + bytesFieldSize(ed.Cipher)
}

func (ed *EncryptedData) ComputeLength() int {
	return ber.FullSize(ed.seqLen())
}

func (ed *EncryptedData) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.TagSequence, ed.seqLen())
	writeIntField(buf, ber.ContextTag(0), int64(ed.EType))
	if ed.Kvno != nil {
		writeUint32Field(buf, ber.ContextTag(1), *ed.Kvno)
	}
	writeBytesField(buf, ber.ContextTag(2), ed.Cipher)
}

package krb5

import (
	"bytes"

	"github.com/gemalto/krb5-go/ber"
)

// EncryptionKey is a session or service key, RFC 4120 5.2.9.
//
//	EncryptionKey   ::= SEQUENCE {
//	        keytype         [0] Int32,
//	        keyvalue        [1] OCTET STRING
//	}
type EncryptionKey struct {
	KeyType  EncryptionType
	KeyValue []byte
}

const (
	ekStart ber.State = iota
	ekSeq
	ekKeyTypeTag
	ekKeyTypeValue
	ekKeyValueTag
	ekKeyValueValue
)

var encryptionKeyGrammar = ber.NewGrammar("EncryptionKey", []string{
	"START", "SEQ", "KEYTYPE_TAG", "KEYTYPE_VALUE", "KEYVALUE_TAG", "KEYVALUE_VALUE",
})

func init() {
	storeKeyType := &ber.Action{Name: "EncryptionKey.storeKeyType", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseInt32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		c.(*EncryptionKeyContainer).key.KeyType = EncryptionType(v)
		return nil
	}}
	// keyvalue may be empty: a zero length OCTET STRING decodes to a nil
	// KeyValue and is how an absent key is carried
	storeKeyValue := &ber.Action{Name: "EncryptionKey.storeKeyValue", Do: func(d *ber.Decoder, c ber.Container) error {
		kc := c.(*EncryptionKeyContainer)
		kc.key.KeyValue = d.CurrentTLV().CopyValue()
		kc.SetGrammarEndAllowed(true)
		return nil
	}}

	encryptionKeyGrammar.AddTransition(ekStart, ber.TagSequence, ekSeq, nil)
	encryptionKeyGrammar.AddTransition(ekSeq, ber.ContextTag(0), ekKeyTypeTag, ber.CheckNotNullLength)
	encryptionKeyGrammar.AddTransition(ekKeyTypeTag, ber.TagInteger, ekKeyTypeValue, storeKeyType)
	encryptionKeyGrammar.AddTransition(ekKeyTypeValue, ber.ContextTag(1), ekKeyValueTag, ber.CheckNotNullLength)
	encryptionKeyGrammar.AddTransition(ekKeyValueTag, ber.TagOctetString, ekKeyValueValue, storeKeyValue)
}

// EncryptionKeyContainer accumulates an EncryptionKey during a parse.
type EncryptionKeyContainer struct {
	ber.BaseContainer
	key *EncryptionKey
}

func NewEncryptionKeyContainer() *EncryptionKeyContainer {
	return &EncryptionKeyContainer{key: &EncryptionKey{}}
}

func (c *EncryptionKeyContainer) Grammar() *ber.Grammar {
	return encryptionKeyGrammar
}

func (c *EncryptionKeyContainer) EncryptionKey() *EncryptionKey {
	return c.key
}

// DecodeEncryptionKey decodes one complete EncryptionKey from b.
func DecodeEncryptionKey(b []byte) (*EncryptionKey, error) {
	c := NewEncryptionKeyContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.EncryptionKey(), nil
}

func (k *EncryptionKey) seqLen() int {
	return intFieldSize(int64(k.KeyType)) + bytesFieldSize(k.KeyValue)
}

func (k *EncryptionKey) ComputeLength() int {
	return ber.FullSize(k.seqLen())
}

// encodeTo always writes the keyvalue field, as a zero length OCTET STRING
// when KeyValue is nil, so the field's tags survive a round trip.
func (k *EncryptionKey) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.TagSequence, k.seqLen())
	writeIntField(buf, ber.ContextTag(0), int64(k.KeyType))
	writeBytesField(buf, ber.ContextTag(1), k.KeyValue)
}

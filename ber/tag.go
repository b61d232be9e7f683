package ber

import "fmt"

// Class is the class of a BER tag: the top two bits of the identifier octet.
type Class byte

const (
	ClassUniversal   Class = 0x00
	ClassApplication Class = 0x40
	ClassContext     Class = 0x80
	ClassPrivate     Class = 0xC0
)

func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "UNIVERSAL"
	case ClassApplication:
		return "APPLICATION"
	case ClassContext:
		return "CONTEXT"
	default:
		return "PRIVATE"
	}
}

// Tag is a complete BER identifier octet: class, constructed bit, and tag
// number packed into a single byte.  Kerberos only uses tag numbers below 31,
// so the multi-byte identifier form never appears; see Decoder for how it is
// rejected.
type Tag byte

// Universal tags, with the constructed bit set where the type is always
// constructed on the wire.
const (
	TagBoolean         Tag = 0x01
	TagInteger         Tag = 0x02
	TagBitString       Tag = 0x03
	TagOctetString     Tag = 0x04
	TagNull            Tag = 0x05
	TagEnumerated      Tag = 0x0A
	TagGeneralizedTime Tag = 0x18
	TagGeneralString   Tag = 0x1B
	TagSequence        Tag = 0x30
	TagSet             Tag = 0x31
)

const (
	classMask       = 0xC0
	constructedMask = 0x20
	numberMask      = 0x1F
)

// ContextTag returns the constructed context-specific tag [n].  Kerberos
// wraps every field in one of these (EXPLICIT tagging).
func ContextTag(n uint8) Tag {
	return Tag(byte(ClassContext) | constructedMask | (n & numberMask))
}

// ApplicationTag returns the constructed application tag [APPLICATION n],
// used for top-level Kerberos messages (AS-REQ is [APPLICATION 10]).
func ApplicationTag(n uint8) Tag {
	return Tag(byte(ClassApplication) | constructedMask | (n & numberMask))
}

func (t Tag) Class() Class {
	return Class(byte(t) & classMask)
}

// Constructed reports whether the TLV's value is a sequence of nested TLVs
// rather than raw bytes.
func (t Tag) Constructed() bool {
	return byte(t)&constructedMask != 0
}

// Number returns the tag number encoded in the low five bits.
func (t Tag) Number() uint8 {
	return byte(t) & numberMask
}

var universalNames = map[uint8]string{
	0x01: "BOOLEAN",
	0x02: "INTEGER",
	0x03: "BIT STRING",
	0x04: "OCTET STRING",
	0x05: "NULL",
	0x06: "OBJECT IDENTIFIER",
	0x0A: "ENUMERATED",
	0x10: "SEQUENCE",
	0x11: "SET",
	0x13: "PrintableString",
	0x16: "IA5String",
	0x18: "GeneralizedTime",
	0x1B: "GeneralString",
}

func (t Tag) String() string {
	switch t.Class() {
	case ClassUniversal:
		if s, ok := universalNames[t.Number()]; ok {
			return s
		}
		return fmt.Sprintf("UNIVERSAL %d", t.Number())
	case ClassContext:
		return fmt.Sprintf("[%d]", t.Number())
	case ClassApplication:
		return fmt.Sprintf("[APPLICATION %d]", t.Number())
	default:
		return fmt.Sprintf("[PRIVATE %d]", t.Number())
	}
}

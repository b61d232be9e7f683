package ber

// TLV is one tag-length-value triple read off the wire.  The Decoder hands
// the current TLV to grammar actions; actions inspect the tag and length and,
// for primitives, the value bytes.
//
// For constructed TLVs the value is not materialized: the children are
// delivered as their own TLVs, and the parent tracks how many of its declared
// value bytes remain unclaimed.
type TLV struct {
	tag    Tag
	length int

	hdr     int   // bytes of header actually read (tag + length octets)
	value   []byte
	vread   int   // value bytes received so far
	pending int   // constructed: value bytes not yet claimed by children
	depth   int   // nesting depth, root is 0
	parent  *TLV
}

func (t *TLV) Tag() Tag {
	return t.tag
}

// Length is the declared value length from the TLV header.
func (t *TLV) Length() int {
	return t.length
}

// Value returns the value bytes of a primitive TLV.  The slice may alias the
// buffer passed to Decode and is only valid for the duration of the action;
// use CopyValue to retain it.
func (t *TLV) Value() []byte {
	return t.value
}

// CopyValue returns an owned copy of the value bytes, or nil for a
// zero-length value.
func (t *TLV) CopyValue() []byte {
	if t.length == 0 {
		return nil
	}
	return append([]byte(nil), t.value...)
}

// Parent is the enclosing constructed TLV, or nil at the top level.
func (t *TLV) Parent() *TLV {
	return t.parent
}

// Size is the full encoded size of the TLV: the header bytes as actually
// read, plus the declared value length.
func (t *TLV) Size() int {
	return t.hdr + t.length
}

func (t *TLV) String() string {
	return t.tag.String()
}

package ber

import (
	"fmt"
	"io"
	"math"
)

// splitHeader reads one TLV header from the front of b, returning the tag,
// the declared value length, and the header size.  Unlike the Decoder it
// requires the whole header to be present.
func splitHeader(b []byte) (tag Tag, length, hdr int, err error) {
	if len(b) < 2 {
		return 0, 0, 0, NewStructural(ErrTruncated).Append("header truncated")
	}
	c := b[0]
	if c == 0 {
		return 0, 0, 0, NewStructural(ErrNullTag).Append("tag byte 0x00")
	}
	if c&numberMask == numberMask {
		return 0, 0, 0, NewStructural(ErrHighTagNumber).Appendf("tag byte %#02x uses the multi-byte identifier form", c)
	}
	tag = Tag(c)
	c = b[1]
	switch {
	case c < 0x80:
		return tag, int(c), 2, nil
	case c == 0x80:
		return 0, 0, 0, NewStructural(ErrIndefiniteLength).Appendf("%s uses an indefinite length", tag)
	}
	n := int(c & 0x7F)
	if n > 8 {
		return 0, 0, 0, NewStructural(ErrLengthOverflow).Appendf("%s declares %d length octets", tag, n)
	}
	if len(b) < 2+n {
		return 0, 0, 0, NewStructural(ErrTruncated).Append("header truncated")
	}
	for _, d := range b[2 : 2+n] {
		if length > math.MaxInt>>8 {
			return 0, 0, 0, NewStructural(ErrLengthOverflow).Appendf("%s length does not fit in an int", tag)
		}
		length = length<<8 | int(d)
	}
	return tag, length, 2 + n, nil
}

// Print pretty prints BER in a human readable format:
//
//	[APPLICATION 10] (167):
//	  SEQUENCE (165):
//	    [1] (3):
//	      INTEGER (1): 5
//	    [4] (94):
//	      SEQUENCE (92):
//	        ...
//
// Each line is prefixed with currentIndent, and nesting adds indent.  Invalid
// input is tolerated: as much as possible is printed, the rest is dumped as
// raw hex, and the parse error is returned.
func Print(w io.Writer, currentIndent, indent string, b []byte) error {
	first := true
	for len(b) > 0 {
		if !first {
			fmt.Fprint(w, "\n")
		}
		first = false

		tag, length, hdr, err := splitHeader(b)
		if err != nil {
			fmt.Fprintf(w, "%s(%s) %#x", currentIndent, err.Error(), b)
			return err
		}
		fmt.Fprintf(w, "%s%v (%d):", currentIndent, tag, length)
		v := b[hdr:]
		if len(v) < length {
			fmt.Fprint(w, " (value truncated)")
			if len(v) > 0 {
				fmt.Fprintf(w, " %#x", v)
			}
			return NewStructural(ErrTruncated).Appendf("%s value truncated", tag)
		}
		v = v[:length]
		b = b[hdr+length:]

		if tag.Constructed() {
			if len(v) > 0 {
				fmt.Fprint(w, "\n")
				if err := Print(w, currentIndent+indent, indent, v); err != nil {
					return err
				}
			}
			continue
		}
		switch {
		case length == 0:
		case tag == TagInteger || tag == TagEnumerated:
			if i, err := ParseInt(v); err == nil {
				fmt.Fprintf(w, " %d", i)
			} else {
				fmt.Fprintf(w, " %#x", v)
			}
		case tag == TagGeneralString || tag == TagGeneralizedTime:
			fmt.Fprintf(w, " %q", v)
		default:
			fmt.Fprintf(w, " %#x", v)
		}
	}
	return nil
}

// PrintPrettyHex pretty prints BER as hex, one TLV per line, with the tag,
// length octets, and value in columns:
//
//	30 | 0c
//	  a0 | 03
//	    02 | 01 | 11
//	  a1 | 05
//	    04 | 03 | 010203
//
// If the input is invalid, the undecodable remainder is dumped as plain hex
// and no error is returned.
func PrintPrettyHex(w io.Writer, currentIndent, indent string, b []byte) error {
	first := true
	for len(b) > 0 {
		if !first {
			fmt.Fprint(w, "\n")
		}
		first = false

		tag, length, hdr, err := splitHeader(b)
		if err != nil {
			fmt.Fprintf(w, "%x", b)
			return nil
		}
		fmt.Fprintf(w, "%s%x | %x", currentIndent, b[:1], b[1:hdr])
		v := b[hdr:]
		if len(v) < length {
			if len(v) > 0 {
				fmt.Fprintf(w, "\n%x", v)
			}
			return nil
		}
		v = v[:length]
		b = b[hdr+length:]

		switch {
		case tag.Constructed() && length > 0:
			fmt.Fprint(w, "\n")
			if err := PrintPrettyHex(w, currentIndent+indent, indent, v); err != nil {
				return err
			}
		case length > 0:
			fmt.Fprintf(w, " | %x", v)
		}
	}
	return nil
}

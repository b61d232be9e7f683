package ber

import (
	"errors"
	"fmt"

	"github.com/ansel1/merry"
)

// Error classes.  Every decode error wraps one of these as its cause, so
// callers can classify failures with merry.Is without matching the specific
// sentinel.
var (
	// ErrStructural means the byte stream is not a well-formed message:
	// malformed TLV header, truncation, a tag the grammar does not allow in
	// the current state.  No partial object is returned.
	ErrStructural = errors.New("invalid message structure")

	// ErrConstraint means the structure was well formed but a value violated
	// a schema constraint, such as a message type outside the allowed set.
	ErrConstraint = errors.New("value constraint violated")
)

var (
	ErrNullTag          = errors.New("null tag")
	ErrHighTagNumber    = errors.New("multi-byte tags not supported")
	ErrIndefiniteLength = errors.New("indefinite lengths not supported")
	ErrLengthOverflow   = errors.New("length too large")
	ErrTLVOverflow      = errors.New("TLV overflows enclosing value")
	ErrUnexpectedTag    = errors.New("unexpected tag")
	ErrNullLength       = errors.New("zero length not allowed")
	ErrMaxDepthExceeded = errors.New("max nesting depth exceeded")
	ErrTrailingBytes    = errors.New("extra bytes after end of message")
	ErrTruncated        = errors.New("message truncated")
	ErrIncomplete       = errors.New("structure ended before required fields")

	ErrInvalidInteger   = errors.New("invalid integer encoding")
	ErrInvalidTime      = errors.New("invalid time encoding")
	ErrInvalidBitString = errors.New("invalid bit string encoding")
)

// NewStructural wraps sentinel as a structural decode error.  The result
// satisfies merry.Is for both the sentinel and ErrStructural.
func NewStructural(sentinel error) merry.Error {
	return merry.WrapSkipping(sentinel, 1).WithCause(ErrStructural)
}

// NewConstraint wraps sentinel as a constraint violation.  The result
// satisfies merry.Is for both the sentinel and ErrConstraint.
func NewConstraint(sentinel error) merry.Error {
	return merry.WrapSkipping(sentinel, 1).WithCause(ErrConstraint)
}

type errKey int

const (
	errKeyOffset errKey = iota
	errKeyState
	errKeyTag
)

func init() {
	merry.RegisterDetail("Offset", errKeyOffset)
	merry.RegisterDetail("State", errKeyState)
	merry.RegisterDetail("Tag", errKeyTag)
}

// ErrorOffset returns the stream offset recorded on a decode error, or -1.
func ErrorOffset(err error) int64 {
	v := merry.Value(err, errKeyOffset)
	switch t := v.(type) {
	case nil:
		return -1
	case int64:
		return t
	default:
		panic(fmt.Sprintf("offset attribute's value was wrong type, expected int64, got %T", v))
	}
}

// ErrorState returns the grammar state name recorded on a decode error, or "".
func ErrorState(err error) string {
	v := merry.Value(err, errKeyState)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		panic(fmt.Sprintf("state attribute's value was wrong type, expected string, got %T", v))
	}
}

// ErrorTag returns the tag recorded on a decode error, or 0 if none was set.
func ErrorTag(err error) Tag {
	v := merry.Value(err, errKeyTag)
	switch t := v.(type) {
	case nil:
		return Tag(0)
	case Tag:
		return t
	default:
		panic(fmt.Sprintf("tag attribute's value was wrong type, expected Tag, got %T", v))
	}
}

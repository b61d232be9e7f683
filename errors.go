package krb5

import (
	"errors"
	"fmt"

	"github.com/ansel1/merry"
)

func Is(err error, originals ...error) bool {
	return merry.Is(err, originals...)
}

func Details(err error) string {
	return merry.Details(err)
}

// Constraint violations: the message structure was valid BER but a field
// value is outside what the protocol allows.  Each wraps ber.ErrConstraint
// as its cause.
var (
	ErrInvalidPvno    = errors.New("pvno must be 5")
	ErrInvalidMsgType = errors.New("msg-type not allowed here")
	ErrInvalidTktVno  = errors.New("tkt-vno must be 5")
	ErrInvalidUsec    = errors.New("usec outside 0..999999")
)

// ErrEncodingSize means an encoder's computed length did not match the bytes
// it produced.  It indicates a bug in a ComputeLength implementation, not bad
// input.
var ErrEncodingSize = errors.New("encoded size disagrees with computed length")

// Stream framing errors.
var (
	ErrRecordTooLarge = errors.New("record length exceeds maximum")
	ErrReservedBit    = errors.New("reserved high bit set in record length")
)

type errKey int

const (
	errorKeyErrorCode errKey = iota
)

func init() {
	merry.RegisterDetail("Error Code", errorKeyErrorCode)
}

// WithErrorCode associates a protocol error code with err, for building a
// KRB-ERROR response from a failed request.
func WithErrorCode(err error, code ErrorCode) error {
	return merry.WithValue(err, errorKeyErrorCode, code)
}

// GetErrorCode returns the protocol error code associated with err, or
// KrbErrGeneric if none was set.
func GetErrorCode(err error) ErrorCode {
	v := merry.Value(err, errorKeyErrorCode)
	switch t := v.(type) {
	case nil:
		return KrbErrGeneric
	case ErrorCode:
		return t
	default:
		panic(fmt.Sprintf("err error code attribute's value was wrong type, expected ErrorCode, got %T", v))
	}
}

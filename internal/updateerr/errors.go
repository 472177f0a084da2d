// Package updateerr defines the structured error type shared by the update
// verification packages.
package updateerr

import (
	"errors"
	"strings"
)

// Kind is a stable category for programmatic error handling.
// Callers should branch on Kind rather than matching error strings.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindFormat
	KindUnsupportedAddressMode
	KindUnsupportedUpdateType
	KindUnsupportedIntegrityType
	KindMissingContentLength
	KindOverflow
	KindIncompleteInput
	KindCryptoInit
	KindSignatureInvalid
	KindDigestMismatch
)

var kindNames = [...]string{
	KindUnknown:                  "unknown",
	KindFormat:                   "format",
	KindUnsupportedAddressMode:   "unsupported address mode",
	KindUnsupportedUpdateType:    "unsupported update type",
	KindUnsupportedIntegrityType: "unsupported integrity type",
	KindMissingContentLength:     "missing content length",
	KindOverflow:                 "implicit data overflow",
	KindIncompleteInput:          "incomplete input",
	KindCryptoInit:               "crypto init",
	KindSignatureInvalid:         "signature invalid",
	KindDigestMismatch:           "digest mismatch",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// ErrIllegalState is returned when a verifier session is used out of order
// or after it has reached a terminal state. It signals a programming error,
// not a verification outcome.
var ErrIllegalState = errors.New("docupdate: illegal session state")

// Error is the structured error for every verification, format and
// configuration failure. Err carries the low-level cause, if any.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("docupdate: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New returns an *Error without a cause.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap returns an *Error carrying cause.
func Wrap(kind Kind, op, msg string, cause error) error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return KindUnknown
	}
	return e.Kind
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

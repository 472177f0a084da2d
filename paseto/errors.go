package paseto

import (
	"errors"

	"github.com/meigma/docupdate/internal/updateerr"
)

// Error kinds re-exported from updateerr.
type (
	Error = updateerr.Error
	Kind  = updateerr.Kind
)

const (
	KindFormat           = updateerr.KindFormat
	KindOverflow         = updateerr.KindOverflow
	KindIncompleteInput  = updateerr.KindIncompleteInput
	KindCryptoInit       = updateerr.KindCryptoInit
	KindSignatureInvalid = updateerr.KindSignatureInvalid
)

var (
	// ErrIllegalState is returned when a Session operation is called out of order
	// or after the session reached Verified or Failed.
	ErrIllegalState = updateerr.ErrIllegalState

	// ErrLengthRange is returned when a PAE length does not fit in 63 bits.
	ErrLengthRange = errors.New("paseto: length exceeds 2^63-1")
)

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	return updateerr.IsKind(err, kind)
}

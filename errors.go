package docupdate

import "github.com/meigma/docupdate/internal/updateerr"

// Error is returned for every verification, format and configuration
// failure. Use errors.As to inspect its Kind, or IsKind.
type Error = updateerr.Error

// Kind categorizes an Error.
type Kind = updateerr.Kind

// Error kinds.
const (
	KindFormat                   = updateerr.KindFormat
	KindUnsupportedAddressMode   = updateerr.KindUnsupportedAddressMode
	KindUnsupportedUpdateType    = updateerr.KindUnsupportedUpdateType
	KindUnsupportedIntegrityType = updateerr.KindUnsupportedIntegrityType
	KindMissingContentLength     = updateerr.KindMissingContentLength
	KindOverflow                 = updateerr.KindOverflow
	KindIncompleteInput          = updateerr.KindIncompleteInput
	KindCryptoInit               = updateerr.KindCryptoInit
	KindSignatureInvalid         = updateerr.KindSignatureInvalid
	KindDigestMismatch           = updateerr.KindDigestMismatch
)

// ErrIllegalState is returned when a verifier session is misused.
var ErrIllegalState = updateerr.ErrIllegalState

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	return updateerr.IsKind(err, kind)
}

// KindOf returns the Kind of err, or zero if err is not an *Error.
func KindOf(err error) Kind {
	return updateerr.KindOf(err)
}

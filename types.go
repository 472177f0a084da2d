package docupdate

import (
	"github.com/opencontainers/go-digest"

	"github.com/meigma/docupdate/locator"
)

// AddressMode selects how an update is addressed in the repository.
type AddressMode = locator.AddressMode

// Address modes re-exported from locator.
const (
	AddressContentDigest = locator.ContentDigest
	AddressDocumentID    = locator.DocumentID
)

// UpdateType names the kind of update a document expects.
type UpdateType string

// UpdateIncremental is the only supported update type: bytes appended to the
// original document.
const UpdateIncremental UpdateType = "Incremental"

// CertDataType names the kind of key carried in an integrity block.
type CertDataType string

// CertEd25519 is the only supported integrity scheme.
const CertEd25519 CertDataType = "Ed25519"

// Encoding describes how the repository stores the update body.
type Encoding string

const (
	// EncodingIdentity means the body is appended as received.
	EncodingIdentity Encoding = "identity"
	// EncodingZstd means the body is zstd-compressed and is decoded after
	// verification. The signature covers the compressed bytes.
	EncodingZstd Encoding = "zstd"
)

// Descriptor is the update configuration read from document metadata.
type Descriptor struct {
	// Repo is the repository base URL.
	Repo string

	// AddressMode selects the URL layout under Repo.
	AddressMode AddressMode

	// UpdateType must be UpdateIncremental.
	UpdateType UpdateType

	// Integrity, when set, requires the update to carry a valid signature.
	Integrity *Integrity

	// Encoding of the body on the repository. Defaults to EncodingIdentity.
	Encoding Encoding

	// UpdateDigest, when set, is the expected digest of the transferred body.
	UpdateDigest digest.Digest
}

// Integrity describes the key an update must be signed with.
type Integrity struct {
	CertDataType CertDataType

	// PreSharedKey is the public key as raw bytes, PKIX DER or PEM, or an
	// OpenSSH authorized key line.
	PreSharedKey []byte
}

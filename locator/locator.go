// Package locator derives the address an update is fetched from.
package locator

import (
	_ "crypto/sha512" // registers SHA-384 for go-digest
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/docupdate/document"
	"github.com/meigma/docupdate/internal/updateerr"
)

// AddressMode selects how an update is addressed in the repository.
type AddressMode string

const (
	// ContentDigest addresses updates by the SHA-384 of the original document.
	ContentDigest AddressMode = "ContentDigest"
	// DocumentID addresses updates by the document's trailer identifiers.
	DocumentID AddressMode = "DocumentID"
)

var segmentEncoding = base64.RawURLEncoding

// Locator resolves update URLs for one document. The document digest is
// computed on first use and cached, so a Locator should not outlive the
// update attempt it serves.
type Locator struct {
	doc    document.Document
	digest digest.Digest
}

// New returns a Locator for doc.
func New(doc document.Document) *Locator {
	return &Locator{doc: doc}
}

// URL returns the update URL under repo for the given address mode.
func (l *Locator) URL(repo string, mode AddressMode) (string, error) {
	repo = strings.TrimSuffix(repo, "/")
	switch mode {
	case ContentDigest:
		sum, err := l.sum()
		if err != nil {
			return "", err
		}
		return repo + "/hash/" + segmentEncoding.EncodeToString(sum), nil
	case DocumentID:
		ids := l.doc.TrailerIDs()
		if len(ids) < 2 {
			return "", updateerr.New(updateerr.KindFormat, "locate update",
				fmt.Sprintf("document has %d trailer IDs, need 2", len(ids)))
		}
		return repo + "/docId/" + segmentEncoding.EncodeToString(ids[0]) +
			"/" + segmentEncoding.EncodeToString(ids[1]), nil
	default:
		return "", updateerr.New(updateerr.KindUnsupportedAddressMode, "locate update",
			fmt.Sprintf("%q", string(mode)))
	}
}

// Digest returns the SHA-384 digest of the original document bytes.
func (l *Locator) Digest() (digest.Digest, error) {
	if l.digest != "" {
		return l.digest, nil
	}
	rc, err := l.doc.Open()
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer rc.Close()

	d, err := digest.SHA384.FromReader(rc)
	if err != nil {
		return "", fmt.Errorf("digest document: %w", err)
	}
	l.digest = d
	return d, nil
}

func (l *Locator) sum() ([]byte, error) {
	d, err := l.Digest()
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(d.Encoded())
}

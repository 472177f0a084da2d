package docupdate

import (
	"crypto/ed25519"
	_ "crypto/sha512" // sha384 digests
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/docupdate/document"
	"github.com/meigma/docupdate/internal/updateerr"
)

// Metadata keys.
const (
	keyRepo         = "Repo"
	keyAddressMode  = "AddressMode"
	keyUpdateType   = "UpdateType"
	keyIntegrity    = "Integrity"
	keyCertDataType = "CertDataType"
	keyPreSharedKey = "PreSharedKey"
	keyEncoding     = "Encoding"
	keyUpdateDigest = "UpdateDigest"
)

// ParseDescriptor reads the update descriptor from a metadata dictionary.
//
// Address mode, update type and cert data type are kept as given; values this
// package cannot handle are rejected when the update is downloaded, with the
// matching error kind.
func ParseDescriptor(md document.Metadata) (*Descriptor, error) {
	if md == nil {
		return nil, formatErr("document has no metadata")
	}

	var (
		d   Descriptor
		err error
	)
	if d.Repo, err = requiredString(md, keyRepo); err != nil {
		return nil, err
	}
	mode, err := requiredString(md, keyAddressMode)
	if err != nil {
		return nil, err
	}
	d.AddressMode = AddressMode(mode)
	updateType, err := requiredString(md, keyUpdateType)
	if err != nil {
		return nil, err
	}
	d.UpdateType = UpdateType(updateType)

	enc, err := optionalString(md, keyEncoding)
	if err != nil {
		return nil, err
	}
	switch Encoding(enc) {
	case "", EncodingIdentity:
		d.Encoding = EncodingIdentity
	case EncodingZstd:
		d.Encoding = EncodingZstd
	default:
		return nil, formatErr(fmt.Sprintf("unsupported %s %q", keyEncoding, enc))
	}

	dgst, err := optionalString(md, keyUpdateDigest)
	if err != nil {
		return nil, err
	}
	if dgst != "" {
		d.UpdateDigest, err = digest.Parse(dgst)
		if err != nil {
			return nil, updateerr.Wrap(updateerr.KindFormat, "parse descriptor", keyUpdateDigest, err)
		}
	}

	if raw, ok := md[keyIntegrity]; ok && raw != nil {
		integrity, err := parseIntegrity(raw)
		if err != nil {
			return nil, err
		}
		d.Integrity = integrity
	}
	return &d, nil
}

func parseIntegrity(raw any) (*Integrity, error) {
	var block map[string]any
	switch v := raw.(type) {
	case map[string]any:
		block = v
	case document.Metadata:
		block = v
	default:
		return nil, formatErr(fmt.Sprintf("%s is %T, want a dictionary", keyIntegrity, raw))
	}

	certType, err := optionalString(block, keyCertDataType)
	if err != nil {
		return nil, err
	}
	key, err := keyBytes(block[keyPreSharedKey])
	if err != nil {
		return nil, err
	}
	return &Integrity{CertDataType: CertDataType(certType), PreSharedKey: key}, nil
}

// keyBytes accepts raw bytes, or a string holding either a textual key
// (PEM, OpenSSH), base64, or the raw key itself.
func keyBytes(v any) ([]byte, error) {
	switch k := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return k, nil
	case string:
		trimmed := strings.TrimSpace(k)
		for _, prefix := range []string{"-----BEGIN", "ssh-", "ecdsa-sha2-", "sk-"} {
			if strings.HasPrefix(trimmed, prefix) {
				return []byte(trimmed), nil
			}
		}
		b, err := base64.StdEncoding.DecodeString(trimmed)
		if err != nil {
			// yaml !!binary values arrive already decoded.
			if len(k) == ed25519.PublicKeySize {
				return []byte(k), nil
			}
			return nil, updateerr.Wrap(updateerr.KindFormat, "parse descriptor", keyPreSharedKey, err)
		}
		return b, nil
	default:
		return nil, formatErr(fmt.Sprintf("%s is %T", keyPreSharedKey, v))
	}
}

func requiredString(md map[string]any, key string) (string, error) {
	s, err := optionalString(md, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", formatErr("missing " + key)
	}
	return s, nil
}

func optionalString(md map[string]any, key string) (string, error) {
	v, ok := md[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", formatErr(fmt.Sprintf("%s is %T, want a string", key, v))
	}
	return s, nil
}

func formatErr(msg string) error {
	return updateerr.New(updateerr.KindFormat, "parse descriptor", msg)
}

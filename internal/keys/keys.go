// Package keys loads Ed25519 public keys from the encodings a document may
// carry them in.
package keys

import (
	"bytes"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// ErrUnsupportedKey is returned when the key is well formed but not Ed25519.
var ErrUnsupportedKey = errors.New("keys: not an ed25519 public key")

// ParsePublicKey accepts a raw 32-byte key, a PKIX (SubjectPublicKeyInfo)
// DER or PEM block, or an OpenSSH authorized_keys line.
func ParsePublicKey(data []byte) (ed25519.PublicKey, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(data) == ed25519.PublicKeySize:
		return ed25519.PublicKey(bytes.Clone(data)), nil
	case len(trimmed) == 0:
		return nil, errors.New("keys: empty public key")
	case bytes.HasPrefix(trimmed, []byte("-----BEGIN")):
		return parsePEM(trimmed)
	case isAuthorizedKey(trimmed):
		return parseAuthorizedKey(trimmed)
	default:
		return parsePKIX(data)
	}
}

func isAuthorizedKey(b []byte) bool {
	for _, prefix := range []string{"ssh-", "ecdsa-sha2-", "sk-"} {
		if bytes.HasPrefix(b, []byte(prefix)) {
			return true
		}
	}
	return false
}

func parsePEM(data []byte) (ed25519.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("keys: invalid PEM block")
	}
	if block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("keys: unexpected PEM type %q", block.Type)
	}
	return parsePKIX(block.Bytes)
}

func parsePKIX(der []byte) (ed25519.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("keys: parse PKIX public key: %w", err)
	}
	key, ok := pub.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedKey, pub)
	}
	return key, nil
}

func parseAuthorizedKey(line []byte) (ed25519.PublicKey, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey(line)
	if err != nil {
		return nil, fmt.Errorf("keys: parse authorized key: %w", err)
	}
	cpk, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, pub.Type())
	}
	key, ok := cpk.CryptoPublicKey().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, pub.Type())
	}
	return key, nil
}

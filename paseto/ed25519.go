package paseto

import (
	"crypto/ed25519"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"hash"

	"filippo.io/edwards25519"
)

// streamVerifier checks an Ed25519 signature over a message that is written
// to it in pieces. PureEdDSA hashes R || A || M in a single pass, so only the
// SHA-512 state has to be kept while M streams in.
type streamVerifier struct {
	a *edwards25519.Point
	h hash.Hash
}

func newStreamVerifier(pub ed25519.PublicKey, sig []byte) (*streamVerifier, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("bad public key length %d", len(pub))
	}
	if len(sig) != ed25519.SignatureSize {
		return nil, fmt.Errorf("bad signature length %d", len(sig))
	}
	a, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	h := sha512.New()
	h.Write(sig[:32])
	h.Write(pub)
	return &streamVerifier{a: a, h: h}, nil
}

// Write implements io.Writer. It never fails.
func (v *streamVerifier) Write(p []byte) (int, error) {
	return v.h.Write(p)
}

// verify finalizes the hash and reports whether sig is valid for everything
// written so far.
func (v *streamVerifier) verify(sig []byte) bool {
	if len(sig) != ed25519.SignatureSize || sig[63]&224 != 0 {
		return false
	}

	digest := make([]byte, 0, sha512.Size)
	digest = v.h.Sum(digest)
	k, err := edwards25519.NewScalar().SetUniformBytes(digest)
	if err != nil {
		return false
	}
	s, err := edwards25519.NewScalar().SetCanonicalBytes(sig[32:])
	if err != nil {
		return false
	}

	// [S]B = R + [k]A  <=>  [k](-A) + [S]B = R
	minusA := new(edwards25519.Point).Negate(v.a)
	r := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(k, minusA, s)
	return subtle.ConstantTimeCompare(sig[:32], r.Bytes()) == 1
}

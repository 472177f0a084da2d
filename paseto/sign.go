package paseto

import (
	"crypto/ed25519"
	"fmt"

	"github.com/meigma/docupdate/internal/updateerr"
)

// Sign returns a v4.public token carrying message, signed together with the
// implicit assertion. A repository publishes the token next to the update
// body, which is the implicit assertion.
func Sign(priv ed25519.PrivateKey, message, implicit []byte) (string, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return "", updateerr.New(updateerr.KindCryptoInit, "sign",
			fmt.Sprintf("bad private key length %d", len(priv)))
	}
	m2, err := PAE([]byte(Header), message, nil, implicit)
	if err != nil {
		return "", err
	}
	sig := ed25519.Sign(priv, m2)

	payload := make([]byte, 0, len(message)+len(sig))
	payload = append(payload, message...)
	payload = append(payload, sig...)
	return Header + payloadEncoding.EncodeToString(payload), nil
}

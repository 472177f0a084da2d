package paseto

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/meigma/docupdate/internal/updateerr"
)

const (
	// Version is the only supported token version.
	Version = "v4"
	// Purpose is the only supported token purpose.
	Purpose = "public"
	// Header is the token prefix and the first PAE piece.
	Header = Version + "." + Purpose + "."

	// SignatureSize is the length of the trailing signature in a payload.
	SignatureSize = ed25519.SignatureSize
)

var payloadEncoding = base64.RawURLEncoding.Strict()

// Token is a decoded v4.public token.
type Token struct {
	Version string
	Purpose string
	Payload []byte
}

// Message returns the payload without its trailing signature.
func (t *Token) Message() []byte {
	return t.Payload[:len(t.Payload)-SignatureSize]
}

// Signature returns the trailing SignatureSize bytes of the payload.
func (t *Token) Signature() []byte {
	return t.Payload[len(t.Payload)-SignatureSize:]
}

// Decode parses s as "<version>.<purpose>.<payload>". Footers are rejected.
func Decode(s string) (*Token, error) {
	parts := strings.Split(s, ".")
	switch {
	case len(parts) == 4:
		return nil, updateerr.New(updateerr.KindFormat, "decode token", "footers are not supported")
	case len(parts) != 3:
		return nil, updateerr.New(updateerr.KindFormat, "decode token",
			fmt.Sprintf("expected 3 segments, got %d", len(parts)))
	}
	if parts[0] != Version {
		return nil, updateerr.New(updateerr.KindFormat, "decode token",
			fmt.Sprintf("unsupported version %q", parts[0]))
	}
	if parts[1] != Purpose {
		return nil, updateerr.New(updateerr.KindFormat, "decode token",
			fmt.Sprintf("unsupported purpose %q", parts[1]))
	}
	payload, err := payloadEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, updateerr.Wrap(updateerr.KindFormat, "decode token", "invalid payload encoding", err)
	}
	if len(payload) < SignatureSize {
		return nil, updateerr.New(updateerr.KindFormat, "decode token",
			fmt.Sprintf("payload is %d bytes, shorter than a signature", len(payload)))
	}
	return &Token{Version: parts[0], Purpose: parts[1], Payload: payload}, nil
}

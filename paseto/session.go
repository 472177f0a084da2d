package paseto

import (
	"crypto/ed25519"
	"fmt"

	"github.com/meigma/docupdate/internal/updateerr"
)

// State is the lifecycle state of a Session.
type State uint8

const (
	StateCreated State = iota
	StateStreaming
	StateVerified
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStreaming:
		return "streaming"
	case StateVerified:
		return "verified"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Session verifies one token against an implicit assertion that is streamed
// in after Init. The running hash cannot be rewound, so any boundary
// violation fails the session permanently.
//
// A Session belongs to a single update attempt and is not safe for
// concurrent use.
type Session struct {
	state    State
	token    *Token
	declared uint64
	consumed uint64
	verifier *streamVerifier
}

// NewSession returns a session in the Created state.
func NewSession() *Session {
	return &Session{}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Declared returns the implicit length announced to Init.
func (s *Session) Declared() uint64 {
	return s.declared
}

// Consumed returns the number of implicit bytes fed so far.
func (s *Session) Consumed() uint64 {
	return s.consumed
}

// Init decodes token, binds the session to pub and primes the running
// signature context with every PAE piece except the implicit content, which
// must follow through UpdateImplicit. Init may run once; on failure the
// session is Failed.
func (s *Session) Init(token string, implicitLen uint64, pub ed25519.PublicKey) error {
	if s.state != StateCreated {
		return fmt.Errorf("init in state %s: %w", s.state, ErrIllegalState)
	}
	s.state = StateFailed

	tok, err := Decode(token)
	if err != nil {
		return err
	}
	if _, err := LE64(implicitLen); err != nil {
		return updateerr.Wrap(updateerr.KindFormat, "init", "implicit length", err)
	}
	v, err := newStreamVerifier(pub, tok.Signature())
	if err != nil {
		return updateerr.Wrap(updateerr.KindCryptoInit, "init", "", err)
	}

	w := NewPAEWriter(v)
	if err := w.WriteCount(4); err != nil {
		return err
	}
	if err := w.WritePiece([]byte(Header)); err != nil {
		return err
	}
	if err := w.WritePiece(tok.Message()); err != nil {
		return err
	}
	if err := w.WritePiece(nil); err != nil {
		return err
	}
	if err := w.WriteLength(implicitLen); err != nil {
		return err
	}

	s.token = tok
	s.declared = implicitLen
	s.verifier = v
	s.state = StateStreaming
	return nil
}

// UpdateImplicit feeds the next chunk of the implicit assertion. A chunk that
// would take the total past the declared length fails the session before any
// of it reaches the running context.
func (s *Session) UpdateImplicit(p []byte) error {
	if s.state != StateStreaming {
		return fmt.Errorf("update in state %s: %w", s.state, ErrIllegalState)
	}
	if uint64(len(p)) > s.declared-s.consumed {
		s.fail()
		return updateerr.New(updateerr.KindOverflow, "update implicit",
			fmt.Sprintf("%d bytes after %d of %d declared", len(p), s.consumed, s.declared))
	}
	_, _ = s.verifier.Write(p) //nolint:errcheck // hash writes never fail
	s.consumed += uint64(len(p))
	return nil
}

// Verify finalizes the signature check and returns the token message. It
// requires exactly the declared number of implicit bytes to have been fed;
// otherwise the session is left untouched and an IncompleteInput error is
// returned.
func (s *Session) Verify() ([]byte, error) {
	if s.state != StateStreaming {
		return nil, fmt.Errorf("verify in state %s: %w", s.state, ErrIllegalState)
	}
	if s.consumed != s.declared {
		return nil, updateerr.New(updateerr.KindIncompleteInput, "verify",
			fmt.Sprintf("consumed %d of %d declared bytes", s.consumed, s.declared))
	}
	if !s.verifier.verify(s.token.Signature()) {
		s.fail()
		return nil, updateerr.New(updateerr.KindSignatureInvalid, "verify", "")
	}
	s.state = StateVerified
	msg := s.token.Message()
	s.verifier = nil
	return msg, nil
}

// Abort fails the session. It is used when the attempt is abandoned mid-stream
// and is a no-op once the session is Verified or Failed.
func (s *Session) Abort() {
	if s.state == StateVerified {
		return
	}
	s.fail()
}

func (s *Session) fail() {
	s.state = StateFailed
	s.verifier = nil
}

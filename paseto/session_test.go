package paseto

import (
	"crypto/ed25519"
	"crypto/rand"
	"math"
	mrand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	pub      ed25519.PublicKey
	priv     ed25519.PrivateKey
	message  []byte
	implicit []byte
	token    string
}

func newFixture(t *testing.T, message, implicit []byte) fixture {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	tok, err := Sign(priv, message, implicit)
	require.NoError(t, err)
	return fixture{pub: pub, priv: priv, message: message, implicit: implicit, token: tok}
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func feed(t *testing.T, s *Session, data []byte, sizes func() int) {
	t.Helper()
	for len(data) > 0 {
		n := min(max(sizes(), 1), len(data))
		require.NoError(t, s.UpdateImplicit(data[:n]))
		data = data[n:]
	}
}

func TestSessionVerifiesAnyChunking(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte(`{"update":"2"}`), randomBytes(t, 4099))
	rng := mrand.New(mrand.NewPCG(1, 2))

	chunkings := map[string]func() int{
		"one byte":    func() int { return 1 },
		"all at once": func() int { return len(fx.implicit) },
		"fixed 512":   func() int { return 512 },
		"random":      func() int { return rng.IntN(700) },
	}
	for name, sizes := range chunkings {
		s := NewSession()
		require.NoError(t, s.Init(fx.token, uint64(len(fx.implicit)), fx.pub), name)
		feed(t, s, fx.implicit, sizes)
		msg, err := s.Verify()
		require.NoError(t, err, name)
		assert.Equal(t, fx.message, msg, name)
		assert.Equal(t, StateVerified, s.State(), name)
	}
}

func TestSessionEmptyImplicit(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("m"), nil)
	s := NewSession()
	require.NoError(t, s.Init(fx.token, 0, fx.pub))
	msg, err := s.Verify()
	require.NoError(t, err)
	assert.Equal(t, []byte("m"), msg)
}

func TestStreamVerifierMatchesStdlib(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("message"), randomBytes(t, 300))
	m2, err := PAE([]byte(Header), fx.message, nil, fx.implicit)
	require.NoError(t, err)

	tok, err := Decode(fx.token)
	require.NoError(t, err)
	require.True(t, ed25519.Verify(fx.pub, m2, tok.Signature()))

	v, err := newStreamVerifier(fx.pub, tok.Signature())
	require.NoError(t, err)
	_, _ = v.Write(m2[:10])
	_, _ = v.Write(m2[10:])
	assert.True(t, v.verify(tok.Signature()))
}

func TestSessionRejectsFlippedSignatureBits(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("message"), randomBytes(t, 64))
	tok, err := Decode(fx.token)
	require.NoError(t, err)
	sigStart := len(tok.Message())

	for bit := range SignatureSize * 8 {
		payload := append([]byte(nil), tok.Payload...)
		payload[sigStart+bit/8] ^= 1 << (bit % 8)
		forged := Header + payloadEncoding.EncodeToString(payload)

		s := NewSession()
		require.NoError(t, s.Init(forged, uint64(len(fx.implicit)), fx.pub), "bit %d", bit)
		require.NoError(t, s.UpdateImplicit(fx.implicit))
		_, err := s.Verify()
		require.True(t, IsKind(err, KindSignatureInvalid), "bit %d: %v", bit, err)
		assert.Equal(t, StateFailed, s.State())
	}
}

func TestSessionRejectsFlippedImplicitBits(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("message"), randomBytes(t, 40))
	for bit := range len(fx.implicit) * 8 {
		tampered := append([]byte(nil), fx.implicit...)
		tampered[bit/8] ^= 1 << (bit % 8)

		s := NewSession()
		require.NoError(t, s.Init(fx.token, uint64(len(tampered)), fx.pub))
		require.NoError(t, s.UpdateImplicit(tampered))
		_, err := s.Verify()
		require.True(t, IsKind(err, KindSignatureInvalid), "bit %d: %v", bit, err)
	}
}

func TestSessionRejectsWrongKey(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("message"), []byte("body"))
	other, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	s := NewSession()
	require.NoError(t, s.Init(fx.token, 4, other))
	require.NoError(t, s.UpdateImplicit(fx.implicit))
	_, err = s.Verify()
	assert.True(t, IsKind(err, KindSignatureInvalid))
}

func TestSessionIncompleteInput(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("message"), []byte("0123456789"))
	s := NewSession()
	require.NoError(t, s.Init(fx.token, uint64(len(fx.implicit)), fx.pub))
	assert.Equal(t, uint64(10), s.Declared())
	require.NoError(t, s.UpdateImplicit(fx.implicit[:9]))

	_, err := s.Verify()
	require.True(t, IsKind(err, KindIncompleteInput), "got %v", err)
	assert.Equal(t, StateStreaming, s.State())
	assert.Equal(t, uint64(9), s.Consumed())

	require.NoError(t, s.UpdateImplicit(fx.implicit[9:]))
	msg, err := s.Verify()
	require.NoError(t, err)
	assert.Equal(t, fx.message, msg)
}

func TestSessionOverflowFailsAtFeed(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("message"), []byte("0123456789"))
	s := NewSession()
	require.NoError(t, s.Init(fx.token, uint64(len(fx.implicit)), fx.pub))
	require.NoError(t, s.UpdateImplicit(fx.implicit[:6]))

	err := s.UpdateImplicit(fx.implicit[6:])
	require.NoError(t, err)
	err = s.UpdateImplicit([]byte{0})
	require.True(t, IsKind(err, KindOverflow), "got %v", err)
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, uint64(10), s.Consumed())

	require.ErrorIs(t, s.UpdateImplicit(nil), ErrIllegalState)
	_, err = s.Verify()
	require.ErrorIs(t, err, ErrIllegalState)
	require.ErrorIs(t, s.Init(fx.token, 10, fx.pub), ErrIllegalState)
}

func TestSessionOverflowSingleChunk(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("message"), []byte("abc"))
	s := NewSession()
	require.NoError(t, s.Init(fx.token, 3, fx.pub))
	err := s.UpdateImplicit([]byte("abcd"))
	require.True(t, IsKind(err, KindOverflow))
	assert.Zero(t, s.Consumed())
}

func TestSessionStateMachine(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("message"), []byte("abc"))

	s := NewSession()
	assert.Equal(t, StateCreated, s.State())
	require.ErrorIs(t, s.UpdateImplicit([]byte("a")), ErrIllegalState)
	_, err := s.Verify()
	require.ErrorIs(t, err, ErrIllegalState)

	require.NoError(t, s.Init(fx.token, 3, fx.pub))
	require.ErrorIs(t, s.Init(fx.token, 3, fx.pub), ErrIllegalState, "init runs once")
	require.NoError(t, s.UpdateImplicit([]byte("abc")))
	_, err = s.Verify()
	require.NoError(t, err)

	require.ErrorIs(t, s.UpdateImplicit(nil), ErrIllegalState)
	_, err = s.Verify()
	require.ErrorIs(t, err, ErrIllegalState)
	s.Abort()
	assert.Equal(t, StateVerified, s.State())
}

func TestSessionAbort(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("message"), []byte("abc"))
	s := NewSession()
	require.NoError(t, s.Init(fx.token, 3, fx.pub))
	require.NoError(t, s.UpdateImplicit([]byte("a")))
	s.Abort()
	assert.Equal(t, StateFailed, s.State())
	require.ErrorIs(t, s.UpdateImplicit([]byte("bc")), ErrIllegalState)
}

func TestSessionInitFailures(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, []byte("message"), []byte("abc"))

	t.Run("format before crypto", func(t *testing.T) {
		t.Parallel()
		s := NewSession()
		err := s.Init("v2.public.AAAA", 3, ed25519.PublicKey{1, 2})
		require.True(t, IsKind(err, KindFormat), "got %v", err)
		assert.Equal(t, StateFailed, s.State())
	})
	t.Run("bad key length", func(t *testing.T) {
		t.Parallel()
		s := NewSession()
		err := s.Init(fx.token, 3, ed25519.PublicKey{1, 2, 3})
		require.True(t, IsKind(err, KindCryptoInit), "got %v", err)
		assert.Equal(t, StateFailed, s.State())
	})
	t.Run("length out of range", func(t *testing.T) {
		t.Parallel()
		s := NewSession()
		err := s.Init(fx.token, math.MaxInt64+1, fx.pub)
		require.ErrorIs(t, err, ErrLengthRange)
		assert.True(t, IsKind(err, KindFormat))
	})
}

func TestSignRejectsBadKey(t *testing.T) {
	t.Parallel()

	_, err := Sign(ed25519.PrivateKey{1}, nil, nil)
	assert.True(t, IsKind(err, KindCryptoInit))
}

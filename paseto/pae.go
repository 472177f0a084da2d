package paseto

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/meigma/docupdate/internal/updateerr"
)

// LE64 encodes n as 8 little-endian bytes. Values that do not fit in 63 bits
// are rejected with ErrLengthRange.
func LE64(n uint64) ([8]byte, error) {
	var out [8]byte
	if n > math.MaxInt64 {
		return out, ErrLengthRange
	}
	binary.LittleEndian.PutUint64(out[:], n)
	return out, nil
}

// PAE returns the pre-authentication encoding of pieces.
func PAE(pieces ...[]byte) ([]byte, error) {
	size := 8
	for _, p := range pieces {
		size += 8 + len(p)
	}
	buf := &sliceWriter{b: make([]byte, 0, size)}
	w := NewPAEWriter(buf)
	if err := w.WriteCount(uint64(len(pieces))); err != nil {
		return nil, err
	}
	for _, p := range pieces {
		if err := w.WritePiece(p); err != nil {
			return nil, err
		}
	}
	return buf.b, nil
}

// PAEWriter emits a pre-authentication encoding incrementally. A piece may be
// written whole with WritePiece, or announced with WriteLength and then
// streamed with Write.
type PAEWriter struct {
	w io.Writer
}

// NewPAEWriter returns a PAEWriter that writes to w.
func NewPAEWriter(w io.Writer) *PAEWriter {
	return &PAEWriter{w: w}
}

// WriteCount writes the leading piece count.
func (p *PAEWriter) WriteCount(n uint64) error {
	return p.writeLE64(n)
}

// WriteLength writes the length prefix of a piece whose content follows.
func (p *PAEWriter) WriteLength(n uint64) error {
	return p.writeLE64(n)
}

// WritePiece writes a length prefix followed by b.
func (p *PAEWriter) WritePiece(b []byte) error {
	if err := p.writeLE64(uint64(len(b))); err != nil {
		return err
	}
	_, err := p.w.Write(b)
	return err
}

// Write passes piece content through to the underlying writer.
func (p *PAEWriter) Write(b []byte) (int, error) {
	return p.w.Write(b)
}

func (p *PAEWriter) writeLE64(n uint64) error {
	enc, err := LE64(n)
	if err != nil {
		return updateerr.Wrap(updateerr.KindFormat, "pae", "", err)
	}
	_, err = p.w.Write(enc[:])
	return err
}

type sliceWriter struct {
	b []byte
}

func (s *sliceWriter) Write(p []byte) (int, error) {
	s.b = append(s.b, p...)
	return len(p), nil
}

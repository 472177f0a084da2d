// Package document provides the document model consumed by the updater: a
// metadata dictionary, the trailer identifiers and the original bytes.
package document

import (
	"bytes"
	"io"
)

// Metadata is a document's metadata dictionary. Nested dictionaries are
// map[string]any as well.
type Metadata map[string]any

// Document is the base file an update is appended to.
type Document interface {
	// Metadata returns the metadata dictionary, or nil if the document has none.
	Metadata() Metadata

	// TrailerIDs returns the trailer identifier strings, usually two.
	TrailerIDs() [][]byte

	// Open returns a reader over the full original bytes. Each call starts
	// from the beginning.
	Open() (io.ReadCloser, error)
}

// Memory is a Document held in memory.
type Memory struct {
	data     []byte
	metadata Metadata
	ids      [][]byte
}

// NewMemory returns a Document over data. If ids is empty, trailer IDs are
// scanned from data.
func NewMemory(data []byte, md Metadata, ids ...[]byte) *Memory {
	if len(ids) == 0 {
		ids = ScanTrailerIDs(data)
	}
	return &Memory{data: data, metadata: md, ids: ids}
}

func (m *Memory) Metadata() Metadata   { return m.metadata }
func (m *Memory) TrailerIDs() [][]byte { return m.ids }

func (m *Memory) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

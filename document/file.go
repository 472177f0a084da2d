package document

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// trailerScanSize bounds how much of the file tail is searched for /ID.
const trailerScanSize = 64 << 10

// File is a Document backed by a file on disk.
type File struct {
	path     string
	metadata Metadata
	ids      [][]byte
}

// Option configures a File.
type Option func(*fileConfig)

type fileConfig struct {
	metadataPath string
	metadata     Metadata
	ids          [][]byte
}

// WithMetadataFile loads the metadata dictionary from a YAML file.
func WithMetadataFile(path string) Option {
	return func(c *fileConfig) {
		c.metadataPath = path
	}
}

// WithMetadata sets the metadata dictionary directly.
func WithMetadata(md Metadata) Option {
	return func(c *fileConfig) {
		c.metadata = md
	}
}

// WithTrailerIDs overrides trailer IDs scanned from the file.
func WithTrailerIDs(ids ...[]byte) Option {
	return func(c *fileConfig) {
		c.ids = ids
	}
}

// OpenFile returns a Document for the file at path.
func OpenFile(path string, opts ...Option) (*File, error) {
	var cfg fileConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	f := &File{path: path, metadata: cfg.metadata, ids: cfg.ids}
	if cfg.metadataPath != "" {
		md, err := LoadMetadata(cfg.metadataPath)
		if err != nil {
			return nil, err
		}
		f.metadata = md
	}
	if len(f.ids) == 0 {
		tail, err := readTail(path, trailerScanSize)
		if err != nil {
			return nil, err
		}
		f.ids = ScanTrailerIDs(tail)
	}
	return f, nil
}

func (f *File) Metadata() Metadata   { return f.metadata }
func (f *File) TrailerIDs() [][]byte { return f.ids }

func (f *File) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// LoadMetadata reads a YAML metadata dictionary.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var md Metadata
	if err := yaml.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	if md == nil {
		return nil, errors.New("metadata file is empty")
	}
	return normalize(md), nil
}

// normalize rewrites nested dictionaries, which yaml decodes as Metadata,
// to map[string]any.
func normalize(md Metadata) Metadata {
	for k, v := range md {
		md[k] = normalizeValue(v)
	}
	return md
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case Metadata:
		return map[string]any(normalize(t))
	case map[string]any:
		return map[string]any(normalize(t))
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	default:
		return v
	}
}

func readTail(path string, n int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	off := max(info.Size()-n, 0)
	buf := make([]byte, info.Size()-off)
	if _, err := f.ReadAt(buf, off); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf, nil
}

// Package spool provides an attempt-scoped temporary file that holds an
// update body until it is either committed or discarded.
package spool

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const defaultDirPerm = 0o700

// Spool is a temporary file written incrementally. Its contents can be read
// back once through Commit; any other outcome must call Discard. The file is
// removed in both cases.
type Spool struct {
	file *os.File
	path string
	size int64
	done bool
}

// New creates a spool file in dir, or in the default temp directory when dir
// is empty.
func New(dir string) (*Spool, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return nil, fmt.Errorf("create spool dir: %w", err)
		}
	}
	f, err := os.CreateTemp(dir, "docupdate-spool-*")
	if err != nil {
		return nil, fmt.Errorf("create spool: %w", err)
	}
	return &Spool{file: f, path: f.Name()}, nil
}

// Write implements io.Writer.
func (s *Spool) Write(p []byte) (int, error) {
	if s.done {
		return 0, os.ErrClosed
	}
	n, err := s.file.Write(p)
	s.size += int64(n)
	return n, err
}

// Size returns the number of bytes written.
func (s *Spool) Size() int64 {
	return s.size
}

// Path returns the location of the spool file.
func (s *Spool) Path() string {
	return s.path
}

// Commit hands the spooled bytes, from the start, to fn and removes the file
// afterwards regardless of fn's outcome.
func (s *Spool) Commit(fn func(r io.Reader) error) error {
	if s.done {
		return os.ErrClosed
	}
	s.done = true
	defer s.remove()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind spool: %w", err)
	}
	return fn(io.LimitReader(s.file, s.size))
}

// Discard removes the spool file. It is a no-op after Commit or a previous
// Discard, so it can be deferred unconditionally.
func (s *Spool) Discard() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.remove()
}

func (s *Spool) remove() error {
	closeErr := s.file.Close()
	removeErr := os.Remove(s.path)
	if errors.Is(removeErr, os.ErrNotExist) {
		removeErr = nil
	}
	return errors.Join(closeErr, removeErr)
}

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/meigma/docupdate"
	"github.com/meigma/docupdate/document"
)

type documentFlags struct {
	metadata string
	ids      []string
}

func (f *documentFlags) add(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.metadata, "metadata", "", "YAML file holding the document metadata dictionary")
	flagSet.StringArrayVar(&f.ids, "id", nil, "trailer identifier in hex (repeat twice to override the PDF trailer)")
}

func (f *documentFlags) open(path string) (*document.File, error) {
	var opts []document.Option
	if f.metadata != "" {
		opts = append(opts, document.WithMetadataFile(f.metadata))
	}
	if len(f.ids) > 0 {
		ids := make([][]byte, 0, len(f.ids))
		for _, s := range f.ids {
			id, err := hex.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("--id %q: %w", s, err)
			}
			ids = append(ids, id)
		}
		opts = append(opts, document.WithTrailerIDs(ids...))
	}
	return document.OpenFile(path, opts...)
}

func runURL(_ context.Context, args []string, stdout, stderr io.Writer) error {
	var docFlags documentFlags
	flagSet := pflag.NewFlagSet("url", pflag.ContinueOnError)
	docFlags.add(flagSet)

	path, err := parseFlags(flagSet, args, stderr)
	if err != nil {
		return err
	}
	doc, err := docFlags.open(path)
	if err != nil {
		return err
	}
	url, err := docupdate.New(doc).UpdateURL()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, url)
	return nil
}

func runFetch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		docFlags    documentFlags
		output      string
		spoolDir    string
		tokenHeader string
		logLevel    string
		headers     []string
	)
	flagSet := pflag.NewFlagSet("fetch", pflag.ContinueOnError)
	docFlags.add(flagSet)
	flagSet.StringVarP(&output, "output", "o", "", "write the updated document here (default: replace the input; - for stdout)")
	flagSet.StringVar(&spoolDir, "spool-dir", "", "directory for temporary update files")
	flagSet.StringVar(&tokenHeader, "token-header", docupdate.DefaultTokenHeader, "response header carrying the update token")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flagSet.StringArrayVarP(&headers, "header", "H", nil, "extra request header as 'Name: value'")

	path, err := parseFlags(flagSet, args, stderr)
	if err != nil {
		return err
	}
	logger, err := newLogger(stderr, logLevel)
	if err != nil {
		return err
	}
	doc, err := docFlags.open(path)
	if err != nil {
		return err
	}

	opts := []docupdate.Option{
		docupdate.WithLogger(logger),
		docupdate.WithSpoolDir(spoolDir),
		docupdate.WithTokenHeader(tokenHeader),
	}
	for _, h := range headers {
		key, value, err := splitHeader(h)
		if err != nil {
			return err
		}
		opts = append(opts, docupdate.WithHeader(key, value))
	}
	u := docupdate.New(doc, opts...)
	if !u.HasAutoUpdate() {
		logger.Info("document has no update metadata", "document", path)
		return nil
	}

	if output == "-" {
		return u.DownloadUpdate(ctx, stdout)
	}
	if output == "" {
		output = path
	}
	if err := writeAtomic(output, func(w io.Writer) error {
		return u.DownloadUpdate(ctx, w)
	}); err != nil {
		return err
	}
	logger.Info("document updated", "output", output)
	return nil
}

// writeAtomic writes through a temp file next to path and renames it into
// place only if fn succeeds.
func writeAtomic(path string, fn func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docupdate-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := fn(tmp); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func splitHeader(h string) (string, string, error) {
	key, value, ok := strings.Cut(h, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid header %q, want 'Name: value'", h)
	}
	return key, strings.TrimSpace(value), nil
}

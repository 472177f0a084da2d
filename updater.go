package docupdate

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/docupdate/document"
	updatehttp "github.com/meigma/docupdate/http"
	"github.com/meigma/docupdate/internal/keys"
	"github.com/meigma/docupdate/internal/spool"
	"github.com/meigma/docupdate/internal/updateerr"
	"github.com/meigma/docupdate/locator"
	"github.com/meigma/docupdate/paseto"
)

// Updater downloads and applies updates for one document.
//
// Each DownloadUpdate call is an independent attempt with its own verifier
// session and spool file. An Updater is not safe for concurrent use; callers
// with an event loop should run DownloadUpdate off that loop.
type Updater struct {
	doc           document.Document
	source        *updatehttp.Source
	httpOpts      []updatehttp.Option
	logger        *slog.Logger
	spoolDir      string
	chunkSize     int
	tokenHeader   string
	maxUpdateSize int64
}

// New returns an Updater for doc.
func New(doc document.Document, opts ...Option) *Updater {
	u := &Updater{
		doc:           doc,
		chunkSize:     DefaultChunkSize,
		tokenHeader:   DefaultTokenHeader,
		maxUpdateSize: DefaultMaxUpdateSize,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.source == nil {
		u.source = updatehttp.NewSource(u.httpOpts...)
	}
	return u
}

// log returns the logger, falling back to a discard logger if nil.
func (u *Updater) log() *slog.Logger {
	if u.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return u.logger
}

// HasAutoUpdate reports whether the document carries a metadata dictionary.
func (u *Updater) HasAutoUpdate() bool {
	return u.doc.Metadata() != nil
}

// Descriptor parses the update descriptor from the document metadata.
func (u *Updater) Descriptor() (*Descriptor, error) {
	return ParseDescriptor(u.doc.Metadata())
}

// UpdateURL returns the address the update would be fetched from.
func (u *Updater) UpdateURL() (string, error) {
	desc, err := u.Descriptor()
	if err != nil {
		return "", err
	}
	return locator.New(u.doc).URL(desc.Repo, desc.AddressMode)
}

// DownloadUpdate fetches the update, verifies it and writes the original
// document followed by the update to out. On any error nothing is written.
func (u *Updater) DownloadUpdate(ctx context.Context, out io.Writer) error {
	desc, err := u.Descriptor()
	if err != nil {
		return err
	}
	if desc.UpdateType != UpdateIncremental {
		return updateerr.New(updateerr.KindUnsupportedUpdateType, "download update",
			fmt.Sprintf("%q", string(desc.UpdateType)))
	}

	var (
		session *paseto.Session
		pub     ed25519.PublicKey
	)
	if desc.Integrity != nil {
		pub, err = integrityKey(desc.Integrity)
		if err != nil {
			return err
		}
		session = paseto.NewSession()
		defer func() {
			// Anything short of a verified session, including an abandoned
			// stream, leaves it failed.
			session.Abort()
		}()
	} else {
		u.log().Warn("update has no integrity descriptor, appending unverified",
			slog.String("repo", desc.Repo))
	}

	url, err := locator.New(u.doc).URL(desc.Repo, desc.AddressMode)
	if err != nil {
		return err
	}
	u.log().Debug("resolved update url",
		slog.String("url", url),
		slog.String("mode", string(desc.AddressMode)))

	resp, err := u.source.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch update: %w", err)
	}
	defer resp.Close()

	if resp.ContentLength < 0 {
		return updateerr.New(updateerr.KindMissingContentLength, "download update", url)
	}
	u.log().Debug("update response", slog.Int64("content_length", resp.ContentLength))

	if session != nil {
		token := resp.Header.Get(u.tokenHeader)
		if err := session.Init(token, uint64(resp.ContentLength), pub); err != nil {
			return err
		}
	}

	sp, err := spool.New(u.spoolDir)
	if err != nil {
		return err
	}
	defer sp.Discard() //nolint:errcheck // best-effort cleanup

	var dv digest.Verifier
	if desc.UpdateDigest != "" {
		dv = desc.UpdateDigest.Verifier()
	}

	n, err := u.stream(resp.Body, sp, session, dv)
	if err != nil {
		return err
	}

	if session != nil {
		msg, err := session.Verify()
		if err != nil {
			return err
		}
		u.log().Debug("update signature verified",
			slog.Int64("bytes", n),
			slog.Int("message_len", len(msg)))
	} else if n != resp.ContentLength {
		return updateerr.New(updateerr.KindIncompleteInput, "download update",
			fmt.Sprintf("received %d of %d bytes", n, resp.ContentLength))
	}
	if dv != nil && !dv.Verified() {
		return updateerr.New(updateerr.KindDigestMismatch, "download update", desc.UpdateDigest.String())
	}

	if desc.Encoding == EncodingZstd {
		if sp, err = u.decode(sp); err != nil {
			return err
		}
		defer sp.Discard() //nolint:errcheck // best-effort cleanup
	}
	return u.emit(out, sp)
}

// stream copies body into sp in chunks, feeding each chunk to the session and
// digest verifier when present.
func (u *Updater) stream(body io.Reader, sp *spool.Spool, session *paseto.Session, dv digest.Verifier) (int64, error) {
	buf := make([]byte, u.chunkSize)
	var total int64
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, err := sp.Write(chunk); err != nil {
				return total, fmt.Errorf("spool update: %w", err)
			}
			if session != nil {
				if err := session.UpdateImplicit(chunk); err != nil {
					return total, err
				}
			}
			if dv != nil {
				_, _ = dv.Write(chunk) //nolint:errcheck // hash writes never fail
			}
			total += int64(n)
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr != nil {
			return total, fmt.Errorf("read update: %w", readErr)
		}
	}
}

// decode expands a zstd body into a second spool so that a corrupt or
// oversized stream is caught before any output is written.
func (u *Updater) decode(src *spool.Spool) (*spool.Spool, error) {
	dst, err := spool.New(u.spoolDir)
	if err != nil {
		return nil, err
	}
	err = src.Commit(func(r io.Reader) error {
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return err
		}
		defer dec.Close()
		n, err := io.Copy(dst, io.LimitReader(dec, u.maxUpdateSize+1))
		if err != nil {
			return err
		}
		if n > u.maxUpdateSize {
			return updateerr.New(updateerr.KindOverflow, "decode update",
				fmt.Sprintf("decoded update exceeds %d bytes", u.maxUpdateSize))
		}
		return nil
	})
	if err != nil {
		_ = dst.Discard() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("decode zstd update: %w", err)
	}
	u.log().Debug("decoded update", slog.Int64("bytes", dst.Size()))
	return dst, nil
}

// emit writes the original document and then the spooled update to out.
func (u *Updater) emit(out io.Writer, sp *spool.Spool) error {
	rc, err := u.doc.Open()
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	_, err = io.Copy(out, rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return sp.Commit(func(r io.Reader) error {
		if _, err := io.Copy(out, r); err != nil {
			return fmt.Errorf("write update: %w", err)
		}
		return nil
	})
}

func integrityKey(in *Integrity) (ed25519.PublicKey, error) {
	if in.CertDataType != CertEd25519 {
		return nil, updateerr.New(updateerr.KindUnsupportedIntegrityType, "download update",
			fmt.Sprintf("cert data type %q", string(in.CertDataType)))
	}
	if len(in.PreSharedKey) == 0 {
		return nil, updateerr.New(updateerr.KindUnsupportedIntegrityType, "download update",
			"missing pre-shared key")
	}
	pub, err := keys.ParsePublicKey(in.PreSharedKey)
	if err != nil {
		return nil, updateerr.Wrap(updateerr.KindCryptoInit, "download update", "load pre-shared key", err)
	}
	return pub, nil
}

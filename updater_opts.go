package docupdate

import (
	"log/slog"
	nethttp "net/http"

	updatehttp "github.com/meigma/docupdate/http"
)

// DefaultChunkSize is the read size used while streaming an update body.
const DefaultChunkSize = 32 << 10

// DefaultTokenHeader is the response header carrying the update token.
const DefaultTokenHeader = "X-Update-Token"

// DefaultMaxUpdateSize caps the decoded size of a compressed update.
const DefaultMaxUpdateSize = 1 << 30

// Option configures an Updater.
type Option func(*Updater)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Updater) {
		u.logger = logger
	}
}

// WithSource sets the HTTP source used to fetch updates. It takes precedence
// over WithHTTPClient and WithHeader.
func WithSource(src *updatehttp.Source) Option {
	return func(u *Updater) {
		u.source = src
	}
}

// WithHTTPClient sets the HTTP client used by the default source.
func WithHTTPClient(client *nethttp.Client) Option {
	return func(u *Updater) {
		u.httpOpts = append(u.httpOpts, updatehttp.WithClient(client))
	}
}

// WithHeader adds a request header to the default source.
func WithHeader(key, value string) Option {
	return func(u *Updater) {
		u.httpOpts = append(u.httpOpts, updatehttp.WithHeader(key, value))
	}
}

// WithSpoolDir sets the directory for temporary update files.
// Defaults to the system temp directory.
func WithSpoolDir(dir string) Option {
	return func(u *Updater) {
		u.spoolDir = dir
	}
}

// WithChunkSize sets the read size used while streaming. Values <= 0 are
// ignored.
func WithChunkSize(n int) Option {
	return func(u *Updater) {
		if n > 0 {
			u.chunkSize = n
		}
	}
}

// WithTokenHeader sets the response header the update token is read from.
func WithTokenHeader(name string) Option {
	return func(u *Updater) {
		if name != "" {
			u.tokenHeader = name
		}
	}
}

// WithMaxUpdateSize caps the decoded size of a zstd update. Values <= 0 are
// ignored.
func WithMaxUpdateSize(n int64) Option {
	return func(u *Updater) {
		if n > 0 {
			u.maxUpdateSize = n
		}
	}
}

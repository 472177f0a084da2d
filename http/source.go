// Package http fetches update bodies as a single streamed GET response.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
)

// ErrNotFound is returned when the repository has no update at the URL.
var ErrNotFound = errors.New("http: update not found")

// Source issues GET requests for update bodies.
type Source struct {
	client  *nethttp.Client
	headers nethttp.Header
}

// Option configures a Source.
type Option func(*Source)

// WithClient sets the HTTP client used for requests.
func WithClient(client *nethttp.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithHeaders sets additional headers on each request.
func WithHeaders(headers nethttp.Header) Option {
	return func(s *Source) {
		if headers == nil {
			return
		}
		s.headers = headers.Clone()
	}
}

// WithHeader sets a single header on each request.
func WithHeader(key, value string) Option {
	return func(s *Source) {
		if s.headers == nil {
			s.headers = make(nethttp.Header)
		}
		s.headers.Set(key, value)
	}
}

// NewSource creates a Source.
func NewSource(opts ...Option) *Source {
	s := &Source{client: nethttp.DefaultClient}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = nethttp.DefaultClient
	}
	return s
}

// Response is an open update body.
type Response struct {
	// Body streams the update bytes. The caller must close it.
	Body io.ReadCloser

	// ContentLength is the declared body size, or -1 when the server did not
	// declare one (for example with chunked transfer encoding).
	ContentLength int64

	// Header holds the response headers.
	Header nethttp.Header
}

// Close drains and closes the body.
func (r *Response) Close() error {
	_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, drainLimit))
	return r.Body.Close()
}

const drainLimit = 64 << 10

// Get opens url. Only 200 responses are accepted.
func (s *Source) Get(ctx context.Context, url string) (*Response, error) {
	req, err := s.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case nethttp.StatusOK:
		// ok
	case nethttp.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("update request failed: %s", resp.Status)
	}

	return &Response{
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
		Header:        resp.Header,
	}, nil
}

func (s *Source) newRequest(ctx context.Context, url string) (*nethttp.Request, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for key, values := range s.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	// Transparent decompression would hide the declared length and change the
	// bytes the signature covers.
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "identity")
	}
	return req, nil
}

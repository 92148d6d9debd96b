// Package http provides an HTTP client for image downloads and for fetching
// static pages that don't require JavaScript rendering.
package http

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/corpix/uarand"
	"github.com/fwojciec/thumbcrawl"
	"golang.org/x/net/publicsuffix"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements thumbcrawl.Fetcher and thumbcrawl.Downloader at compile time.
var (
	_ thumbcrawl.Fetcher    = (*Fetcher)(nil)
	_ thumbcrawl.Downloader = (*Fetcher)(nil)
)

// Fetcher retrieves response bodies using plain HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript.
// Cookies set by a host are sent back to it on later requests.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
// Defaults to a random browser User-Agent chosen once per Fetcher.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.userAgent == "" {
		f.userAgent = uarand.GetRandom()
	}

	// cookiejar.New never returns an error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	f.client = &http.Client{
		Timeout: f.timeout,
		Jar:     jar,
	}

	return f
}

// Fetch retrieves the page body from the given URL as a string.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Download retrieves the decoded response body from the given URL.
// Transport failures and non-2xx responses return ENETWORK.
func (f *Fetcher) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, thumbcrawl.Errorf(thumbcrawl.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, thumbcrawl.Wrapf(err, thumbcrawl.ENETWORK, "GET %s failed", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &thumbcrawl.Error{
			Code:    thumbcrawl.ENETWORK,
			Message: "HTTP " + resp.Status + " for " + url,
			Status:  resp.StatusCode,
		}
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, thumbcrawl.Wrapf(err, thumbcrawl.ENETWORK, "read body of %s", url)
	}
	return body, nil
}

// decodeBody reads resp.Body, undoing gzip or brotli content encoding.
func decodeBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

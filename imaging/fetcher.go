// Package imaging downloads images and re-encodes them to disk using
// github.com/disintegration/imaging.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/fwojciec/thumbcrawl"
	"github.com/fwojciec/thumbcrawl/fs"

	// Decoders for formats the standard library lacks.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultJPEGQuality is the quality used when encoding JPEG files.
const DefaultJPEGQuality = 95

// Ensure Fetcher implements thumbcrawl.ImageFetcher at compile time.
var _ thumbcrawl.ImageFetcher = (*Fetcher)(nil)

// Fetcher downloads images, decodes them and writes them in the format
// implied by the destination extension.
type Fetcher struct {
	downloader thumbcrawl.Downloader
	limiter    thumbcrawl.DomainLimiter
	quality    int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLimiter paces downloads per host.
func WithLimiter(l thumbcrawl.DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithJPEGQuality sets the JPEG encoding quality (1-100).
func WithJPEGQuality(q int) Option {
	return func(f *Fetcher) {
		f.quality = q
	}
}

// NewFetcher creates a Fetcher that downloads through d.
func NewFetcher(d thumbcrawl.Downloader, opts ...Option) *Fetcher {
	f := &Fetcher{
		downloader: d,
		quality:    DefaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchImage downloads rawURL, decodes it and writes it to destPath.
func (f *Fetcher) FetchImage(ctx context.Context, rawURL, destPath string) (*thumbcrawl.Image, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, thumbcrawl.Errorf(thumbcrawl.EINVALID, "invalid image URL %q: %v", rawURL, err)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	data, err := f.downloader.Download(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, thumbcrawl.Wrapf(err, thumbcrawl.EDECODE, "decode %s: %v", rawURL, err)
	}

	format, err := imaging.FormatFromFilename(destPath)
	if err != nil {
		return nil, thumbcrawl.Wrapf(err, thumbcrawl.EIO, "no encoder for %s", destPath)
	}

	h := xxhash.New()
	n, err := fs.WriteFile(destPath, func(w io.Writer) error {
		return imaging.Encode(io.MultiWriter(w, h), img, format, imaging.JPEGQuality(f.quality))
	})
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &thumbcrawl.Image{
		Path:     destPath,
		Format:   strings.ToLower(format.String()),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Bytes:    int(n),
		Checksum: fmt.Sprintf("%016x", h.Sum64()),
	}, nil
}

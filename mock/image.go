package mock

import (
	"context"

	"github.com/fwojciec/thumbcrawl"
)

var _ thumbcrawl.ImageFetcher = (*ImageFetcher)(nil)

// ImageFetcher is a mock implementation of thumbcrawl.ImageFetcher.
type ImageFetcher struct {
	FetchImageFn func(ctx context.Context, url, destPath string) (*thumbcrawl.Image, error)
}

func (f *ImageFetcher) FetchImage(ctx context.Context, url, destPath string) (*thumbcrawl.Image, error) {
	return f.FetchImageFn(ctx, url, destPath)
}

var _ thumbcrawl.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of thumbcrawl.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, url string) ([]byte, error)
}

func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	return d.DownloadFn(ctx, url)
}

var _ thumbcrawl.PathDeduplicator = (*PathDeduplicator)(nil)

// PathDeduplicator is a mock implementation of thumbcrawl.PathDeduplicator.
type PathDeduplicator struct {
	DedupeFn func(path string) (string, error)
}

func (d *PathDeduplicator) Dedupe(path string) (string, error) {
	return d.DedupeFn(path)
}

var _ thumbcrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of thumbcrawl.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

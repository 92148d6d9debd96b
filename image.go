package thumbcrawl

import "context"

// Image describes an image file written by an ImageFetcher.
type Image struct {
	Path     string
	Format   string
	Width    int
	Height   int
	Bytes    int
	Checksum string
}

// ImageFetcher downloads an image and persists it to a destination path.
type ImageFetcher interface {
	// FetchImage retrieves the image at url, decodes it, and re-encodes it
	// to destPath using the format implied by its extension. The file at
	// destPath is created or overwritten.
	//
	// Failures carry ENETWORK (transport error or non-2xx status),
	// EDECODE (not an image) or EIO (encode or write failure).
	FetchImage(ctx context.Context, url, destPath string) (*Image, error)
}

// Downloader retrieves raw response bodies over HTTP.
type Downloader interface {
	// Download returns the response body for url.
	// A transport failure or a non-2xx status returns ENETWORK.
	Download(ctx context.Context, url string) ([]byte, error)
}

// PathDeduplicator finds a destination path that does not exist yet.
type PathDeduplicator interface {
	// Dedupe returns path unchanged if nothing exists there. Otherwise it
	// returns the first free variant with a "(n)" suffix on the stem.
	// Returns EEXHAUSTED when no free variant exists within the ceiling.
	Dedupe(path string) (string, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

package mock

import (
	"context"

	"github.com/fwojciec/thumbcrawl"
)

var _ thumbcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of thumbcrawl.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ thumbcrawl.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of thumbcrawl.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string) (thumbcrawl.RenderedPage, error)
}

func (r *Renderer) Render(ctx context.Context, url string) (thumbcrawl.RenderedPage, error) {
	return r.RenderFn(ctx, url)
}

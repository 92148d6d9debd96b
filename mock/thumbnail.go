package mock

import (
	"context"
	"iter"

	"github.com/fwojciec/thumbcrawl"
)

var _ thumbcrawl.ThumbnailExtractor = (*ThumbnailExtractor)(nil)

// ThumbnailExtractor is a mock implementation of thumbcrawl.ThumbnailExtractor.
type ThumbnailExtractor struct {
	ExtractFn func(page thumbcrawl.RenderedPage, filter *thumbcrawl.URLFilter) iter.Seq[thumbcrawl.ThumbnailRef]
}

func (x *ThumbnailExtractor) Extract(page thumbcrawl.RenderedPage, filter *thumbcrawl.URLFilter) iter.Seq[thumbcrawl.ThumbnailRef] {
	return x.ExtractFn(page, filter)
}

var _ thumbcrawl.PaginationResolver = (*PaginationResolver)(nil)

// PaginationResolver is a mock implementation of thumbcrawl.PaginationResolver.
type PaginationResolver struct {
	ResolvePageRangeFn func(ctx context.Context, baseURL string) (thumbcrawl.PageRange, error)
}

func (r *PaginationResolver) ResolvePageRange(ctx context.Context, baseURL string) (thumbcrawl.PageRange, error) {
	return r.ResolvePageRangeFn(ctx, baseURL)
}

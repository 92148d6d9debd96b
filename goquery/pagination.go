package goquery

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fwojciec/thumbcrawl"
)

// DefaultPaginationSelector matches the pagination control of the default site.
const DefaultPaginationSelector = ".pagination"

// Ensure PaginationResolver implements thumbcrawl.PaginationResolver at compile time.
var _ thumbcrawl.PaginationResolver = (*PaginationResolver)(nil)

// PaginationResolver reads the page range from a site's pagination control.
type PaginationResolver struct {
	renderer thumbcrawl.Renderer
	selector string
	logger   *slog.Logger
}

// NewPaginationResolver creates a PaginationResolver. An empty selector
// uses DefaultPaginationSelector and a nil logger discards output.
func NewPaginationResolver(renderer thumbcrawl.Renderer, selector string, logger *slog.Logger) *PaginationResolver {
	if selector == "" {
		selector = DefaultPaginationSelector
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PaginationResolver{renderer: renderer, selector: selector, logger: logger}
}

// ResolvePageRange renders baseURL and returns the lowest and highest page
// numbers shown in the pagination control. Failures are logged and yield
// the empty range; only context cancellation is returned as an error.
func (r *PaginationResolver) ResolvePageRange(ctx context.Context, baseURL string) (thumbcrawl.PageRange, error) {
	page, err := r.renderer.Render(ctx, baseURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return thumbcrawl.PageRange{}, ctxErr
		}
		r.logger.Warn("pagination unavailable", "url", baseURL, "code", thumbcrawl.ErrorCode(err), "err", err)
		return thumbcrawl.PageRange{}, nil
	}

	pages, err := ParsePageRange(page, r.selector)
	if err != nil {
		r.logger.Warn("pagination unavailable", "url", baseURL, "code", thumbcrawl.ErrorCode(err), "err", err)
		return thumbcrawl.PageRange{}, nil
	}

	r.logger.Info("pagination", "url", baseURL, "first", pages.First, "last", pages.Last)
	return pages, nil
}

// ParsePageRange reads the direct children of the controls matching selector
// and returns the smallest and largest integer among their texts.
// Non-numeric entries such as "prev" and "next" are ignored.
// Returns ENOPAGINATION when no numeric entry is found.
func ParsePageRange(page thumbcrawl.RenderedPage, selector string) (thumbcrawl.PageRange, error) {
	var pages thumbcrawl.PageRange
	found := false

	for control := range page.Select(selector) {
		for entry := range control.Children() {
			n, err := strconv.Atoi(strings.TrimSpace(entry.Text()))
			if err != nil || n < 0 {
				continue
			}
			if !found || n < pages.First {
				pages.First = n
			}
			if !found || n > pages.Last {
				pages.Last = n
			}
			found = true
		}
	}

	if !found {
		return thumbcrawl.PageRange{}, thumbcrawl.Errorf(thumbcrawl.ENOPAGINATION, "no numeric entries in %q", selector)
	}
	return pages, nil
}

package goquery

import (
	"context"
	"net/url"

	"github.com/fwojciec/thumbcrawl"
)

// Ensure Renderer implements thumbcrawl.Renderer at compile time.
var _ thumbcrawl.Renderer = (*Renderer)(nil)

// Renderer fetches rendered HTML through a Fetcher and parses it into a Page.
type Renderer struct {
	fetcher thumbcrawl.Fetcher
	limiter thumbcrawl.DomainLimiter
}

// NewRenderer creates a Renderer. A nil limiter disables pacing.
func NewRenderer(fetcher thumbcrawl.Fetcher, limiter thumbcrawl.DomainLimiter) *Renderer {
	return &Renderer{fetcher: fetcher, limiter: limiter}
}

// Render waits for the page limiter, fetches rawURL and parses the result.
func (r *Renderer) Render(ctx context.Context, rawURL string) (thumbcrawl.RenderedPage, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, thumbcrawl.Errorf(thumbcrawl.EINVALID, "invalid page URL %q", rawURL)
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	rendered, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	return NewPage(rawURL, rendered)
}

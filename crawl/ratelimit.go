package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/thumbcrawl"
	"golang.org/x/time/rate"
)

// Default pacing between requests to the same host.
const (
	DefaultPageInterval  = time.Second
	DefaultImageInterval = 200 * time.Millisecond
)

var _ thumbcrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-domain rate limiting using token buckets.
// Each domain gets its own limiter with a burst of 1 (no bursting allowed).
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per second limit.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return newDomainLimiter(rate.Limit(rps))
}

// NewIntervalLimiter creates a DomainLimiter that spaces requests to the same
// domain at least interval apart. A non-positive interval disables pacing.
func NewIntervalLimiter(interval time.Duration) *DomainLimiter {
	if interval <= 0 {
		return newDomainLimiter(rate.Inf)
	}
	return newDomainLimiter(rate.Every(interval))
}

func newDomainLimiter(limit rate.Limit) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// Package chromedp renders pages in Chrome using github.com/chromedp/chromedp.
// It is an alternative to package rod.
package chromedp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/fwojciec/thumbcrawl"
)

// DefaultFetchTimeout is how long a page may take to load.
const DefaultFetchTimeout = 3 * time.Second

// Ensure Fetcher implements thumbcrawl.Fetcher at compile time.
var _ thumbcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a single browser tab.
// Calls to Fetch are serialized.
type Fetcher struct {
	tab     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	mu      sync.Mutex
}

type config struct {
	timeout  time.Duration
	blocked  []string
	headless bool
}

// Option configures a Fetcher.
type Option func(*config)

// WithFetchTimeout sets how long a page may take to load before Fetch
// returns ETIMEOUT. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithBlockedURLs sets the URL patterns the browser refuses to load.
// Wildcards ('*') are allowed.
func WithBlockedURLs(patterns ...string) Option {
	return func(c *config) {
		c.blocked = patterns
	}
}

// WithHeadless controls whether the browser window is hidden. Defaults to true.
func WithHeadless(headless bool) Option {
	return func(c *config) {
		c.headless = headless
	}
}

// NewFetcher launches Chrome and opens the tab used for every Fetch.
// Close must be called when the Fetcher is no longer needed.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	cfg := config{
		timeout:  DefaultFetchTimeout,
		headless: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	cancel := func() { cancelTab(); cancelAlloc() }

	var actions []chromedp.Action
	if len(cfg.blocked) > 0 {
		patterns := make([]*fetch.RequestPattern, 0, len(cfg.blocked))
		for _, p := range cfg.blocked {
			patterns = append(patterns, &fetch.RequestPattern{URLPattern: p})
		}
		chromedp.ListenTarget(tabCtx, func(ev any) {
			if ev, ok := ev.(*fetch.EventRequestPaused); ok {
				go failRequest(tabCtx, ev.RequestID)
			}
		})
		actions = append(actions, fetch.Enable().WithPatterns(patterns))
	}

	// The first Run starts the browser.
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		cancel()
		return nil, thumbcrawl.Wrapf(err, thumbcrawl.EINTERNAL, "launching browser")
	}

	return &Fetcher{
		tab:     tabCtx,
		cancel:  cancel,
		timeout: cfg.timeout,
	}, nil
}

// failRequest aborts a paused request as if blocked by the client.
func failRequest(tabCtx context.Context, id fetch.RequestID) {
	c := chromedp.FromContext(tabCtx)
	if c == nil || c.Target == nil {
		return
	}
	ctx := cdp.WithExecutor(tabCtx, c.Target)
	_ = fetch.FailRequest(id, network.ErrorReasonBlockedByClient).Do(ctx)
}

// Fetch navigates the tab to url and returns the rendered HTML once the page
// has loaded. A page that does not load within the timeout returns ETIMEOUT.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	runCtx, cancel := context.WithTimeout(f.tab, f.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", thumbcrawl.Wrapf(err, thumbcrawl.ETIMEOUT, "%s did not load within %s", url, f.timeout)
		}
		return "", thumbcrawl.Wrapf(err, thumbcrawl.ENETWORK, "navigate to %s", url)
	}

	return html, nil
}

// Close shuts down the tab and the browser.
func (f *Fetcher) Close() error {
	f.cancel()
	return nil
}

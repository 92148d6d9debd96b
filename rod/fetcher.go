// Package rod renders pages in Chrome using github.com/go-rod/rod.
package rod

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/thumbcrawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout is how long a page may take to load.
const DefaultFetchTimeout = 3 * time.Second

// DefaultBlockedURLs are ad hosts blocked on every page.
var DefaultBlockedURLs = []string{"*js.juicyads.com*"}

// Ensure Fetcher implements thumbcrawl.Fetcher at compile time.
var _ thumbcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a single reused browser tab.
// Calls to Fetch are serialized.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	blocked []string

	mu      sync.Mutex
	page    *rod.Page
	browser *rod.Browser
}

type fetcherConfig struct {
	timeout  time.Duration
	blocked  []string
	headless bool
	maxPages int64
	logger   *slog.Logger
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

// WithFetchTimeout sets how long a page may take to load before Fetch
// returns ETIMEOUT. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithBlockedURLs sets the URL patterns the browser refuses to load.
// Wildcards ('*') are allowed. Defaults to DefaultBlockedURLs.
func WithBlockedURLs(patterns ...string) Option {
	return func(c *fetcherConfig) {
		c.blocked = patterns
	}
}

// WithBrowserHeadless controls whether the browser window is hidden.
func WithBrowserHeadless(headless bool) Option {
	return func(c *fetcherConfig) {
		c.headless = headless
	}
}

// WithLogger logs browser restarts to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *fetcherConfig) {
		c.logger = logger
	}
}

// WithRecycleAfter sets the number of pages rendered before the browser is restarted.
func WithRecycleAfter(n int64) Option {
	return func(c *fetcherConfig) {
		c.maxPages = n
	}
}

// NewFetcher launches Chrome and returns a Fetcher.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{
		timeout:  DefaultFetchTimeout,
		blocked:  DefaultBlockedURLs,
		headless: true,
		maxPages: DefaultRecycleAfter,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	manager, err := NewBrowserManager(
		WithHeadless(cfg.headless),
		WithMaxPages(cfg.maxPages),
		WithManagerLogger(cfg.logger),
	)
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		manager: manager,
		timeout: cfg.timeout,
		blocked: cfg.blocked,
	}, nil
}

// Fetch navigates the tab to url, waits for the load event and returns the
// rendered HTML. A page that does not load within the timeout returns ETIMEOUT.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	page, err := f.tab()
	if err != nil {
		return "", err
	}
	defer f.manager.IncrementPageCount()

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	p := page.Context(fetchCtx)

	if err := p.Navigate(url); err != nil {
		return "", f.classify(ctx, url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", f.classify(ctx, url, err)
	}

	html, err := p.HTML()
	if err != nil {
		return "", f.classify(ctx, url, err)
	}

	return html, nil
}

// tab returns the shared page, opening a new one if the browser was recycled.
// Must be called with mu held.
func (f *Fetcher) tab() (*rod.Page, error) {
	browser := f.manager.Browser()
	if browser == nil {
		return nil, thumbcrawl.Errorf(thumbcrawl.EINTERNAL, "fetcher is closed")
	}
	if f.page != nil && f.browser == browser {
		return f.page, nil
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, thumbcrawl.Wrapf(err, thumbcrawl.EINTERNAL, "open browser tab")
	}

	if len(f.blocked) > 0 {
		if err := (proto.NetworkEnable{}).Call(page); err != nil {
			_ = page.Close()
			return nil, thumbcrawl.Wrapf(err, thumbcrawl.EINTERNAL, "enable network domain")
		}
		if err := (proto.NetworkSetBlockedURLs{Urls: f.blocked}).Call(page); err != nil {
			_ = page.Close()
			return nil, thumbcrawl.Wrapf(err, thumbcrawl.EINTERNAL, "set blocked URLs")
		}
	}

	f.page, f.browser = page, browser
	return page, nil
}

// classify maps a navigation error to an application error.
// Cancellation of the caller's context is returned unchanged.
func (f *Fetcher) classify(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return thumbcrawl.Wrapf(err, thumbcrawl.ETIMEOUT, "%s did not load within %s", url, f.timeout)
	}
	return thumbcrawl.Wrapf(err, thumbcrawl.ENETWORK, "navigate to %s", url)
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	if f.page != nil {
		_ = f.page.Close()
		f.page = nil
	}
	f.mu.Unlock()
	return f.manager.Close()
}

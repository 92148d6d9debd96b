package rod

import (
	"log/slog"
	"sync"

	"github.com/fwojciec/thumbcrawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultRecycleAfter is the number of rendered pages after which the
// browser is restarted.
const DefaultRecycleAfter = 75

// BrowserManager owns the Chrome process and restarts it after a fixed
// number of rendered pages so long crawls do not accumulate memory.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool

	rendered     int64
	recycleAfter int64
	recycles     int

	headless bool
	logger   *slog.Logger
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages are rendered before the browser is
// restarted. A value below one disables recycling.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.recycleAfter = n
	}
}

// WithHeadless controls whether the browser window is hidden. Defaults to true.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// WithManagerLogger logs browser restarts to logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(bm *BrowserManager) {
		bm.logger = logger
	}
}

// NewBrowserManager launches Chrome.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		recycleAfter: DefaultRecycleAfter,
		headless:     true,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(bm)
	}

	browser, lnchr, err := launch(bm.headless)
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = browser, lnchr
	return bm, nil
}

// Browser returns the current browser, restarting it first when the render
// count has reached the recycle threshold. Tabs opened on an earlier browser
// are dead after a restart, so callers compare the returned instance with
// the one their tab belongs to.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.recycleAfter > 0 && bm.rendered >= bm.recycleAfter {
		bm.recycle()
	}
	return bm.browser
}

// IncrementPageCount records one rendered page.
func (bm *BrowserManager) IncrementPageCount() {
	bm.mu.Lock()
	bm.rendered++
	bm.mu.Unlock()
}

// Recycles returns how many times the browser has been restarted.
func (bm *BrowserManager) Recycles() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.recycles
}

// LauncherPID returns the process ID of the browser launcher, or zero once closed.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true

	err := shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = nil, nil
	return err
}

// recycle swaps in a fresh browser. The old one is kept if the launch fails.
// Must be called with mu held.
func (bm *BrowserManager) recycle() {
	browser, lnchr, err := launch(bm.headless)
	if err != nil {
		bm.logger.Warn("browser restart failed; keeping current browser", "rendered", bm.rendered, "err", err)
		return
	}

	_ = shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = browser, lnchr
	bm.rendered = 0
	bm.recycles++
	bm.logger.Info("browser restarted", "recycles", bm.recycles)
}

// launch starts Chrome with flags that keep background tabs rendering.
func launch(headless bool) (*rod.Browser, *launcher.Launcher, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(headless)

	u, err := lnchr.Launch()
	if err != nil {
		return nil, nil, thumbcrawl.Wrapf(err, thumbcrawl.EINTERNAL, "launch browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, nil, thumbcrawl.Wrapf(err, thumbcrawl.EINTERNAL, "connect to browser: %v", err)
	}
	return browser, lnchr, nil
}

func shutdown(browser *rod.Browser, lnchr *launcher.Launcher) error {
	var err error
	if browser != nil {
		err = browser.Close()
	}
	if lnchr != nil {
		lnchr.Kill()
	}
	return err
}

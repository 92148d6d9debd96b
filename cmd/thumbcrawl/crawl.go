package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/thumbcrawl"
	"github.com/fwojciec/thumbcrawl/chromedp"
	"github.com/fwojciec/thumbcrawl/crawl"
	"github.com/fwojciec/thumbcrawl/csv"
	"github.com/fwojciec/thumbcrawl/fs"
	"github.com/fwojciec/thumbcrawl/goquery"
	thumbhttp "github.com/fwojciec/thumbcrawl/http"
	"github.com/fwojciec/thumbcrawl/imaging"
	"github.com/fwojciec/thumbcrawl/rod"
	thumbslog "github.com/fwojciec/thumbcrawl/slog"
	"github.com/fwojciec/thumbcrawl/yaml"
)

// progressWidth is the URL width of the progress line.
const progressWidth = 50

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	naming, err := thumbcrawl.ParseNamingPolicy(c.Naming)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
		return err
	}
	retry, err := crawl.ParseRetryPolicy(c.Retry)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
		return err
	}

	cfg := deps.Config
	if c.Timeout > 0 {
		cfg.RenderTimeout = c.Timeout
	}
	filter, err := cfg.Filter()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
		return err
	}

	pages := thumbcrawl.PageRange{First: c.FirstPage, Last: c.LastPage}
	if !c.AutoPages {
		if pages.Last == 0 {
			pages.Last = pages.First
		}
		if err := pages.Validate(); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
			return err
		}
	}

	consoleLogger := newLogger(deps.Stderr, deps.Debug)

	fetcher, err := c.newFetcher(cfg, consoleLogger)
	if err != nil {
		if c.Engine != "static" {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
		}
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer fetcher.Close()

	pageLimiter := crawl.NewIntervalLimiter(cfg.PageDelay)

	// The run directory is named after the page range, so it is resolved
	// before anything is written.
	if c.AutoPages {
		renderer := thumbslog.NewLoggingRenderer(goquery.NewRenderer(fetcher, pageLimiter), consoleLogger)
		resolver := goquery.NewPaginationResolver(renderer, cfg.PaginationSelector, consoleLogger)
		pages, err = resolver.ResolvePageRange(deps.Ctx, crawl.PageURL(cfg.SearchURL, c.Query, c.Sort, 1))
		if err != nil {
			return err
		}
		if pages.Empty() {
			fmt.Fprintln(deps.Stderr, "no pagination found; nothing to crawl")
		}
	}

	dir := fs.RunDir(c.Out, c.Query, deps.now(), pages, c.Sort)
	if err := fs.CreateRunDir(dir); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
		return err
	}
	logFile, err := fs.OpenRunLog(dir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
		return err
	}
	defer logFile.Close()

	// On a terminal the progress line replaces the console log.
	var logOut io.Writer = io.MultiWriter(deps.Stderr, logFile)
	var progress crawl.ProgressFunc
	if deps.Terminal {
		logOut = logFile
		progress = func(e crawl.ProgressEvent) {
			if line := crawl.FormatProgress(e, progressWidth); line != "" {
				fmt.Fprintf(deps.Stdout, "\r%-100s", line)
			}
		}
	}
	logger := newLogger(logOut, deps.Debug)

	images := imaging.NewFetcher(
		thumbhttp.NewFetcher(),
		imaging.WithLimiter(crawl.NewIntervalLimiter(cfg.ImageDelay)),
	)

	extractor := goquery.NewExtractor()
	extractor.OnSkip = func(src string) {
		logger.Debug("skipped image", "src", src)
	}

	reports := []thumbcrawl.ReportWriter{csv.NewReportWriter()}
	if deps.History != nil {
		reports = append(reports, deps.History)
	}
	// The summary must be the last line of the run log.
	reports = append(reports, thumbslog.NewSummaryWriter(logger))

	crawler := &crawl.Crawler{
		Renderer:  goquery.NewRenderer(thumbslog.NewLoggingFetcher(fetcher, logger), pageLimiter),
		Extractor: extractor,
		Images:    thumbslog.NewLoggingImageFetcher(images, logger),
		Paths:     fs.NewDeduplicator(),
		Reports:   reports,
		Logger:    logger,
	}

	result, err := crawler.Run(deps.Ctx, crawl.RunRequest{
		Query:     c.Query,
		SearchURL: cfg.SearchURL,
		Pages:     pages,
		Sort:      c.Sort,
		Filter:    filter,
		Naming: thumbcrawl.NamingOptions{
			Policy:      naming,
			AppendTitle: c.AppendTitle,
		},
		Retry:    retry,
		Dir:      dir,
		Progress: progress,
	})

	if deps.Terminal {
		// Clear progress line
		fmt.Fprintf(deps.Stdout, "\r%100s\r", "")
	}
	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Downloaded %d of %d thumbnails to %s\n", result.Succeeded(), result.Total(), dir)
	if failed := len(result.Failures()); failed > 0 {
		fmt.Fprintf(deps.Stdout, "%d failed; see %s\n", failed, fs.ResultFileName)
	}
	// An interrupted run is finalized but still reported as an error.
	return err
}

func (c *CrawlCmd) newFetcher(cfg yaml.Config, logger *slog.Logger) (thumbcrawl.Fetcher, error) {
	switch c.Engine {
	case "chromedp":
		return chromedp.NewFetcher(
			chromedp.WithFetchTimeout(cfg.RenderTimeout),
			chromedp.WithBlockedURLs(cfg.BlockedURLs...),
			chromedp.WithHeadless(c.Headless),
		)
	case "static":
		return thumbhttp.NewFetcher(thumbhttp.WithTimeout(cfg.RenderTimeout)), nil
	}
	opts := []rod.Option{
		rod.WithFetchTimeout(cfg.RenderTimeout),
		rod.WithBlockedURLs(cfg.BlockedURLs...),
		rod.WithBrowserHeadless(c.Headless),
		rod.WithLogger(logger),
	}
	if cfg.RecycleAfter > 0 {
		opts = append(opts, rod.WithRecycleAfter(int64(cfg.RecycleAfter)))
	}
	return rod.NewFetcher(opts...)
}

// newLogger returns a text logger writing to w.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (d *Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

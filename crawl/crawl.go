// Package crawl provides thumbnail crawling orchestration.
// It coordinates page rendering, thumbnail extraction, file naming,
// image downloads and result reporting for a paginated search.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/thumbcrawl"
)

// Default site settings.
const (
	DefaultSearchURL    = "https://www.tokyomotion.net/search?search_query={}&search_type=videos&type=public"
	DefaultThumbnailURL = "https://cdn.tokyo-motion.net/media/videos"
)

// Crawler orchestrates the crawling of paginated search results.
type Crawler struct {
	Renderer   thumbcrawl.Renderer
	Extractor  thumbcrawl.ThumbnailExtractor
	Pagination thumbcrawl.PaginationResolver
	Images     thumbcrawl.ImageFetcher
	Paths      thumbcrawl.PathDeduplicator
	Reports    []thumbcrawl.ReportWriter
	Logger     *slog.Logger
}

// RunRequest describes a single crawl run.
type RunRequest struct {
	// Query is substituted for "{}" in SearchURL.
	Query string

	// SearchURL is the search URL template. Page and sort parameters are appended.
	SearchURL string

	// Pages is the inclusive range of pages to visit.
	Pages thumbcrawl.PageRange

	// AutoPages resolves the range through the PaginationResolver when Pages is zero.
	AutoPages bool

	// Sort is passed through to the search URL when set.
	Sort string

	// Filter selects thumbnail URLs. A nil filter accepts every image.
	Filter *thumbcrawl.URLFilter

	Naming thumbcrawl.NamingOptions
	Retry  RetryPolicy

	// Dir is the directory images are written to. It must exist.
	Dir string

	// Progress, if set, receives events as the run proceeds.
	Progress ProgressFunc
}

// Validate returns an error if the request cannot be run.
func (r *RunRequest) Validate() error {
	if r.SearchURL == "" {
		return thumbcrawl.Errorf(thumbcrawl.EINVALID, "search URL required")
	}
	if r.Dir == "" {
		return thumbcrawl.Errorf(thumbcrawl.EINVALID, "output directory required")
	}
	return r.Pages.Validate()
}

// PageURL returns the address of one results page.
func PageURL(searchURL, query, sort string, page int) string {
	u := strings.ReplaceAll(searchURL, "{}", url.QueryEscape(query))
	if sort != "" {
		u += "&sort=" + sort
	}
	return u + "&page=" + strconv.Itoa(page)
}

// ProgressEvent reports progress during a crawl run.
type ProgressEvent struct {
	Type      ProgressType
	Page      int
	Pages     thumbcrawl.PageRange
	Completed int
	Failed    int
	URL       string
	Path      string
	Bytes     int // size of the saved file, for ProgressCompleted
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressPage
	ProgressCompleted
	ProgressFailed
	ProgressRetrying
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// run holds the mutable state of a single Run call.
type run struct {
	req    RunRequest
	result *thumbcrawl.RunResult

	// Sequential file indexes, assigned on first discovery and reused on retry.
	indexes   map[string]int
	nextIndex int

	attempted int
	saved     int
}

func (r *run) indexFor(sourceURL string) int {
	if i, ok := r.indexes[sourceURL]; ok {
		return i
	}
	r.nextIndex++
	r.indexes[sourceURL] = r.nextIndex
	return r.nextIndex
}

func (r *run) emit(event ProgressEvent) {
	if r.req.Progress == nil {
		return
	}
	event.Pages = r.result.Pages
	event.Completed = r.result.Succeeded()
	event.Failed = len(r.result.Failures())
	r.req.Progress(event)
}

// Run crawls every page in the request, downloads the thumbnails it finds and
// hands the sealed result to every report writer. Individual page and download
// failures are recorded and logged; Run only returns an error for an invalid
// request or a canceled context. A canceled run is still finalized.
func (c *Crawler) Run(ctx context.Context, req RunRequest) (*thumbcrawl.RunResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r := &run{
		req:     req,
		result:  thumbcrawl.NewRunResult(),
		indexes: make(map[string]int),
	}
	r.result.Query = req.Query
	r.result.Dir = req.Dir
	r.result.StartedAt = time.Now()

	pages := req.Pages
	if pages == (thumbcrawl.PageRange{}) && req.AutoPages && c.Pagination != nil {
		resolved, err := c.Pagination.ResolvePageRange(ctx, PageURL(req.SearchURL, req.Query, req.Sort, 1))
		switch {
		case err == nil:
			pages = resolved
		case ctx.Err() == nil:
			return nil, err
		}
	}
	r.result.Pages = pages

	c.logger().Info("crawl started", "query", req.Query, "first", pages.First, "last", pages.Last, "dir", req.Dir)
	r.emit(ProgressEvent{Type: ProgressStarted})

	if !pages.Empty() {
		for p := pages.First; p <= pages.Last && ctx.Err() == nil; p++ {
			c.crawlPage(ctx, r, p, nil)
		}
	}

	if ctx.Err() == nil {
		switch req.Retry {
		case RetryDownloads:
			c.retryDownloads(ctx, r)
		case RetryPages:
			c.retryPages(ctx, r)
		}
	}

	c.finalize(context.WithoutCancel(ctx), r)
	return r.result, ctx.Err()
}

// crawlPage renders one results page and downloads its thumbnails.
// When only is non-nil, thumbnails whose URL is not in it are ignored.
func (c *Crawler) crawlPage(ctx context.Context, r *run, page int, only map[string]bool) {
	pageURL := PageURL(r.req.SearchURL, r.req.Query, r.req.Sort, page)
	r.emit(ProgressEvent{Type: ProgressPage, Page: page, URL: pageURL})

	rendered, err := c.Renderer.Render(ctx, pageURL)
	if err != nil {
		c.logger().Error("render failed", "page", page, "url", pageURL, "code", thumbcrawl.ErrorCode(err), "err", err)
		return
	}

	found := 0
	for ref := range c.Extractor.Extract(rendered, r.req.Filter) {
		if ctx.Err() != nil {
			return
		}
		found++
		if only != nil && !only[ref.SourceURL] {
			continue
		}
		ref.Page = page
		c.download(ctx, r, ref)
	}

	if only == nil {
		images := 0
		for range rendered.FindAll("img") {
			images++
		}
		if skipped := images - found; skipped > 0 {
			r.result.Skipped += skipped
		}
	}
}

// download names, deduplicates and fetches one thumbnail and records the outcome.
func (c *Crawler) download(ctx context.Context, r *run, ref thumbcrawl.ThumbnailRef) {
	if prev, ok := r.result.Entry(ref.SourceURL); ok {
		ref.Title = prev.Title
	}
	r.attempted++

	name := thumbcrawl.FileName(ref.Title, thumbcrawl.ImageExtension(ref.SourceURL), r.req.Naming, r.indexFor(ref.SourceURL))
	path, err := c.Paths.Dedupe(filepath.Join(r.req.Dir, name))
	if err != nil {
		c.fail(r, ref, filepath.Join(r.req.Dir, name), err)
		return
	}

	img, err := c.Images.FetchImage(ctx, ref.SourceURL, path)
	if err != nil {
		c.fail(r, ref, path, err)
		return
	}

	c.record(r, ref, thumbcrawl.Succeeded(img))
	r.saved++
	c.logger().Info("saved", "url", ref.SourceURL, "path", img.Path, "bytes", img.Bytes)
	r.emit(ProgressEvent{Type: ProgressCompleted, Page: ref.Page, URL: ref.SourceURL, Path: img.Path, Bytes: img.Bytes})
}

func (c *Crawler) fail(r *run, ref thumbcrawl.ThumbnailRef, path string, err error) {
	c.record(r, ref, thumbcrawl.Failed(err))
	c.logger().Error("download failed", "url", ref.SourceURL, "path", path, "code", thumbcrawl.ErrorCode(err), "err", err)
	r.emit(ProgressEvent{Type: ProgressFailed, Page: ref.Page, URL: ref.SourceURL, Path: path, Error: err})
}

func (c *Crawler) record(r *run, ref thumbcrawl.ThumbnailRef, outcome thumbcrawl.Outcome) {
	if err := r.result.Record(ref, outcome); err != nil {
		c.logger().Error("record outcome", "url", ref.SourceURL, "err", err)
	}
}

// retryDownloads re-attempts every failed download once, in discovery order.
func (c *Crawler) retryDownloads(ctx context.Context, r *run) {
	failures := r.result.Failures()
	if len(failures) == 0 {
		return
	}
	c.logger().Info("retrying failed downloads", "count", len(failures))

	for _, e := range failures {
		if ctx.Err() != nil {
			return
		}
		r.emit(ProgressEvent{Type: ProgressRetrying, Page: e.Page, URL: e.URL})
		c.download(ctx, r, thumbcrawl.ThumbnailRef{SourceURL: e.URL, Title: e.Title, Page: e.Page})
	}
}

// retryPages re-renders every page with a failed download and re-attempts
// only the failed thumbnails found on it.
func (c *Crawler) retryPages(ctx context.Context, r *run) {
	failures := r.result.Failures()
	if len(failures) == 0 {
		return
	}

	var pages []int
	byPage := make(map[int]map[string]bool)
	for _, e := range failures {
		if byPage[e.Page] == nil {
			byPage[e.Page] = make(map[string]bool)
			pages = append(pages, e.Page)
		}
		byPage[e.Page][e.URL] = true
	}
	c.logger().Info("retrying pages with failed downloads", "pages", len(pages), "count", len(failures))

	for _, p := range pages {
		if ctx.Err() != nil {
			return
		}
		// Items missing from the re-rendered page stay failed.
		r.emit(ProgressEvent{Type: ProgressRetrying, Page: p})
		c.crawlPage(ctx, r, p, byPage[p])
	}
}

// finalize seals the result and writes every report. Report errors are logged.
func (c *Crawler) finalize(ctx context.Context, r *run) {
	r.result.EndedAt = time.Now()
	r.result.Seal()

	c.logger().Info("crawl finished",
		"query", r.result.Query,
		"attempted", r.attempted,
		"downloads", r.saved,
		"saved", r.result.Succeeded(),
		"total", r.result.Total(),
		"skipped", r.result.Skipped,
		"duration", r.result.EndedAt.Sub(r.result.StartedAt),
	)

	// Reports are written after the final log line.
	for _, w := range c.Reports {
		if err := w.WriteReport(ctx, r.result); err != nil {
			c.logger().Error("write report failed", "code", thumbcrawl.ErrorCode(err), "err", err)
		}
	}
	r.emit(ProgressEvent{Type: ProgressFinished})
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

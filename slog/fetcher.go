// Package slog provides logging decorators built on log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/thumbcrawl"
)

// Ensure LoggingFetcher implements thumbcrawl.Fetcher.
var _ thumbcrawl.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   thumbcrawl.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next thumbcrawl.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingImageFetcher implements thumbcrawl.ImageFetcher.
var _ thumbcrawl.ImageFetcher = (*LoggingImageFetcher)(nil)

// LoggingImageFetcher wraps an ImageFetcher with debug logging.
type LoggingImageFetcher struct {
	next   thumbcrawl.ImageFetcher
	logger *slog.Logger
}

// NewLoggingImageFetcher creates a new LoggingImageFetcher.
func NewLoggingImageFetcher(next thumbcrawl.ImageFetcher, logger *slog.Logger) *LoggingImageFetcher {
	return &LoggingImageFetcher{next: next, logger: logger}
}

// FetchImage logs the download and delegates to the wrapped fetcher.
func (f *LoggingImageFetcher) FetchImage(ctx context.Context, url, destPath string) (img *thumbcrawl.Image, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "path", destPath, "duration", time.Since(begin)}
		if img != nil {
			attrs = append(attrs, "format", img.Format, "width", img.Width, "height", img.Height, "bytes", img.Bytes)
		}
		if err != nil {
			attrs = append(attrs, "code", thumbcrawl.ErrorCode(err), "err", err)
		}
		f.logger.Debug("image", attrs...)
	}(time.Now())
	return f.next.FetchImage(ctx, url, destPath)
}

// Ensure LoggingRenderer implements thumbcrawl.Renderer.
var _ thumbcrawl.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer with logging.
type LoggingRenderer struct {
	next   thumbcrawl.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next thumbcrawl.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render logs the page being rendered and delegates to the wrapped renderer.
func (r *LoggingRenderer) Render(ctx context.Context, url string) (page thumbcrawl.RenderedPage, err error) {
	defer func(begin time.Time) {
		if err != nil {
			r.logger.Warn("render", "url", url, "duration", time.Since(begin), "code", thumbcrawl.ErrorCode(err), "err", err)
			return
		}
		r.logger.Info("render", "url", url, "duration", time.Since(begin))
	}(time.Now())
	return r.next.Render(ctx, url)
}

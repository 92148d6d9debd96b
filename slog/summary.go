package slog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/thumbcrawl"
)

// Ensure SummaryWriter implements thumbcrawl.ReportWriter.
var _ thumbcrawl.ReportWriter = (*SummaryWriter)(nil)

// SummaryWriter logs the failures of a run followed by a download count.
type SummaryWriter struct {
	logger *slog.Logger
}

// NewSummaryWriter creates a new SummaryWriter.
func NewSummaryWriter(logger *slog.Logger) *SummaryWriter {
	return &SummaryWriter{logger: logger}
}

// WriteReport logs one warning per failed entry and ends with
// "DOWNLOADED n of m FILES".
func (w *SummaryWriter) WriteReport(ctx context.Context, result *thumbcrawl.RunResult) error {
	for _, e := range result.Failures() {
		w.logger.WarnContext(ctx, "not downloaded", "url", e.URL, "title", e.Title, "page", e.Page, "reason", e.Outcome.Reason)
	}
	w.logger.InfoContext(ctx, fmt.Sprintf("DOWNLOADED %d of %d FILES", result.Succeeded(), result.Total()),
		"skipped", result.Skipped,
		"dir", result.Dir,
	)
	return nil
}

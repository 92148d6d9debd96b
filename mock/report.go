package mock

import (
	"context"

	"github.com/fwojciec/thumbcrawl"
)

var _ thumbcrawl.ReportWriter = (*ReportWriter)(nil)

// ReportWriter is a mock implementation of thumbcrawl.ReportWriter.
type ReportWriter struct {
	WriteReportFn func(ctx context.Context, result *thumbcrawl.RunResult) error
}

func (w *ReportWriter) WriteReport(ctx context.Context, result *thumbcrawl.RunResult) error {
	return w.WriteReportFn(ctx, result)
}

var _ thumbcrawl.RunHistory = (*RunHistory)(nil)

// RunHistory is a mock implementation of thumbcrawl.RunHistory.
type RunHistory struct {
	FindRunsFn func(ctx context.Context, limit int) ([]*thumbcrawl.RunSummary, error)
}

func (h *RunHistory) FindRuns(ctx context.Context, limit int) ([]*thumbcrawl.RunSummary, error) {
	return h.FindRunsFn(ctx, limit)
}

package thumbcrawl

import (
	"context"
	"time"
)

// ReportWriter persists a finalized RunResult.
type ReportWriter interface {
	WriteReport(ctx context.Context, result *RunResult) error
}

// RunSummary is a stored record of a past run.
type RunSummary struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	FirstPage int       `json:"firstPage"`
	LastPage  int       `json:"lastPage"`
	Dir       string    `json:"dir"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Skipped   int       `json:"skipped"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

// RunHistory lists past runs.
type RunHistory interface {
	// FindRuns returns the most recent runs first, at most limit of them.
	// A limit of zero returns all runs.
	FindRuns(ctx context.Context, limit int) ([]*RunSummary, error)
}

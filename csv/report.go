// Package csv writes run results as comma-separated files.
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"

	"github.com/fwojciec/thumbcrawl"
	"github.com/fwojciec/thumbcrawl/fs"
)

// Ensure ReportWriter implements thumbcrawl.ReportWriter at compile time.
var _ thumbcrawl.ReportWriter = (*ReportWriter)(nil)

// Header is the first row of every report.
var Header = []string{"done", "url", "title"}

// ReportWriter writes result.csv into the run directory.
type ReportWriter struct {
	name string
}

// NewReportWriter creates a ReportWriter that writes fs.ResultFileName.
func NewReportWriter() *ReportWriter {
	return &ReportWriter{name: fs.ResultFileName}
}

// WriteReport writes one row per entry, in discovery order, to
// <result.Dir>/result.csv. An existing report is replaced.
func (w *ReportWriter) WriteReport(ctx context.Context, result *thumbcrawl.RunResult) error {
	if result.Dir == "" {
		return thumbcrawl.Errorf(thumbcrawl.EINVALID, "run result has no directory")
	}
	path := filepath.Join(result.Dir, w.name)
	_, err := fs.WriteFile(path, func(out io.Writer) error {
		return Encode(out, result)
	})
	return err
}

// Encode writes the report for result to out.
func Encode(out io.Writer, result *thumbcrawl.RunResult) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range result.Entries() {
		if err := cw.Write([]string{strconv.FormatBool(e.Outcome.Done), e.URL, e.Title}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

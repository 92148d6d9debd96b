package fs

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/thumbcrawl"
)

// File names written next to the images of a run.
const (
	ResultFileName = "result.csv"
	LogFileName    = "run.log"
)

// RunDir returns the output directory for a run:
// <base>/<query>/<YYYY-MM-DD>/page.<first>-<last>[.sort-<token>].
func RunDir(base, query string, date time.Time, pages thumbcrawl.PageRange, sort string) string {
	var b strings.Builder
	b.WriteString("page.")
	b.WriteString(strconv.Itoa(pages.First))
	b.WriteString("-")
	b.WriteString(strconv.Itoa(pages.Last))
	if sort != "" {
		b.WriteString(".sort-")
		b.WriteString(thumbcrawl.SanitizeFileName(sort))
	}
	return filepath.Join(base, thumbcrawl.SanitizeFileName(query), date.Format("2006-01-02"), b.String())
}

// CreateRunDir creates the run directory and its parents.
func CreateRunDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return thumbcrawl.Wrapf(err, thumbcrawl.EIO, "create output directory %s", dir)
	}
	return nil
}

// OpenRunLog opens the run log in dir for appending.
// The caller must close it on every exit path.
func OpenRunLog(dir string) (io.WriteCloser, error) {
	path := filepath.Join(dir, LogFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, thumbcrawl.Wrapf(err, thumbcrawl.EIO, "open run log %s", path)
	}
	return f, nil
}

package fs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/thumbcrawl"
)

// DefaultMaxAttempts is the number of numbered variants tried before giving up.
const DefaultMaxAttempts = 9999

// Ensure Deduplicator implements thumbcrawl.PathDeduplicator at compile time.
var _ thumbcrawl.PathDeduplicator = (*Deduplicator)(nil)

var counterSuffix = regexp.MustCompile(`\(\d+\)$`)

// Deduplicator finds free destination paths by appending "(n)" to the stem.
// It only checks for existence; callers must serialize Dedupe with the
// write that claims the returned path.
type Deduplicator struct {
	// MaxAttempts bounds the numbered variants tried. Zero means DefaultMaxAttempts.
	MaxAttempts int
}

// NewDeduplicator returns a Deduplicator with the default ceiling.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{MaxAttempts: DefaultMaxAttempts}
}

// Dedupe returns path if nothing exists there. Otherwise any trailing "(n)"
// is stripped from the stem and stem(0)ext, stem(1)ext, ... are tried in order.
func (d *Deduplicator) Dedupe(path string) (string, error) {
	if !exists(path) {
		return path, nil
	}

	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := counterSuffix.ReplaceAllString(strings.TrimSuffix(base, ext), "")

	limit := d.MaxAttempts
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}
	for i := range limit {
		candidate := filepath.Join(dir, fmt.Sprintf("%s(%d)%s", stem, i, ext))
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", thumbcrawl.Errorf(thumbcrawl.EEXHAUSTED, "no free name for %s after %d attempts", path, limit)
}

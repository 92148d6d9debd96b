package crawl

import (
	"strings"

	"github.com/fwojciec/thumbcrawl"
)

// RetryPolicy selects how failed downloads are re-attempted after the sweep.
type RetryPolicy int

const (
	// RetryDownloads re-attempts each failed download once.
	RetryDownloads RetryPolicy = iota
	// RetryPages re-renders each page that had a failure and re-attempts
	// the failed thumbnails found on it.
	RetryPages
	// RetryNone leaves failures as they are.
	RetryNone
)

// String returns the CLI token for the policy.
func (p RetryPolicy) String() string {
	switch p {
	case RetryPages:
		return "pages"
	case RetryNone:
		return "none"
	default:
		return "downloads"
	}
}

// ParseRetryPolicy parses a CLI token. An empty token selects RetryDownloads.
func ParseRetryPolicy(s string) (RetryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "downloads":
		return RetryDownloads, nil
	case "pages":
		return RetryPages, nil
	case "none":
		return RetryNone, nil
	}
	return RetryDownloads, thumbcrawl.Errorf(thumbcrawl.EINVALID, "unknown retry policy %q", s)
}

package crawl

import (
	"fmt"
	"net/url"
)

// TruncateURL shortens a URL for display. Scheme and host are dropped when
// the URL has a path, and values longer than maxLen keep their end.
func TruncateURL(rawURL string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	s := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" && u.Path != "" && u.Path != "/" {
		s = u.Path
		if u.RawQuery != "" {
			s += "?" + u.RawQuery
		}
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return "..." + s[len(s)-maxLen+3:]
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProgress renders a one-line status for a progress event.
// It returns "" for events that have no status line.
func FormatProgress(e ProgressEvent, width int) string {
	pages := fmt.Sprintf("%d/%d", max(e.Page-e.Pages.First+1, 0), e.Pages.Len())
	counts := fmt.Sprintf("%d saved, %d failed", e.Completed, e.Failed)
	switch e.Type {
	case ProgressCompleted:
		return fmt.Sprintf("[page %s] [%s] %s %s", pages, counts, TruncateURL(e.URL, width), FormatBytes(e.Bytes))
	case ProgressPage, ProgressFailed:
		return fmt.Sprintf("[page %s] [%s] %s", pages, counts, TruncateURL(e.URL, width))
	case ProgressRetrying:
		return fmt.Sprintf("[retry] [%s] %s", counts, TruncateURL(e.URL, width))
	}
	return ""
}

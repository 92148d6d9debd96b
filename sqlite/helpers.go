package sqlite

import (
	"strings"
	"time"

	"github.com/fwojciec/thumbcrawl"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders t in UTC for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp. column names the source in errors.
func parseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, thumbcrawl.Wrapf(err, thumbcrawl.EINTERNAL, "parse %s %q", column, value)
	}
	return t, nil
}

// appendLimit adds a LIMIT clause when limit is positive.
func appendLimit(query *strings.Builder, args *[]any, limit int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
}

package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/thumbcrawl"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if deps.History == nil {
		err := thumbcrawl.Errorf(thumbcrawl.EINVALID, "no history database; set --history or THUMBCRAWL_HISTORY")
		fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
		return err
	}

	if c.RunID != "" {
		return c.showRun(deps)
	}

	runs, err := deps.History.FindRuns(deps.Ctx, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'thumbcrawl --history <db> crawl' to record one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %q  pages %d-%d  %d/%d saved  %d skipped\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Query,
			r.FirstPage, r.LastPage,
			r.Succeeded, r.Total,
			r.Skipped,
		)
	}

	return nil
}

func (c *HistoryCmd) showRun(deps *Dependencies) error {
	entries, err := deps.History.FindRunEntries(deps.Ctx, c.RunID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
		return err
	}

	for _, e := range entries {
		status := "ok"
		detail := e.Outcome.Path
		if !e.Outcome.Done {
			status = "failed"
			detail = e.Outcome.Reason
		}
		fmt.Fprintf(deps.Stdout, "%-6s  page %d  %s  %s\n", status, e.Page, e.URL, detail)
	}

	return nil
}

package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/thumbcrawl"
	"github.com/fwojciec/thumbcrawl/yaml"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	// Config is the merged site configuration.
	Config yaml.Config
	Debug  bool

	// History is nil unless --history is set.
	History RunStore

	Now      func() time.Time
	Terminal bool
}

// RunStore records and lists runs.
type RunStore interface {
	thumbcrawl.ReportWriter
	thumbcrawl.RunHistory
	FindRunEntries(ctx context.Context, runID string) ([]thumbcrawl.ResultEntry, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config    string `short:"c" type:"path" env:"THUMBCRAWL_CONFIG" help:"YAML file with site settings"`
	HistoryDB string `name:"history" type:"path" env:"THUMBCRAWL_HISTORY" help:"SQLite database that records runs"`
	Debug     bool   `env:"THUMBCRAWL_DEBUG" help:"Log debug messages"`

	Crawl   CrawlCmd   `cmd:"" help:"Download the thumbnails of a search"`
	History HistoryCmd `cmd:"" help:"List past runs recorded with --history"`
	Show    ConfigCmd  `cmd:"" name:"config" help:"Print the effective site settings"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Query       string        `arg:"" help:"Search query"`
	FirstPage   int           `name:"first-page" default:"1" help:"First results page"`
	LastPage    int           `name:"last-page" help:"Last results page, inclusive (default: first page)"`
	AutoPages   bool          `name:"auto-pages" help:"Read the page range from the first results page"`
	Naming      string        `default:"title" enum:"title,index" env:"THUMBCRAWL_NAMING" help:"File naming: title or index"`
	AppendTitle bool          `name:"append-title" help:"Append the title to indexed file names"`
	Headless    bool          `default:"true" negatable:"" env:"THUMBCRAWL_HEADLESS" help:"Run the browser without a window"`
	Sort        string        `help:"Sort token passed to the search URL"`
	Retry       string        `default:"downloads" enum:"downloads,pages,none" env:"THUMBCRAWL_RETRY" help:"Retry failed items by re-downloading (downloads), re-rendering their page (pages), or not at all (none)"`
	Engine      string        `default:"rod" enum:"rod,chromedp,static" env:"THUMBCRAWL_ENGINE" help:"Page renderer: rod, chromedp or static (no JavaScript)"`
	Out         string        `short:"o" default:"." type:"path" env:"THUMBCRAWL_OUT" help:"Base output directory"`
	Timeout     time.Duration `help:"Render timeout per page (overrides the config file)"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	RunID string `arg:"" optional:"" name:"run" help:"Show the items of one run"`
	Limit int    `short:"n" default:"20" help:"Maximum number of runs to list (0 for all)"`
}

// ConfigCmd is the "config" subcommand.
type ConfigCmd struct{}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/thumbcrawl/crawl"
	"github.com/fwojciec/thumbcrawl/goquery"
	"github.com/fwojciec/thumbcrawl/rod"
	"github.com/fwojciec/thumbcrawl/sqlite"
	"github.com/fwojciec/thumbcrawl/yaml"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A missing .env file is not an error.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Run history database, opened when --history is set.
	DB *sqlite.DB

	// Now returns the time used to name the run directory.
	Now func() time.Time
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Now: time.Now,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:      ctx,
		Stdout:   stdout,
		Stderr:   stderr,
		Now:      m.Now,
		Terminal: isTerminal(stdout),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("thumbcrawl"),
		kong.Description("Download the thumbnail images of a paginated search"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'thumbcrawl --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Built-in defaults, then the config file. Command flags apply last.
	cfg, err := yaml.LoadConfig(cli.Config, DefaultConfig())
	if err != nil {
		fmt.Fprintln(stderr, "Hint: check the file passed with --config or THUMBCRAWL_CONFIG")
		return fmt.Errorf("failed to load config: %w", err)
	}
	deps.Config = cfg
	deps.Debug = cli.Debug

	if cli.HistoryDB != "" {
		m.DB = sqlite.NewDB(cli.HistoryDB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintln(stderr, "Hint: Set THUMBCRAWL_HISTORY to use a different database path")
			return fmt.Errorf("failed to open history database at %q: %w", cli.HistoryDB, err)
		}
		defer m.Close()
		deps.History = sqlite.NewRunStore(m.DB)
	}

	return kongCtx.Run(deps)
}

// DefaultConfig returns the built-in site settings.
func DefaultConfig() yaml.Config {
	return yaml.Config{
		SearchURL:          crawl.DefaultSearchURL,
		ThumbnailURL:       crawl.DefaultThumbnailURL,
		PaginationSelector: goquery.DefaultPaginationSelector,
		BlockedURLs:        rod.DefaultBlockedURLs,
		PageDelay:          crawl.DefaultPageInterval,
		ImageDelay:         crawl.DefaultImageInterval,
		RenderTimeout:      rod.DefaultFetchTimeout,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Package yaml loads site configuration from YAML files.
package yaml

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/thumbcrawl"
	"gopkg.in/yaml.v3"
)

// Config holds the site settings that can be overridden from a file.
// A zero delay disables pacing.
type Config struct {
	// SearchURL is the results URL template. "{}" marks the query.
	SearchURL string `yaml:"search_url"`

	// ThumbnailURL is the prefix a thumbnail source URL must start with.
	ThumbnailURL string `yaml:"thumbnail_url"`

	// ThumbnailPattern is a regular expression that replaces ThumbnailURL
	// when set.
	ThumbnailPattern string `yaml:"thumbnail_pattern"`

	// PaginationSelector locates the pagination list on the first page.
	PaginationSelector string `yaml:"pagination_selector"`

	// BlockedURLs are request patterns the browser refuses to load.
	BlockedURLs []string `yaml:"blocked_urls"`

	PageDelay     time.Duration `yaml:"page_delay"`
	ImageDelay    time.Duration `yaml:"image_delay"`
	RenderTimeout time.Duration `yaml:"render_timeout"`

	// RecycleAfter restarts the browser after this many pages. Zero keeps the
	// engine default.
	RecycleAfter int `yaml:"recycle_after"`
}

// LoadConfig reads path and overlays its values on defaults. Keys absent
// from the file keep their default. An empty path returns defaults unchanged.
func LoadConfig(path string, defaults Config) (Config, error) {
	cfg := defaults
	cfg.BlockedURLs = append([]string(nil), defaults.BlockedURLs...)
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, thumbcrawl.Wrapf(err, thumbcrawl.ENOTFOUND, "config file %s not found", path)
	} else if err != nil {
		return Config{}, thumbcrawl.Wrapf(err, thumbcrawl.EIO, "open config %s", path)
	}
	defer f.Close()

	if err := Decode(f, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays the YAML document in r on cfg and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return thumbcrawl.Wrapf(err, thumbcrawl.EINVALID, "parse config")
	}
	return cfg.Validate()
}

// Validate returns EINVALID when a setting cannot be used.
func (c *Config) Validate() error {
	if c.SearchURL == "" {
		return thumbcrawl.Errorf(thumbcrawl.EINVALID, "search_url is required")
	}
	if !strings.Contains(c.SearchURL, "{}") {
		return thumbcrawl.Errorf(thumbcrawl.EINVALID, "search_url %q has no {} query placeholder", c.SearchURL)
	}
	if _, err := thumbcrawl.CompileURLFilter(c.ThumbnailPattern); err != nil {
		return err
	}
	if c.PageDelay < 0 || c.ImageDelay < 0 || c.RenderTimeout < 0 {
		return thumbcrawl.Errorf(thumbcrawl.EINVALID, "delays and timeouts must not be negative")
	}
	if c.RecycleAfter < 0 {
		return thumbcrawl.Errorf(thumbcrawl.EINVALID, "recycle_after must not be negative")
	}
	return nil
}

// Filter returns the thumbnail URL filter described by the config.
func (c *Config) Filter() (*thumbcrawl.URLFilter, error) {
	if c.ThumbnailPattern != "" {
		return thumbcrawl.CompileURLFilter(c.ThumbnailPattern)
	}
	return thumbcrawl.NewPrefixFilter(c.ThumbnailURL), nil
}

// Encode writes cfg as YAML to w.
func Encode(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return thumbcrawl.Wrapf(err, thumbcrawl.EIO, "encode config")
	}
	return enc.Close()
}

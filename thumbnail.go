package thumbcrawl

import (
	"iter"
	"regexp"
)

// ThumbnailRef identifies a thumbnail image found on a rendered page.
// Identity is SourceURL.
type ThumbnailRef struct {
	SourceURL     string
	Title         string // may be empty
	LinkedPageURL string // "" when the image has no enclosing link
	Page          int    // results page the thumbnail was found on
}

// ThumbnailExtractor yields the thumbnails on a rendered page.
type ThumbnailExtractor interface {
	// Extract returns a lazy sequence over the page's images in DOM order.
	// Images without a resolvable URL, or whose URL does not pass the
	// filter, are skipped. A nil filter accepts every image.
	Extract(page RenderedPage, filter *URLFilter) iter.Seq[ThumbnailRef]
}

// URLFilter specifies patterns for including/excluding URLs.
type URLFilter struct {
	// Include patterns - if set, only URLs matching at least one pattern are included.
	Include []*regexp.Regexp

	// Exclude patterns - URLs matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// NewPrefixFilter returns a filter that accepts URLs starting with prefix.
// An empty prefix returns nil, which accepts everything.
func NewPrefixFilter(prefix string) *URLFilter {
	if prefix == "" {
		return nil
	}
	return &URLFilter{
		Include: []*regexp.Regexp{regexp.MustCompile("^" + regexp.QuoteMeta(prefix))},
	}
}

// CompileURLFilter returns a filter that accepts URLs whose beginning
// matches the regular expression pattern. An empty pattern returns nil.
func CompileURLFilter(pattern string) (*URLFilter, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, Errorf(EINVALID, "invalid thumbnail pattern %q: %v", pattern, err)
	}
	return &URLFilter{Include: []*regexp.Regexp{re}}, nil
}

// Match returns true if the URL passes the filter.
// If the filter is nil, all URLs pass.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	if len(f.Include) > 0 {
		matched := false
		for _, re := range f.Include {
			if re.MatchString(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range f.Exclude {
		if re.MatchString(url) {
			return false
		}
	}

	return true
}

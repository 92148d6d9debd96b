package goquery

import (
	"iter"
	"net/url"

	"github.com/fwojciec/thumbcrawl"
)

// Ensure Extractor implements thumbcrawl.ThumbnailExtractor at compile time.
var _ thumbcrawl.ThumbnailExtractor = (*Extractor)(nil)

// Image attributes holding the image URL, in order of preference.
var sourceAttrs = []string{"src", "data-src", "data-original"}

// Title attributes, in order of preference.
var titleAttrs = []string{"aria-label", "alt", "title"}

// Extractor finds thumbnail images on a rendered page.
type Extractor struct {
	// OnSkip, if set, is called for every img element that is not yielded.
	// src is the resolved URL, or "" when none could be resolved.
	OnSkip func(src string)
}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract yields the images on page whose URL passes filter, in DOM order.
func (x *Extractor) Extract(page thumbcrawl.RenderedPage, filter *thumbcrawl.URLFilter) iter.Seq[thumbcrawl.ThumbnailRef] {
	return func(yield func(thumbcrawl.ThumbnailRef) bool) {
		base, err := url.Parse(page.URL())
		if err != nil {
			base = nil
		}

		for img := range page.FindAll("img") {
			src := firstResolved(base, img, sourceAttrs)
			if src == "" || !filter.Match(src) {
				x.skip(src)
				continue
			}

			ref := thumbcrawl.ThumbnailRef{
				SourceURL: src,
				Title:     firstAttr(img, titleAttrs),
			}
			if a, ok := img.NearestAncestor("a"); ok {
				ref.LinkedPageURL = resolveURL(base, a.Attr("href"))
			}

			if !yield(ref) {
				return
			}
		}
	}
}

func (x *Extractor) skip(src string) {
	if x.OnSkip != nil {
		x.OnSkip(src)
	}
}

func firstResolved(base *url.URL, el thumbcrawl.Element, attrs []string) string {
	for _, name := range attrs {
		if u := resolveURL(base, el.Attr(name)); u != "" {
			return u
		}
	}
	return ""
}

func firstAttr(el thumbcrawl.Element, attrs []string) string {
	for _, name := range attrs {
		if v := el.Attr(name); v != "" {
			return v
		}
	}
	return ""
}

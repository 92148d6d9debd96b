package thumbcrawl

import (
	"context"
	"iter"
)

// Fetcher retrieves rendered HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Fetch navigates to the URL, waits for JavaScript to render,
	// and returns the rendered HTML.
	// The context controls timeout and cancellation.
	// A page that does not settle before its deadline returns ETIMEOUT.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// Renderer loads a URL and exposes the resulting DOM.
type Renderer interface {
	Render(ctx context.Context, url string) (RenderedPage, error)
}

// RenderedPage is a snapshot of a page's DOM after rendering.
type RenderedPage interface {
	// URL returns the address the page was rendered from.
	// Relative attribute values are resolved against it.
	URL() string

	// FindAll returns the elements with the given tag name in document order.
	FindAll(tag string) iter.Seq[Element]

	// Select returns the elements matching a CSS selector in document order.
	Select(selector string) iter.Seq[Element]
}

// Element is a single node of a RenderedPage.
type Element interface {
	// Attr returns the attribute value, or "" if it is absent.
	Attr(name string) string

	// Text returns the element's visible text, trimmed.
	Text() string

	// NearestAncestor returns the closest enclosing element with the
	// given tag name. The bool result is false when there is none.
	NearestAncestor(tag string) (Element, bool)

	// Children returns the direct child elements in document order.
	Children() iter.Seq[Element]
}

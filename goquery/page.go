// Package goquery implements DOM access, thumbnail extraction and pagination
// parsing on top of github.com/PuerkitoBio/goquery.
package goquery

import (
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/thumbcrawl"
	"golang.org/x/net/html"
)

// Ensure Page implements thumbcrawl.RenderedPage at compile time.
var _ thumbcrawl.RenderedPage = (*Page)(nil)

// Page is a parsed snapshot of rendered HTML.
type Page struct {
	url string
	doc *goquery.Document
}

// NewPage parses rendered HTML loaded from pageURL.
func NewPage(pageURL, rendered string) (*Page, error) {
	if _, err := url.Parse(pageURL); err != nil {
		return nil, thumbcrawl.Errorf(thumbcrawl.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return nil, thumbcrawl.Errorf(thumbcrawl.EINVALID, "failed to parse HTML: %v", err)
	}

	return &Page{url: pageURL, doc: doc}, nil
}

// URL returns the address the page was loaded from.
func (p *Page) URL() string {
	return p.url
}

// FindAll returns the elements with the given tag name in document order.
func (p *Page) FindAll(tag string) iter.Seq[thumbcrawl.Element] {
	return p.Select(tag)
}

// Select returns the elements matching selector in document order.
// An invalid selector matches nothing.
func (p *Page) Select(selector string) iter.Seq[thumbcrawl.Element] {
	return each(p.doc.Find(selector))
}

func each(sel *goquery.Selection) iter.Seq[thumbcrawl.Element] {
	return func(yield func(thumbcrawl.Element) bool) {
		sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			return yield(&Element{sel: s})
		})
	}
}

// Ensure Element implements thumbcrawl.Element at compile time.
var _ thumbcrawl.Element = (*Element)(nil)

// Element is a single node of a Page.
type Element struct {
	sel *goquery.Selection
}

// Attr returns the attribute value, or "" if it is absent.
func (e *Element) Attr(name string) string {
	v, _ := e.sel.Attr(name)
	return v
}

// Text returns the element's text content, trimmed.
func (e *Element) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// NearestAncestor walks up the tree to the closest element named tag.
func (e *Element) NearestAncestor(tag string) (thumbcrawl.Element, bool) {
	if len(e.sel.Nodes) == 0 {
		return nil, false
	}
	for n := e.sel.Nodes[0].Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
			return &Element{sel: goquery.NewDocumentFromNode(n).Selection}, true
		}
	}
	return nil, false
}

// Children returns the direct child elements in document order.
func (e *Element) Children() iter.Seq[thumbcrawl.Element] {
	return each(e.sel.Children())
}

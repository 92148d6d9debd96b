package thumbcrawl

import "context"

// PageRange is an inclusive range of result page numbers.
// The zero value means there are no enumerable pages.
type PageRange struct {
	First int
	Last  int
}

// Empty reports whether the range contains no pages.
func (r PageRange) Empty() bool {
	return (r.First == 0 && r.Last == 0) || r.Last < r.First
}

// Len returns the number of pages in the range.
func (r PageRange) Len() int {
	if r.Empty() {
		return 0
	}
	return r.Last - r.First + 1
}

// Validate returns an error if the range is not usable for a crawl.
func (r PageRange) Validate() error {
	if r.First < 0 || r.Last < 0 {
		return Errorf(EINVALID, "page numbers must not be negative")
	}
	if r.Last < r.First {
		return Errorf(EINVALID, "last page %d is before first page %d", r.Last, r.First)
	}
	return nil
}

// PaginationResolver determines the range of result pages a site exposes.
type PaginationResolver interface {
	// ResolvePageRange renders baseURL and reads its pagination control.
	// A render failure or a control without numeric entries yields the
	// empty range and a nil error; only context cancellation is returned.
	ResolvePageRange(ctx context.Context, baseURL string) (PageRange, error)
}

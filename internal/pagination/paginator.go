// Package pagination computes page counts, item ranges and the visible page
// window for a paginated list.
package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPage        = 1
	DefaultPageSize    = 10
	DefaultMaxPageSize = 100

	// pages shown on each side of the current one
	windowDelta = 2
)

// Options configures a Paginator. Zero fields take the defaults.
type Options struct {
	InitialPage     int
	InitialPageSize int
	MaxPageSize     int
}

func (o Options) withDefaults() Options {
	if o.InitialPage < 1 {
		o.InitialPage = DefaultPage
	}
	if o.MaxPageSize < 1 {
		o.MaxPageSize = DefaultMaxPageSize
	}
	if o.InitialPageSize < 1 {
		o.InitialPageSize = DefaultPageSize
	}
	if o.InitialPageSize > o.MaxPageSize {
		o.InitialPageSize = o.MaxPageSize
	}
	return o
}

// Paginator holds the current page, the page size and the total item count.
// It is not safe for concurrent use; owners guard it with their own lock.
type Paginator struct {
	opts        Options
	currentPage int
	pageSize    int
	totalCount  int
	loading     bool
}

// New creates a Paginator with no items
func New(opts Options) *Paginator {
	opts = opts.withDefaults()
	return &Paginator{
		opts:        opts,
		currentPage: opts.InitialPage,
		pageSize:    opts.InitialPageSize,
	}
}

func (p *Paginator) CurrentPage() int { return p.currentPage }
func (p *Paginator) PageSize() int    { return p.pageSize }
func (p *Paginator) TotalCount() int  { return p.totalCount }
func (p *Paginator) MaxPageSize() int { return p.opts.MaxPageSize }
func (p *Paginator) IsLoading() bool  { return p.loading }

// TotalPages is ceil(totalCount/pageSize), or 0 with no items
func (p *Paginator) TotalPages() int {
	return TotalPages(p.totalCount, p.pageSize)
}

// StartItem is the 1-based index of the first item on the current page
func (p *Paginator) StartItem() int {
	if p.totalCount == 0 {
		return 0
	}
	return (p.currentPage-1)*p.pageSize + 1
}

// EndItem is the 1-based index of the last item on the current page
func (p *Paginator) EndItem() int {
	offset := (p.currentPage - 1) * p.pageSize
	return offset + min(p.pageSize, p.totalCount-offset)
}

func (p *Paginator) HasItems() bool        { return p.totalCount > 0 }
func (p *Paginator) HasPreviousPage() bool { return p.currentPage > 1 }
func (p *Paginator) HasNextPage() bool     { return p.currentPage < p.TotalPages() }

// GoToPage moves to page n. It returns false and changes nothing when n is
// outside [1, TotalPages].
func (p *Paginator) GoToPage(n int) bool {
	if n < 1 || n > p.TotalPages() {
		return false
	}
	p.currentPage = n
	return true
}

func (p *Paginator) GoToFirstPage() bool    { return p.GoToPage(1) }
func (p *Paginator) GoToLastPage() bool     { return p.GoToPage(p.TotalPages()) }
func (p *Paginator) GoToPreviousPage() bool { return p.GoToPage(p.currentPage - 1) }
func (p *Paginator) GoToNextPage() bool     { return p.GoToPage(p.currentPage + 1) }

// SetPageSize changes the page size and moves to the page that contains the
// item that used to be first on screen.
func (p *Paginator) SetPageSize(n int) bool {
	if n < 1 || n > p.opts.MaxPageSize {
		return false
	}
	start := p.StartItem()
	p.pageSize = n
	p.currentPage = clamp(ceilDiv(start, n), 1, p.TotalPages())
	return true
}

// UpdateTotalCount sets the item count and pulls the current page back into
// range. Negative counts are treated as zero.
func (p *Paginator) UpdateTotalCount(n int) {
	p.totalCount = max(n, 0)
	p.currentPage = clamp(p.currentPage, 1, p.TotalPages())
}

// SetState replaces page, size and count at once, e.g. from a server
// response. Out of range values are clamped.
func (p *Paginator) SetState(page, pageSize, totalCount int) {
	p.pageSize = clamp(pageSize, 1, p.opts.MaxPageSize)
	p.totalCount = max(totalCount, 0)
	p.currentPage = clamp(page, 1, p.TotalPages())
}

func (p *Paginator) SetLoading(loading bool) { p.loading = loading }

// Reset restores the initial page and size and drops the item count
func (p *Paginator) Reset() {
	p.currentPage = p.opts.InitialPage
	p.pageSize = p.opts.InitialPageSize
	p.totalCount = 0
	p.loading = false
}

// StatusText describes the visible range
func (p *Paginator) StatusText() string {
	if p.totalCount == 0 {
		return "No items"
	}
	return fmt.Sprintf("Showing %d-%d of %d items", p.StartItem(), p.EndItem(), p.totalCount)
}

// PageInfo describes the current page
func (p *Paginator) PageInfo() string {
	if p.TotalPages() == 0 {
		return "Page 0 of 0"
	}
	return fmt.Sprintf("Page %d of %d", p.currentPage, p.TotalPages())
}

// VisiblePages returns the page window for the current state
func (p *Paginator) VisiblePages() []PageItem {
	return VisiblePages(p.currentPage, p.TotalPages())
}

// PageSizeOptions lists the selectable page sizes
func (p *Paginator) PageSizeOptions() []PageSizeOption {
	sizes := []int{5, 10, 20, 50}
	if p.opts.MaxPageSize > 50 {
		sizes = append(sizes, p.opts.MaxPageSize)
	}
	out := make([]PageSizeOption, 0, len(sizes))
	for _, s := range sizes {
		out = append(out, PageSizeOption{Title: fmt.Sprintf("%d per page", s), Value: s})
	}
	return out
}

// ValidatePageInput parses a page number typed by the user. ok is false when
// the input is not a number or is out of range.
func (p *Paginator) ValidatePageInput(input string) (page int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > p.TotalPages() {
		return 0, false
	}
	return n, true
}

// HandleKey maps navigation keys to page moves. It reports whether the key
// was one of ArrowLeft, ArrowRight, Home or End.
func (p *Paginator) HandleKey(key string) bool {
	switch key {
	case "ArrowLeft":
		p.GoToPreviousPage()
	case "ArrowRight":
		p.GoToNextPage()
	case "Home":
		p.GoToFirstPage()
	case "End":
		p.GoToLastPage()
	default:
		return false
	}
	return true
}

// ItemsForCurrentPage returns the slice of items shown on the current page.
// The result shares the backing array with items.
func ItemsForCurrentPage[T any](p *Paginator, items []T) []T {
	return PageSlice(items, p.currentPage, p.pageSize)
}

// PageSlice returns items[(page-1)*size : page*size], bounded by len(items)
func PageSlice[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	return items[start : start+min(size, len(items)-start)]
}

// TotalPages is ceil(totalCount/pageSize) for positive counts and 0 otherwise
func TotalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize < 1 {
		return 0
	}
	return ceilDiv(totalCount, pageSize)
}

func ceilDiv(a, b int) int {
	return a/b + boolToInt(a%b != 0)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// clamp bounds v to [lo, hi]; hi below lo collapses to lo
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Package pagination splits ordered collections into fixed-size pages.
//
// Page numbers are 1-indexed. A requested number that is absent, not an
// integer, or below 1 resolves to the first page; a number past the last
// page resolves to the last page. An empty collection has exactly one,
// empty, page.
package pagination

import (
	"strconv"
	"strings"
)

// DefaultPageSize is used when a Paginator is built with a non-positive size.
const DefaultPageSize = 10

// Window describes one resolved page over a collection of Total items.
type Window struct {
	Number   int `json:"page"`
	NumPages int `json:"num_pages"`
	Total    int `json:"total"`
	PageSize int `json:"page_size"`
}

// Offset is the index of the first item of the window in the full collection.
func (w Window) Offset() int {
	return (w.Number - 1) * w.PageSize
}

// Limit is the maximum number of items in the window.
func (w Window) Limit() int {
	return w.PageSize
}

func (w Window) HasNext() bool {
	return w.Number < w.NumPages
}

func (w Window) HasPrevious() bool {
	return w.Number > 1
}

func (w Window) HasOtherPages() bool {
	return w.HasNext() || w.HasPrevious()
}

func (w Window) NextNumber() int {
	if !w.HasNext() {
		return w.Number
	}
	return w.Number + 1
}

func (w Window) PreviousNumber() int {
	if !w.HasPrevious() {
		return w.Number
	}
	return w.Number - 1
}

// StartIndex is the 1-based index of the first item on the page, 0 if empty.
func (w Window) StartIndex() int {
	if w.Total == 0 {
		return 0
	}
	return w.Offset() + 1
}

// EndIndex is the 1-based index of the last item on the page.
func (w Window) EndIndex() int {
	end := w.Offset() + w.PageSize
	if end > w.Total {
		end = w.Total
	}
	return end
}

// PageRange lists every page number, for rendering page links.
func (w Window) PageRange() []int {
	r := make([]int, w.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// Paginator resolves page windows for a fixed page size.
type Paginator struct {
	PageSize int
}

// New creates a Paginator, falling back to DefaultPageSize for sizes below 1.
func New(pageSize int) Paginator {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Paginator{PageSize: pageSize}
}

// NumPages returns ceil(total / PageSize), and 1 for an empty collection.
func (p Paginator) NumPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Window resolves the requested page number against total items.
func (p Paginator) Window(total int, requested string) Window {
	if total < 0 {
		total = 0
	}
	numPages := p.NumPages(total)
	number, ok := ParseNumber(requested)
	switch {
	case !ok:
		number = 1
	case number > numPages:
		number = numPages
	}
	return Window{
		Number:   number,
		NumPages: numPages,
		Total:    total,
		PageSize: p.PageSize,
	}
}

// ParseNumber parses a page query value. It reports false for absent,
// malformed or non-positive values.
func ParseNumber(requested string) (int, bool) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return 0, false
	}
	n, err := strconv.Atoi(requested)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Page is a window together with the items it contains.
type Page[T any] struct {
	Window
	Items []T `json:"items"`
}

// NewPage builds a page from already-windowed items.
func NewPage[T any](w Window, items []T) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Window: w, Items: items}
}

// Len returns the number of items on the page.
func (p *Page[T]) Len() int {
	return len(p.Items)
}

// Paginate windows an in-memory, already ordered slice.
func Paginate[T any](items []T, pageSize int, requested string) *Page[T] {
	w := New(pageSize).Window(len(items), requested)
	start := w.Offset()
	end := w.EndIndex()
	if start > end {
		start = end
	}
	return NewPage(w, items[start:end])
}

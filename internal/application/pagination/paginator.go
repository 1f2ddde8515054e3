// Package pagination slices ordered feeds into fixed-size, 1-based pages.
//
// All functions are pure: the same (total, size, number) always yields the
// same window. A page number past the last page yields an empty window whose
// number is pinned to NumPages+1, so offsets stay in range for any input.
package pagination

import (
	"strconv"
	"strings"

	model "yatube/internal/domain/models"
)

// FirstPage is used whenever the requested page is absent or malformed.
const FirstPage = 1

// ParsePage reads the ?page= value. Anything that is not a positive integer
// falls back to FirstPage.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return FirstPage
	}
	return n
}

type Window struct {
	Number   int
	Size     int
	Total    int
	NumPages int
}

// NewWindow panics on a non-positive size; the page size comes from
// validated configuration.
func NewWindow(total, size, number int) Window {
	if size <= 0 {
		panic("pagination: page size must be positive")
	}
	if number < 1 {
		number = FirstPage
	}
	if total < 0 {
		total = 0
	}
	numPages := (total + size - 1) / size
	if numPages == 0 {
		numPages = 1
	}
	if number > numPages {
		number = numPages + 1
	}
	return Window{Number: number, Size: size, Total: total, NumPages: numPages}
}

func (w Window) Offset() int {
	return (w.Number - 1) * w.Size
}

// Len is the number of items on this page: Size for full pages, the
// remainder on the last page and zero past the end.
func (w Window) Len() int {
	remaining := w.Total - w.Offset()
	switch {
	case remaining <= 0:
		return 0
	case remaining < w.Size:
		return remaining
	default:
		return w.Size
	}
}

func (w Window) HasNext() bool {
	return w.Number < w.NumPages
}

func (w Window) HasPrevious() bool {
	return w.Number > 1
}

// Slice returns the items of page number of an in-memory feed.
func Slice[T any](items []T, size, number int) []T {
	w := NewWindow(len(items), size, number)
	start := w.Offset()
	if w.Len() == 0 {
		return []T{}
	}
	return items[start : start+w.Len()]
}

// NewPage assembles the page object handed to the rendering layer.
func NewPage(w Window, items []*model.PostDetailed) *model.Page {
	if items == nil {
		items = []*model.PostDetailed{}
	}
	page := &model.Page{
		Items:       items,
		Number:      w.Number,
		NumPages:    w.NumPages,
		TotalItems:  w.Total,
		HasNext:     w.HasNext(),
		HasPrevious: w.HasPrevious(),
	}
	if page.HasNext {
		page.NextNumber = w.Number + 1
	}
	if page.HasPrevious {
		page.PreviousNumber = w.Number - 1
	}
	return page
}

package listing

import (
	"errors"
	"it-solutions-hub/internal/utils"
	"strconv"
	"strings"
)

// Paginator splits Count items into pages of PerPage items.
type Paginator struct {
	Count   int
	PerPage int
}

// NumPages is never less than 1, so an empty listing still has a first page.
func (p Paginator) NumPages() int {
	return max(utils.CalculateTotalPages(p.Count, p.PerPage), 1)
}

// Number resolves a raw page parameter to a valid page number.
// Anything that is not an integer yields the first page; out-of-range numbers
// are clamped to the nearest valid page, including those too large for an int.
func (p Paginator) Number(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return p.NumPages()
	}
	if err != nil || n < 1 {
		return 1
	}
	return min(n, p.NumPages())
}

// Bounds returns the offset and length of page number.
func (p Paginator) Bounds(number int) (offset, limit int) {
	offset = (number - 1) * p.PerPage
	return offset, max(min(p.PerPage, p.Count-offset), 0)
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int
	PerPage  int
}

// NewPage slices all items down to the page selected by raw.
func NewPage[T any](all []T, perPage int, raw string) Page[T] {
	p := Paginator{Count: len(all), PerPage: perPage}
	number := p.Number(raw)
	offset, limit := p.Bounds(number)

	return Page[T]{
		Items:    all[offset : offset+limit],
		Number:   number,
		NumPages: p.NumPages(),
		Count:    len(all),
		PerPage:  perPage,
	}
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page[T]) NextPageNumber() int {
	return min(p.Number+1, p.NumPages)
}

func (p Page[T]) PreviousPageNumber() int {
	return max(p.Number-1, 1)
}

// PageRange lists all page numbers, for rendering the pager.
func (p Page[T]) PageRange() []int {
	numbers := make([]int, 0, p.NumPages)
	for i := 1; i <= p.NumPages; i++ {
		numbers = append(numbers, i)
	}
	return numbers
}

package listview

import (
	"slices"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	// Asc sorts in ascending order.
	Asc Direction = "asc"
	// Desc sorts in descending order.
	Desc Direction = "desc"
)

// Field extracts one searchable string from an item. The bool is false when
// the value is absent, which never matches a search term.
type Field[T any] func(item T) (string, bool)

// Compare orders two items like strings.Compare.
type Compare[T any] func(a, b T) int

// Config describes how one screen searches, sorts and pages its items.
type Config[T any] struct {
	// PageSize is the fixed number of rows per page.
	PageSize int
	// SearchFields are matched case-insensitively against the search term.
	SearchFields []Field[T]
	// Sorters maps a sort field key to its comparator. Unknown keys leave
	// the order untouched.
	Sorters map[string]Compare[T]
}

// Result is one processed page plus the totals needed for a pager.
type Result[T any] struct {
	Items      []T
	Total      int
	TotalPages int
	PageSize   int
	State      State
}

// HasPrev reports whether a previous page link should render.
func (r Result[T]) HasPrev() bool {
	return r.State.Page > 1
}

// HasNext reports whether a next page link should render.
func (r Result[T]) HasNext() bool {
	return r.State.Page < r.TotalPages
}

// OutOfRange reports whether the requested page lies past the last page.
func (r Result[T]) OutOfRange() bool {
	return r.Total > 0 && len(r.Items) == 0
}

// Filter keeps the items where at least one field contains term, ignoring case.
// The term is matched as typed, whitespace included. Only the empty term
// returns the input unchanged.
func Filter[T any](items []T, term string, fields []Field[T]) []T {
	needle := strings.ToLower(term)
	if needle == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, needle, fields) {
			out = append(out, item)
		}
	}
	return out
}

func matches[T any](item T, needle string, fields []Field[T]) bool {
	for _, field := range fields {
		if field == nil {
			continue
		}
		value, ok := field(item)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of items. A field with no registered
// comparator yields a copy in the original order.
func Sort[T any](items []T, field string, dir Direction, sorters map[string]Compare[T]) []T {
	out := slices.Clone(items)
	cmp, ok := sorters[field]
	if !ok || cmp == nil {
		return out
	}
	if dir == Desc {
		slices.SortStableFunc(out, func(a, b T) int { return cmp(b, a) })
		return out
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// Paginate returns the 1-indexed page of size items. Pages outside the
// available range are empty.
func Paginate[T any](items []T, page int, size int) []T {
	if size <= 0 || page < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// TotalPages returns the number of pages needed for total items.
func TotalPages(total int, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Render runs filter, sort and paginate for state over items.
func (c Config[T]) Render(items []T, state State) Result[T] {
	state = state.normalized()
	filtered := Filter(items, state.Search, c.SearchFields)
	sorted := Sort(filtered, state.SortField, state.SortDir, c.Sorters)
	return Result[T]{
		Items:      Paginate(sorted, state.Page, c.PageSize),
		Total:      len(sorted),
		TotalPages: TotalPages(len(sorted), c.PageSize),
		PageSize:   c.PageSize,
		State:      state,
	}
}

// CanSort reports whether field has a registered comparator.
func (c Config[T]) CanSort(field string) bool {
	_, ok := c.Sorters[field]
	return ok
}

// LowerCompare builds a comparator over a lowercased string key.
func LowerCompare[T any](key func(T) string) Compare[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

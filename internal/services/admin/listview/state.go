package listview

import (
	"net/url"
	"strconv"
	"strings"

	"go.einride.tech/aip/ordering"
)

// Query parameters that carry list state in deep links.
const (
	ParamSearch  = "q"
	ParamSort    = "sort"
	ParamDir     = "dir"
	ParamOrderBy = "order_by"
	ParamPage    = "page"
)

// State is the per-request list view state decoded from the URL.
type State struct {
	Search    string
	SortField string
	SortDir   Direction
	Page      int
}

// ParseState decodes list state from query values.
//
// A numeric page sets the current page; anything else starts at page 1.
// order_by uses AIP-132 syntax ("name desc") and is only read when sort is
// absent. Malformed ordering is ignored.
func ParseState(values url.Values) State {
	state := State{
		Search:    values.Get(ParamSearch),
		SortField: strings.TrimSpace(values.Get(ParamSort)),
		SortDir:   parseDirection(values.Get(ParamDir)),
		Page:      1,
	}
	if raw := strings.TrimSpace(values.Get(ParamPage)); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			state.Page = page
		}
	}
	if state.SortField == "" {
		if raw := strings.TrimSpace(values.Get(ParamOrderBy)); raw != "" {
			var orderBy ordering.OrderBy
			if err := orderBy.UnmarshalString(raw); err == nil && len(orderBy.Fields) > 0 {
				state.SortField = orderBy.Fields[0].Path
				state.SortDir = Asc
				if orderBy.Fields[0].Desc {
					state.SortDir = Desc
				}
			}
		}
	}
	return state.normalized()
}

func parseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), string(Desc)) {
		return Desc
	}
	return Asc
}

func (s State) normalized() State {
	if s.Page < 1 {
		s.Page = 1
	}
	if s.SortDir != Desc {
		s.SortDir = Asc
	}
	return s
}

// Values encodes the state as query values, omitting defaults.
func (s State) Values() url.Values {
	s = s.normalized()
	values := url.Values{}
	if s.Search != "" {
		values.Set(ParamSearch, s.Search)
	}
	if s.SortField != "" {
		values.Set(ParamSort, s.SortField)
		values.Set(ParamDir, string(s.SortDir))
	}
	if s.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(s.Page))
	}
	return values
}

// URL appends the encoded state to basePath, keeping any extra values.
func (s State) URL(basePath string, extra url.Values) string {
	values := s.Values()
	for key, vals := range extra {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	encoded := values.Encode()
	if encoded == "" {
		return basePath
	}
	return basePath + "?" + encoded
}

// WithPage returns the state moved to page.
func (s State) WithPage(page int) State {
	s.Page = page
	return s
}

// WithSearch returns the state for a new search term, back on page 1.
func (s State) WithSearch(term string) State {
	s.Search = term
	s.Page = 1
	return s
}

// Toggle returns the state after a click on the field's sort header.
// The same field flips direction; a different field starts ascending.
func (s State) Toggle(field string) State {
	if s.SortField == field {
		if s.SortDir == Desc {
			s.SortDir = Asc
		} else {
			s.SortDir = Desc
		}
		return s
	}
	s.SortField = field
	s.SortDir = Asc
	return s
}

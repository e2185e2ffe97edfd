package templates

import (
	"github.com/a-h/templ"
	"github.com/offerboat/admin/internal/services/admin/listview"
)

// Column is one table header. SortURL is empty for columns that do not sort.
type Column struct {
	Label   string
	SortURL string
	// SortDir is set on the column currently driving the order.
	SortDir listview.Direction
}

// Cell is one rendered table value.
type Cell struct {
	Text  string
	URL   string
	Image string
	// Missing renders the "record no longer available" placeholder.
	Missing bool
}

// RowAction is a per-row link or POST button.
type RowAction struct {
	Label   string
	URL     string
	Post    bool
	Confirm string
	Danger  bool
}

// Row is one table row.
type Row struct {
	Cells   []Cell
	Actions []RowAction
}

// HiddenField carries deep-link state through the search form.
type HiddenField struct {
	Name  string
	Value string
}

// ListView is the view model shared by every list screen.
type ListView struct {
	Heading    PageHeading
	Searchable bool
	SearchURL  string
	SearchTerm string
	Hidden     []HiddenField
	Columns    []Column
	Rows       []Row
	Total      int
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
	// FirstPageURL is rendered when OutOfRange is set.
	FirstPageURL string
	OutOfRange   bool
	LoadError    string
	// Extra renders below the table, e.g. collection-level forms.
	Extra templ.Component
}

// ListPage renders a list screen inside the layout.
func ListPage(page PageContext, view ListView) templ.Component {
	return Layout(page, view.Heading.Title, ListContent(page, view))
}

// ListContent renders the list body without the layout chrome.
func ListContent(page PageContext, view ListView) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.child(Heading(view.Heading))
		if view.Searchable {
			hw.child(searchForm(page, view))
		}
		if view.LoadError != "" {
			hw.child(ErrorNotice(view.LoadError))
			hw.child(view.Extra)
			return
		}
		hw.element("p", T(page.Loc, "list.total", view.Total), "class", "list-total")
		hw.child(table(page, view))
		hw.child(pager(page, view))
		hw.child(view.Extra)
	})
}

func searchForm(page PageContext, view ListView) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("form", "method", "get", "action", view.SearchURL, "class", "list-search",
			"hx-get", view.SearchURL,
			"hx-trigger", "input changed from:input[name=q], submit",
			"hx-target", "#main",
			"hx-push-url", "true")
		for _, field := range view.Hidden {
			hw.open("input", "type", "hidden", "name", field.Name, "value", field.Value)
		}
		hw.open("input", "type", "search", "name", listview.ParamSearch, "value", view.SearchTerm,
			"placeholder", T(page.Loc, "list.search_placeholder"), "class", "input input-bordered", "autocomplete", "off")
		hw.close("form")
	})
}

func table(page PageContext, view ListView) templ.Component {
	return component(func(hw *htmlWriter) {
		hasActions := false
		for _, row := range view.Rows {
			if len(row.Actions) > 0 {
				hasActions = true
				break
			}
		}

		hw.open("table", "class", "table table-zebra")
		hw.raw("<thead><tr>")
		for _, column := range view.Columns {
			hw.open("th")
			if column.SortURL == "" {
				hw.text(column.Label)
			} else {
				label := column.Label
				switch column.SortDir {
				case listview.Asc:
					label += " ▲"
				case listview.Desc:
					label += " ▼"
				}
				hw.link(column.SortURL, label, "class", "sort-link")
			}
			hw.close("th")
		}
		if hasActions {
			hw.element("th", T(page.Loc, "list.actions"))
		}
		hw.raw("</tr></thead><tbody>")

		if len(view.Rows) == 0 {
			hw.raw(`<tr><td colspan="` + itoa(len(view.Columns)+1) + `">`)
			if view.OutOfRange {
				hw.text(T(page.Loc, "list.out_of_range"))
				hw.raw(" ")
				hw.link(view.FirstPageURL, T(page.Loc, "list.back_to_first"))
			} else {
				hw.text(T(page.Loc, "list.empty"))
			}
			hw.raw("</td></tr>")
		}
		for _, row := range view.Rows {
			hw.raw("<tr>")
			for _, cell := range row.Cells {
				hw.open("td")
				hw.child(cellContent(page, cell))
				hw.close("td")
			}
			if hasActions {
				hw.open("td", "class", "row-actions")
				for _, action := range row.Actions {
					hw.child(actionButton(action))
				}
				hw.close("td")
			}
			hw.raw("</tr>")
		}
		hw.raw("</tbody></table>")
	})
}

func cellContent(page PageContext, cell Cell) templ.Component {
	return component(func(hw *htmlWriter) {
		switch {
		case cell.Missing:
			hw.element("span", T(page.Loc, "list.missing_record"), "class", "text-muted")
		case cell.Image != "":
			hw.open("img", "src", cell.Image, "alt", cell.Text, "class", "avatar", "loading", "lazy")
		case cell.URL != "":
			hw.link(cell.URL, cell.Text)
		default:
			hw.text(cell.Text)
		}
	})
}

func actionButton(action RowAction) templ.Component {
	return component(func(hw *htmlWriter) {
		class := "btn btn-xs"
		if action.Danger {
			class += " btn-error"
		}
		if !action.Post {
			hw.link(action.URL, action.Label, "class", class)
			return
		}
		attrs := []string{"method", "post", "action", action.URL, "class", "inline"}
		if action.Confirm != "" {
			attrs = append(attrs, "hx-confirm", action.Confirm)
		}
		hw.open("form", attrs...)
		hw.element("button", action.Label, "type", "submit", "class", class)
		hw.close("form")
	})
}

func pager(page PageContext, view ListView) templ.Component {
	return component(func(hw *htmlWriter) {
		if view.TotalPages <= 1 && view.PrevURL == "" {
			return
		}
		hw.open("nav", "class", "join pager", "aria-label", "pagination")
		if view.PrevURL != "" {
			hw.link(view.PrevURL, T(page.Loc, "list.prev"), "class", "join-item btn btn-sm")
		}
		hw.element("span", T(page.Loc, "list.page_of", view.Page, view.TotalPages), "class", "join-item btn btn-sm btn-disabled")
		if view.NextURL != "" {
			hw.link(view.NextURL, T(page.Loc, "list.next"), "class", "join-item btn btn-sm")
		}
		hw.close("nav")
	})
}

// ActionBar renders a row of links or POST buttons outside a table.
func ActionBar(actions []RowAction) templ.Component {
	return component(func(hw *htmlWriter) {
		if len(actions) == 0 {
			return
		}
		hw.open("div", "class", "action-bar")
		for _, action := range actions {
			hw.child(actionButton(action))
		}
		hw.close("div")
	})
}

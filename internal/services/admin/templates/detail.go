package templates

import "github.com/a-h/templ"

// DetailField is one label/value pair on a record page.
type DetailField struct {
	Label   string
	Value   string
	URL     string
	Missing bool
}

// DetailSection groups related fields under a title.
type DetailSection struct {
	Title  string
	Fields []DetailField
}

// ThreadMessage is one entry of a support conversation.
type ThreadMessage struct {
	Sender string
	Text   string
	SentAt string
	Staff  bool
}

// DetailView is the view model shared by every record page.
type DetailView struct {
	Heading   PageHeading
	Missing   bool
	LoadError string
	Sections  []DetailSection
	Images    []string
	Thread    []ThreadMessage
	Actions   []RowAction
	Extra     templ.Component
	// RemoveImageURL renders a remove button under each image when set.
	RemoveImageURL string
}

// DetailPage renders a record page inside the layout.
func DetailPage(page PageContext, view DetailView) templ.Component {
	return Layout(page, view.Heading.Title, component(func(hw *htmlWriter) {
		hw.child(Heading(view.Heading))
		switch {
		case view.LoadError != "":
			hw.child(ErrorNotice(view.LoadError))
			return
		case view.Missing:
			hw.element("p", T(page.Loc, "detail.missing"), "class", "text-muted")
			return
		}
		if len(view.Actions) > 0 {
			hw.open("div", "class", "detail-actions")
			for _, action := range view.Actions {
				hw.child(actionButton(action))
			}
			hw.close("div")
		}
		if len(view.Images) > 0 {
			hw.open("div", "class", "gallery")
			for i, image := range view.Images {
				hw.open("figure")
				hw.open("img", "src", image, "alt", "", "loading", "lazy")
				if view.RemoveImageURL != "" {
					hw.open("form", "method", "post", "action", view.RemoveImageURL,
						"hx-confirm", T(page.Loc, "detail.remove_image_confirm"))
					hw.open("input", "type", "hidden", "name", "imageIndex", "value", itoa(i))
					hw.element("button", T(page.Loc, "detail.remove_image"), "type", "submit", "class", "btn btn-xs btn-error")
					hw.close("form")
				}
				hw.close("figure")
			}
			hw.close("div")
		}
		for _, section := range view.Sections {
			hw.child(detailSection(page, section))
		}
		if len(view.Thread) > 0 {
			hw.open("ol", "class", "thread")
			for _, entry := range view.Thread {
				class := "chat chat-start"
				if entry.Staff {
					class = "chat chat-end"
				}
				hw.open("li", "class", class)
				hw.element("div", entry.Sender, "class", "chat-header")
				hw.element("div", entry.Text, "class", "chat-bubble")
				hw.element("time", entry.SentAt, "class", "chat-footer")
				hw.close("li")
			}
			hw.close("ol")
		}
		hw.child(view.Extra)
	}))
}

func detailSection(page PageContext, section DetailSection) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("section", "class", "card detail-section")
		if section.Title != "" {
			hw.element("h2", section.Title, "class", "card-title")
		}
		hw.open("dl")
		for _, field := range section.Fields {
			hw.element("dt", field.Label)
			hw.open("dd")
			switch {
			case field.Missing:
				hw.element("span", T(page.Loc, "list.missing_record"), "class", "text-muted")
			case field.URL != "":
				hw.link(field.URL, field.Value)
			default:
				hw.text(field.Value)
			}
			hw.close("dd")
		}
		hw.close("dl")
		hw.close("section")
	})
}

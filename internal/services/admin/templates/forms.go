package templates

import "github.com/a-h/templ"

// Input types understood by FormView.
const (
	InputText     = "text"
	InputEmail    = "email"
	InputPassword = "password"
	InputNumber   = "number"
	InputFile     = "file"
	InputSelect   = "select"
	InputTextArea = "textarea"
)

// Option is one select choice.
type Option struct {
	Value string
	Label string
}

// FormField is one labeled input.
type FormField struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Options  []Option
	Required bool
	Error    string
}

// FormView describes a create/update form that posts back to the dashboard.
type FormView struct {
	Title       string
	Action      string
	Multipart   bool
	Fields      []FormField
	SubmitLabel string
	CancelURL   string
	CancelLabel string
	Error       string
}

// FormPage renders a standalone form inside the layout.
func FormPage(page PageContext, view FormView) templ.Component {
	return Layout(page, view.Title, component(func(hw *htmlWriter) {
		hw.child(Heading(PageHeading{Title: view.Title}))
		hw.child(Form(view))
	}))
}

// Form renders the form body.
func Form(view FormView) templ.Component {
	return component(func(hw *htmlWriter) {
		attrs := []string{"method", "post", "action", view.Action, "class", "form-card"}
		if view.Multipart {
			attrs = append(attrs, "enctype", "multipart/form-data", "hx-encoding", "multipart/form-data")
		}
		hw.open("form", attrs...)
		if view.Error != "" {
			hw.child(ErrorNotice(view.Error))
		}
		for _, field := range view.Fields {
			hw.child(formField(field))
		}
		hw.open("div", "class", "form-actions")
		hw.element("button", view.SubmitLabel, "type", "submit", "class", "btn btn-primary")
		if view.CancelURL != "" {
			hw.link(view.CancelURL, view.CancelLabel, "class", "btn btn-ghost")
		}
		hw.close("div")
		hw.close("form")
	})
}

func formField(field FormField) templ.Component {
	return component(func(hw *htmlWriter) {
		id := "field-" + field.Name
		hw.open("div", "class", "form-control")
		hw.element("label", field.Label, "for", id, "class", "label")
		attrs := []string{"id", id, "name", field.Name}
		if field.Required {
			attrs = append(attrs, "required", "required")
		}
		switch field.Type {
		case InputSelect:
			hw.open("select", append(attrs, "class", "select select-bordered")...)
			for _, option := range field.Options {
				optionAttrs := []string{"value", option.Value}
				if option.Value == field.Value {
					optionAttrs = append(optionAttrs, "selected", "selected")
				}
				hw.element("option", option.Label, optionAttrs...)
			}
			hw.close("select")
		case InputTextArea:
			hw.element("textarea", field.Value, append(attrs, "class", "textarea textarea-bordered")...)
		case InputFile:
			hw.open("input", append(attrs, "type", InputFile, "class", "file-input")...)
		default:
			inputType := field.Type
			if inputType == "" {
				inputType = InputText
			}
			attrs = append(attrs, "type", inputType, "class", "input input-bordered")
			if inputType != InputPassword {
				attrs = append(attrs, "value", field.Value)
			}
			hw.open("input", attrs...)
		}
		if field.Error != "" {
			hw.element("span", field.Error, "class", "label-text-alt text-error")
		}
		hw.close("div")
	})
}

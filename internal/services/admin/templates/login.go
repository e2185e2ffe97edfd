package templates

import (
	"github.com/a-h/templ"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
)

// LoginView is the sign-in form state.
type LoginView struct {
	UserName string
	Error    string
	// Locked disables the form while the device is locked out.
	Locked  bool
	Expired bool
}

// LoginPage renders the sign-in screen.
func LoginPage(page PageContext, view LoginView) templ.Component {
	title := T(page.Loc, "login.title")
	return Layout(page, title, component(func(hw *htmlWriter) {
		hw.open("section", "class", "card login-card")
		hw.element("h1", title, "class", "card-title")
		if view.Expired {
			hw.element("div", T(page.Loc, "login.expired"), "class", "alert alert-warning", "role", "status")
		}
		hw.child(ErrorNotice(view.Error))
		hw.open("form", "method", "post", "action", routepath.Login, "hx-boost", "false")
		hw.open("label", "class", "label", "for", "userName")
		hw.text(T(page.Loc, "login.user_name"))
		hw.close("label")
		userAttrs := []string{"id", "userName", "name", "userName", "type", "text", "value", view.UserName,
			"class", "input input-bordered", "autocomplete", "username", "required", "required"}
		passwordAttrs := []string{"id", "password", "name", "password", "type", "password",
			"class", "input input-bordered", "autocomplete", "current-password", "required", "required"}
		if view.Locked {
			userAttrs = append(userAttrs, "disabled", "disabled")
			passwordAttrs = append(passwordAttrs, "disabled", "disabled")
		}
		hw.open("input", userAttrs...)
		hw.open("label", "class", "label", "for", "password")
		hw.text(T(page.Loc, "login.password"))
		hw.close("label")
		hw.open("input", passwordAttrs...)
		buttonAttrs := []string{"type", "submit", "class", "btn btn-primary"}
		if view.Locked {
			buttonAttrs = append(buttonAttrs, "disabled", "disabled")
		}
		hw.element("button", T(page.Loc, "login.submit"), buttonAttrs...)
		hw.close("form")
		hw.close("section")
	}))
}

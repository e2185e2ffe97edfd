package templates

import (
	"strings"

	"github.com/a-h/templ"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
)

const htmxScriptURL = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

type navItem struct {
	key     string
	path    string
	admin   bool
	homeFor string
}

var navItems = []navItem{
	{key: "nav.dashboard", path: routepath.AdminHome, homeFor: "admin"},
	{key: "nav.dashboard", path: routepath.TeamHome, homeFor: "team"},
	{key: "nav.users", path: routepath.Users},
	{key: "nav.team", path: routepath.TeamMembers, admin: true},
	{key: "nav.bookings", path: routepath.Bookings},
	{key: "nav.listings", path: routepath.Listings},
	{key: "nav.offers", path: routepath.CustomOffers},
	{key: "nav.documents", path: routepath.Documents},
	{key: "nav.transactions", path: routepath.Transactions, admin: true},
	{key: "nav.messages", path: routepath.Messages},
}

// ComposePageTitle appends the product name to a page title.
func ComposePageTitle(loc Localizer, title string) string {
	product := T(loc, "app.title")
	title = strings.TrimSpace(title)
	if title == "" || title == product {
		return product
	}
	return title + " | " + product
}

// Layout wraps body in the dashboard chrome. HTMX swaps only read <main>.
func Layout(page PageContext, title string, body templ.Component) templ.Component {
	return component(func(hw *htmlWriter) {
		lang := page.Lang
		if lang == "" {
			lang = "en"
		}
		hw.raw("<!doctype html>")
		hw.open("html", "lang", lang)
		hw.raw("<head>")
		hw.raw(`<meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.element("title", ComposePageTitle(page.Loc, title))
		if seconds := page.secondsUntilExpiry(); seconds >= 0 {
			hw.open("meta", "http-equiv", "refresh", "content", itoa(seconds)+";url="+routepath.Logout+"?"+routepath.ParamExpired+"=1")
		}
		hw.open("link", "rel", "stylesheet", "href", routepath.StaticPrefix+"admin.css")
		hw.open("script", "src", htmxScriptURL, "defer", "defer")
		hw.close("script")
		hw.raw("</head>")
		hw.open("body", "hx-boost", "true")
		if page.SignedIn() {
			hw.child(navBar(page))
		}
		hw.open("main", "id", "main", "class", "container")
		hw.child(flash(page))
		hw.child(body)
		hw.close("main")
		hw.raw("</body></html>")
	})
}

func navBar(page PageContext) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("nav", "class", "navbar")
		hw.element("span", T(page.Loc, "app.title"), "class", "navbar-brand")
		hw.open("ul", "class", "menu menu-horizontal")
		for _, item := range navItems {
			if item.admin && !page.Admin {
				continue
			}
			if item.homeFor == "admin" && !page.Admin || item.homeFor == "team" && page.Admin {
				continue
			}
			class := ""
			if page.CurrentPath == item.path || strings.HasPrefix(page.CurrentPath, item.path+"/") {
				class = "active"
			}
			hw.open("li")
			hw.link(item.path, T(page.Loc, item.key), "class", class)
			hw.close("li")
		}
		hw.close("ul")

		hw.open("div", "id", "notifications", "class", "dropdown",
			"hx-get", routepath.Notifications,
			"hx-trigger", "load, every 30s",
			"hx-swap", "innerHTML")
		hw.element("span", T(page.Loc, "nav.notifications"), "class", "sr-only")
		hw.close("div")

		hw.open("ul", "class", "menu menu-horizontal languages")
		for _, option := range LanguageOptions(page) {
			class := ""
			if option.Active {
				class = "active"
			}
			hw.open("li")
			hw.link(LanguageURL(page, option.Tag), option.Label, "class", class, "hx-boost", "false")
			hw.close("li")
		}
		hw.close("ul")

		hw.open("span", "class", "navbar-user")
		hw.text(page.UserName)
		hw.close("span")
		hw.link(routepath.Logout, T(page.Loc, "nav.logout"), "class", "btn btn-ghost btn-sm", "hx-boost", "false")
		hw.close("nav")
	})
}

func flash(page PageContext) templ.Component {
	return component(func(hw *htmlWriter) {
		if page.Flash != "" {
			hw.element("div", page.Flash, "class", "alert alert-success", "role", "status")
		}
		if page.FlashError != "" {
			hw.element("div", page.FlashError, "class", "alert alert-error", "role", "alert")
		}
	})
}

// ErrorPage renders a standalone failure message inside the layout.
func ErrorPage(page PageContext, title string, message string) templ.Component {
	return Layout(page, title, component(func(hw *htmlWriter) {
		hw.child(Heading(PageHeading{Title: title}))
		hw.element("p", message, "class", "error-message")
	}))
}

package templates

import (
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// PageHeading holds header metadata for pages.
type PageHeading struct {
	// Title is the page heading.
	Title string
	// Breadcrumbs renders a path trail for the page.
	Breadcrumbs []Breadcrumb
	// ActionURL renders a CTA button when set.
	ActionURL string
	// ActionLabel is the CTA button label.
	ActionLabel string
}

// Breadcrumb represents a single breadcrumb item.
type Breadcrumb struct {
	// Label is the visible label.
	Label string
	// URL is the optional navigation target.
	URL string
}

// AppendQueryParam appends a single query parameter to a URL.
func AppendQueryParam(baseURL string, key string, value string) string {
	encodedKey := url.QueryEscape(key)
	encodedValue := url.QueryEscape(value)
	if strings.Contains(baseURL, "?") {
		return baseURL + "&" + encodedKey + "=" + encodedValue
	}
	return baseURL + "?" + encodedKey + "=" + encodedValue
}

// Heading renders the page title with breadcrumbs and the optional CTA.
func Heading(heading PageHeading) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("header", "class", "page-heading")
		if len(heading.Breadcrumbs) > 0 {
			hw.open("nav", "class", "breadcrumbs text-sm", "aria-label", "breadcrumb")
			hw.open("ul")
			for _, crumb := range heading.Breadcrumbs {
				hw.open("li")
				if crumb.URL != "" {
					hw.link(crumb.URL, crumb.Label)
				} else {
					hw.text(crumb.Label)
				}
				hw.close("li")
			}
			hw.close("ul")
			hw.close("nav")
		}
		hw.element("h1", heading.Title, "class", "text-2xl font-semibold")
		if heading.ActionURL != "" {
			hw.link(heading.ActionURL, heading.ActionLabel, "class", "btn btn-primary btn-sm")
		}
		hw.close("header")
	})
}

// LoadingSpinner renders an inline loading indicator.
func LoadingSpinner() templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<span class="loading loading-ring loading-md" aria-hidden="true"></span>`)
	})
}

// LazyLoad renders a placeholder that HTMX replaces with the content at url.
func LazyLoad(url string, message string) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("div", "hx-get", url, "hx-trigger", "load", "hx-swap", "outerHTML")
		hw.child(LoadingSpinner())
		hw.element("span", message, "class", "sr-only")
		hw.close("div")
	})
}

// ErrorNotice renders an inline failure message.
func ErrorNotice(message string) templ.Component {
	return component(func(hw *htmlWriter) {
		if message == "" {
			return
		}
		hw.element("div", message, "class", "alert alert-error", "role", "alert")
	})
}

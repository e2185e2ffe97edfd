package templates

import (
	"github.com/a-h/templ"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
)

// NotificationItem is one entry of the nav bar feed.
type NotificationItem struct {
	ID        string
	Title     string
	Body      string
	CreatedAt string
	Read      bool
	ReadURL   string
	// Link deep-links into the record the notification is about.
	Link string
}

// NotificationsView is the polled feed state.
type NotificationsView struct {
	Items     []NotificationItem
	Unread    int
	LoadError string
}

// NotificationsPanel renders the feed fragment swapped into the nav bar.
func NotificationsPanel(page PageContext, view NotificationsView) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("details", "class", "notifications")
		hw.open("summary", "class", "btn btn-ghost btn-sm")
		hw.text(T(page.Loc, "nav.notifications"))
		if view.Unread > 0 {
			hw.element("span", itoa(view.Unread), "class", "badge badge-primary")
		}
		hw.close("summary")
		hw.open("div", "class", "dropdown-content card")
		if view.LoadError != "" {
			hw.child(ErrorNotice(view.LoadError))
		} else if len(view.Items) == 0 {
			hw.element("p", T(page.Loc, "notifications.empty"), "class", "text-muted")
		} else {
			hw.open("ul", "class", "menu")
			for _, item := range view.Items {
				class := "notification"
				if !item.Read {
					class += " unread"
				}
				hw.open("li", "class", class)
				if item.Link != "" {
					hw.link(item.Link, item.Title, "class", "notification-title")
				} else {
					hw.element("span", item.Title, "class", "notification-title")
				}
				hw.element("p", item.Body)
				hw.element("time", item.CreatedAt)
				if !item.Read && item.ReadURL != "" {
					hw.open("button", "type", "button", "class", "btn btn-xs",
						"hx-post", item.ReadURL, "hx-target", "#notifications", "hx-swap", "innerHTML")
					hw.text(T(page.Loc, "notifications.mark_read"))
					hw.close("button")
				}
				hw.close("li")
			}
			hw.close("ul")
			hw.open("button", "type", "button", "class", "btn btn-xs btn-error",
				"hx-post", routepath.NotificationsClear, "hx-target", "#notifications", "hx-swap", "innerHTML",
				"hx-confirm", T(page.Loc, "notifications.clear_confirm"))
			hw.text(T(page.Loc, "notifications.clear"))
			hw.close("button")
		}
		hw.close("div")
		hw.close("details")
	})
}

// NotificationsPage renders the feed as a standalone page for non-HTMX requests.
func NotificationsPage(page PageContext, view NotificationsView) templ.Component {
	title := T(page.Loc, "nav.notifications")
	return Layout(page, title, component(func(hw *htmlWriter) {
		hw.child(Heading(PageHeading{Title: title}))
		hw.child(NotificationsPanel(page, view))
	}))
}

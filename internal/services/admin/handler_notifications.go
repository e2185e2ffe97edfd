package admin

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/offerboat/admin/internal/services/admin/backend"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	"github.com/offerboat/admin/internal/services/admin/templates"
	sharedhtmx "github.com/offerboat/admin/internal/services/shared/htmx"
)

// handleNotifications serves the polled feed. The nav bar fetches it every
// 30 seconds, so it reads the backend directly instead of the collection cache.
func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	h.renderNotifications(w, r)
}

func (h *Handler) renderNotifications(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := h.loadNotifications(r, loc)

	w.Header().Set("Cache-Control", "no-store")
	if sharedhtmx.IsHTMXRequest(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.NotificationsPanel(page, view).Render(r.Context(), w); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("render notifications")
		}
		return
	}
	renderPage(w, r, templates.NotificationsPage(page, view), templates.ComposePageTitle(loc, templates.T(loc, "nav.notifications")))
}

func (h *Handler) loadNotifications(r *http.Request, loc templates.Localizer) templates.NotificationsView {
	ctx, cancel := backendContext(r)
	defer cancel()
	items, err := h.backend.FetchCollection(ctx, backend.Notifications, principalToken(r))
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("poll notifications")
		return templates.NotificationsView{LoadError: templates.T(loc, backendErrorKey(err, "notifications.load_failed"))}
	}

	view := templates.NotificationsView{Items: make([]templates.NotificationItem, 0, len(items))}
	for _, item := range latestFirst(items, len(items)) {
		entry := notificationItem(item)
		if !entry.Read {
			view.Unread++
		}
		view.Items = append(view.Items, entry)
	}
	return view
}

func notificationItem(item backend.Item) templates.NotificationItem {
	entry := templates.NotificationItem{
		ID:        item.ID(),
		Title:     item.Text("title"),
		Body:      item.Text("body"),
		CreatedAt: formatDate(item.Text("createdAt")),
		Read:      item.Text("read") == "true",
		ReadURL:   routepath.NotificationRead(item.ID()),
	}
	if messageID := item.Text("data.messageId"); messageID != "" {
		entry.Link = routepath.Message(messageID)
	}
	if entry.Title == "" {
		entry.Title = item.DisplayName("userId")
	}
	return entry
}

// handleNotificationRead marks one notification read and re-renders the feed.
func (h *Handler) handleNotificationRead(w http.ResponseWriter, r *http.Request, id string) {
	h.notificationWrite(w, r, http.MethodPut, backend.MarkNotificationReadPath(id), "notifications.read_failed")
}

// handleNotificationsClear deletes every notification of the signed-in staff member.
func (h *Handler) handleNotificationsClear(w http.ResponseWriter, r *http.Request) {
	h.notificationWrite(w, r, http.MethodDelete, backend.PathDeleteAllNotices, "notifications.clear_failed")
}

func (h *Handler) notificationWrite(w http.ResponseWriter, r *http.Request, method, path, failedKey string) {
	if !requirePost(w, r) {
		return
	}
	loc, _ := h.localizer(w, r)
	if !requireSameOrigin(w, r, loc) {
		return
	}

	ctx, cancel := backendContext(r)
	defer cancel()
	if _, err := h.backend.Send(ctx, method, path, nil, principalToken(r)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("path", path).Msg("notification write")
		if !sharedhtmx.IsHTMXRequest(r) {
			redirectWithError(w, r, routepath.Notifications, templates.T(loc, backendErrorKey(err, failedKey)))
			return
		}
	}
	if sharedhtmx.IsHTMXRequest(r) {
		h.renderNotifications(w, r)
		return
	}
	sharedhtmx.Redirect(w, r, routepath.Notifications)
}

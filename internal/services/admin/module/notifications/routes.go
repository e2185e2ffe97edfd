package notifications

import (
	"net/http"
	"strings"

	sharedpath "github.com/offerboat/admin/internal/services/admin/module/sharedpath"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	sharedroute "github.com/offerboat/admin/internal/services/shared/route"
)

// Service defines notification route handlers consumed by this route module.
type Service interface {
	HandleNotifications(w http.ResponseWriter, r *http.Request)
	HandleNotificationsClear(w http.ResponseWriter, r *http.Request)
	HandleNotificationRead(w http.ResponseWriter, r *http.Request, notificationID string)
}

// RegisterRoutes wires notification routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.Notifications, service.HandleNotifications)
	mux.HandleFunc(routepath.NotificationsClear, service.HandleNotificationsClear)
	mux.HandleFunc(routepath.NotificationsPrefix, func(w http.ResponseWriter, r *http.Request) {
		HandleNotificationPath(w, r, service)
	})
}

// HandleNotificationPath parses notification subroutes and dispatches to service handlers.
func HandleNotificationPath(w http.ResponseWriter, r *http.Request, service Service) {
	if service == nil {
		http.NotFound(w, r)
		return
	}
	if sharedroute.RedirectTrailingSlash(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, routepath.NotificationsPrefix)
	parts := sharedpath.SplitPathParts(path)
	if len(parts) == 2 && parts[1] == "read" {
		service.HandleNotificationRead(w, r, parts[0])
		return
	}
	http.NotFound(w, r)
}

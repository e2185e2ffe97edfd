package session

import (
	"net/http"

	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
)

// Service defines sign-in route handlers consumed by this route module.
type Service interface {
	HandleLogin(w http.ResponseWriter, r *http.Request)
	HandleLogout(w http.ResponseWriter, r *http.Request)
	HandlePushToken(w http.ResponseWriter, r *http.Request)
}

// RegisterRoutes wires sign-in routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.Login, service.HandleLogin)
	mux.HandleFunc(routepath.Logout, service.HandleLogout)
	mux.HandleFunc(routepath.PushToken, service.HandlePushToken)
}

package dashboard

import (
	"net/http"

	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
)

// Service defines dashboard route handlers consumed by this route module.
type Service interface {
	HandleRoot(w http.ResponseWriter, r *http.Request)
	HandleAdminDashboard(w http.ResponseWriter, r *http.Request)
	HandleTeamDashboard(w http.ResponseWriter, r *http.Request)
}

// RegisterRoutes wires dashboard routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.Root, service.HandleRoot)
	mux.HandleFunc(routepath.AdminHome, service.HandleAdminDashboard)
	mux.HandleFunc(routepath.TeamHome, service.HandleTeamDashboard)
}

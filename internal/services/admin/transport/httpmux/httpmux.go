// Package httpmux mounts the dashboard's top-level handlers on the root mux.
package httpmux

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"

	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
)

// MountStatic serves the embedded stylesheet and scripts under /static/.
func MountStatic(rootMux *http.ServeMux, staticFS fs.FS, wrap func(http.Handler) http.Handler) {
	if rootMux == nil || staticFS == nil {
		return
	}
	staticHandler := http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(staticFS)))
	if wrap != nil {
		staticHandler = wrap(staticHandler)
	}
	rootMux.Handle(routepath.StaticPrefix, staticHandler)
}

// MountHealth answers GET /healthz without a session. It returns 503 while
// check fails.
func MountHealth(rootMux *http.ServeMux, check func(context.Context) error) {
	if rootMux == nil {
		return
	}
	rootMux.HandleFunc("GET "+routepath.Healthz, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if check != nil {
			if err := check(r.Context()); err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable\n"))
				return
			}
		}
		_, _ = w.Write([]byte("ok\n"))
	})
}

// MountAdminRoutes hands every other path to the authenticated dashboard.
func MountAdminRoutes(rootMux *http.ServeMux, adminRoutes http.Handler) {
	if rootMux == nil || adminRoutes == nil {
		return
	}
	rootMux.Handle(routepath.Root, adminRoutes)
}

package httpmux

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestMountStaticServesAssetsThroughWrapper(t *testing.T) {
	rootMux := http.NewServeMux()
	MountStatic(rootMux, fstest.MapFS{"admin.css": &fstest.MapFile{Data: []byte("body{}")}}, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=60")
			next.ServeHTTP(w, r)
		})
	})

	rec := serve(rootMux, http.MethodGet, "/static/admin.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
}

func TestMountHealth(t *testing.T) {
	rootMux := http.NewServeMux()
	var failing error
	MountHealth(rootMux, func(context.Context) error { return failing })

	rec := serve(rootMux, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	failing = errors.New("database is locked")
	rec = serve(rootMux, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(rootMux, http.MethodPost, "/healthz")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMountAdminRoutesCatchesEverythingElse(t *testing.T) {
	rootMux := http.NewServeMux()
	MountHealth(rootMux, nil)
	MountAdminRoutes(rootMux, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("admin:" + r.URL.Path))
	}))

	assert.Equal(t, "admin:/bookings", serve(rootMux, http.MethodGet, "/bookings").Body.String())
	assert.Equal(t, "ok\n", serve(rootMux, http.MethodGet, "/healthz").Body.String())
}

func TestMountNoopsOnNilInputs(t *testing.T) {
	rootMux := http.NewServeMux()
	assert.NotPanics(t, func() {
		MountStatic(nil, fstest.MapFS{}, nil)
		MountStatic(rootMux, fs.FS(nil), nil)
		MountHealth(nil, nil)
		MountAdminRoutes(nil, http.NewServeMux())
		MountAdminRoutes(rootMux, nil)
	})
}

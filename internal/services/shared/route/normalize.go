// Package route holds path helpers shared by the dashboard's route modules.
package route

import (
	"net/http"
	"strings"
)

// RedirectTrailingSlash sends "/users/?page=2" to "/users?page=2" and reports
// whether it wrote a response. List state lives in the query string, so the
// query is carried over. Writes get a 308 so the form body is replayed.
func RedirectTrailingSlash(w http.ResponseWriter, r *http.Request) bool {
	if w == nil || r == nil || r.URL == nil {
		return false
	}

	path := r.URL.Path
	canonical := strings.TrimRight(path, "/")
	if canonical == "" {
		canonical = "/"
	}
	if canonical == path {
		return false
	}
	if r.URL.RawQuery != "" {
		canonical += "?" + r.URL.RawQuery
	}

	status := http.StatusMovedPermanently
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		status = http.StatusPermanentRedirect
	}
	http.Redirect(w, r, canonical, status)
	return true
}

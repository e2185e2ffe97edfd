// Package htmx renders pages so boosted HTMX navigation and plain browser
// requests share one set of handlers.
package htmx

import (
	"bytes"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
)

const (
	// RequestHeader is set by HTMX on every request it issues.
	RequestHeader = "HX-Request"
	// RedirectHeader asks HTMX to perform a full client-side navigation.
	RedirectHeader = "HX-Redirect"
)

var (
	mainOpen  = []byte("<main")
	mainClose = []byte("</main>")
	titleOpen = []byte("<title")
)

// IsHTMXRequest reports whether the request was initiated by HTMX.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(RequestHeader), "true")
}

// Redirect sends HTMX requests to target through HX-Redirect and everything
// else through a 303 See Other.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if w == nil {
		return
	}
	if IsHTMXRequest(r) {
		w.Header().Set(RedirectHeader, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// TitleTag formats an escaped <title> element, or nothing for a blank title.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(title) + "</title>"
}

// RenderPage writes the full page for browser requests. HTMX requests get
// the contents of the page's <main> element, led by a <title> tag so the
// tab title follows the swap.
func RenderPage(w http.ResponseWriter, r *http.Request, page templ.Component, title string) {
	if page == nil {
		return
	}
	if !IsHTMXRequest(r) {
		templ.Handler(page).ServeHTTP(w, r)
		return
	}

	var buf bytes.Buffer
	if err := page.Render(r.Context(), &buf); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("render htmx fragment")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	body := buf.Bytes()
	if content, ok := MainContent(body); ok {
		body = content
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", RequestHeader)
	if tag := TitleTag(title); tag != "" && !bytes.Contains(bytes.ToLower(body), titleOpen) {
		_, _ = w.Write([]byte(tag))
	}
	_, _ = w.Write(body)
}

// MainContent returns what sits between the first <main ...> and its closing
// tag. Pages nest no <main> elements.
func MainContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, mainOpen)
	if start < 0 {
		return nil, false
	}
	openEnd := bytes.IndexByte(body[start:], '>')
	if openEnd < 0 {
		return nil, false
	}
	contentStart := start + openEnd + 1
	end := bytes.Index(body[contentStart:], mainClose)
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}

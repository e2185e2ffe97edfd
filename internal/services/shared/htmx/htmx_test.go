package htmx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullPage = `<!doctype html><html><head><title>Users | OfferBoat</title></head>` +
	`<body><nav>menu</nav><main class="container"><h1>Users</h1></main></body></html>`

func staticPage(body string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, body)
		return err
	})
}

func htmxRequest(target string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.Header.Set(RequestHeader, "true")
	return r
}

func TestIsHTMXRequest(t *testing.T) {
	assert.False(t, IsHTMXRequest(nil))
	assert.False(t, IsHTMXRequest(httptest.NewRequest(http.MethodGet, "/users", nil)))
	assert.True(t, IsHTMXRequest(htmxRequest("/users")))
}

func TestTitleTag(t *testing.T) {
	assert.Equal(t, "<title>Bookings &lt;Admin&gt;</title>", TitleTag(`Bookings <Admin>`))
	assert.Empty(t, TitleTag("  "))
}

func TestRenderPageServesFullDocumentToBrowsers(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderPage(rec, httptest.NewRequest(http.MethodGet, "/users", nil), staticPage(fullPage), "Users")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fullPage, rec.Body.String())
}

func TestRenderPageSendsMainContentToHTMX(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderPage(rec, htmxRequest("/users"), staticPage(`<html><body><nav>menu</nav><main><h1>Users</h1></main></body></html>`), "Users | OfferBoat")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<title>Users | OfferBoat</title><h1>Users</h1>", rec.Body.String())
	assert.Equal(t, RequestHeader, rec.Header().Get("Vary"))
}

func TestRenderPageKeepsFragmentTitle(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderPage(rec, htmxRequest("/users"), staticPage(`<main><title>Own</title><p>x</p></main>`), "Other")

	assert.Equal(t, "<title>Own</title><p>x</p>", rec.Body.String())
}

func TestRenderPageReportsRenderFailure(t *testing.T) {
	failing := templ.ComponentFunc(func(context.Context, io.Writer) error {
		return errors.New("boom")
	})
	rec := httptest.NewRecorder()
	RenderPage(rec, htmxRequest("/users"), failing, "Users")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMainContent(t *testing.T) {
	content, ok := MainContent([]byte(fullPage))
	require.True(t, ok)
	assert.Equal(t, "<h1>Users</h1>", string(content))

	_, ok = MainContent([]byte("<div>no main</div>"))
	assert.False(t, ok)
	_, ok = MainContent([]byte("<main>unterminated"))
	assert.False(t, ok)
}

func TestRedirect(t *testing.T) {
	rec := httptest.NewRecorder()
	Redirect(rec, httptest.NewRequest(http.MethodPost, "/users/u1/delete", nil), "/users")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	Redirect(rec, htmxRequest("/users/u1/delete"), "/users")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/users", rec.Header().Get(RedirectHeader))
	assert.Empty(t, rec.Header().Get("Location"))
}

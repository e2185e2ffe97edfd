package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/message"

	"github.com/offerboat/admin/internal/platform/requestctx"
	"github.com/offerboat/admin/internal/platform/timeouts"
	"github.com/offerboat/admin/internal/services/admin/backend"
	"github.com/offerboat/admin/internal/services/admin/collectioncache"
	"github.com/offerboat/admin/internal/services/admin/i18n"
	collectionsmodule "github.com/offerboat/admin/internal/services/admin/module/collections"
	dashboardmodule "github.com/offerboat/admin/internal/services/admin/module/dashboard"
	notificationsmodule "github.com/offerboat/admin/internal/services/admin/module/notifications"
	sessionmodule "github.com/offerboat/admin/internal/services/admin/module/session"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	"github.com/offerboat/admin/internal/services/admin/session"
	"github.com/offerboat/admin/internal/services/admin/static"
	"github.com/offerboat/admin/internal/services/admin/templates"
	"github.com/offerboat/admin/internal/services/admin/transport/httpmux"
	sharedhtmx "github.com/offerboat/admin/internal/services/shared/htmx"
)

// maxUploadBytes caps multipart form bodies forwarded to the backend.
const maxUploadBytes = 16 << 20

// Backend is the marketplace API surface the dashboard calls.
type Backend interface {
	FetchCollection(ctx context.Context, endpoint backend.Endpoint, token string) ([]backend.Item, error)
	FetchItem(ctx context.Context, path string, token string) (backend.Item, error)
	Send(ctx context.Context, method string, path string, body []byte, token string) (backend.Item, error)
	SendForm(ctx context.Context, method string, path string, form *backend.Form, token string) (backend.Item, error)
	UpdatePushToken(ctx context.Context, userName, pushToken, bearer string) error
}

// SessionService signs staff in and resolves their sessions.
type SessionService interface {
	SignIn(ctx context.Context, clientKey, userName, password string) (session.Session, error)
	Lockout(ctx context.Context, clientKey string) (session.Lockout, error)
	Resolve(ctx context.Context, sessionID string) (session.Session, error)
	SignOut(ctx context.Context, sessionID string) error
}

// HandlerConfig wires the handler's collaborators.
type HandlerConfig struct {
	Backend  Backend
	Sessions SessionService
	// Cache holds fetched collections. A fresh cache is used when nil.
	Cache *collectioncache.Cache[[]backend.Item]
	// SecureCookies marks session cookies Secure regardless of the request scheme.
	SecureCookies bool
	// Health reports whether local dependencies are usable. Nil always passes.
	Health func(context.Context) error
	Now    func() time.Time
}

// Handler routes dashboard requests.
type Handler struct {
	backend       Backend
	sessions      SessionService
	cache         *collectioncache.Cache[[]backend.Item]
	secureCookies bool
	health        func(context.Context) error
	now           func() time.Time
}

// NewHandler builds the HTTP handler for the dashboard.
func NewHandler(cfg HandlerConfig) http.Handler {
	return newHandler(cfg).routes()
}

func newHandler(cfg HandlerConfig) *Handler {
	cache := cfg.Cache
	if cache == nil {
		cache = collectioncache.New[[]backend.Item](collectioncache.WithRefreshTimeout(timeouts.CacheRefresh))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		backend:       cfg.Backend,
		sessions:      cfg.Sessions,
		cache:         cache,
		secureCookies: cfg.SecureCookies,
		health:        cfg.Health,
		now:           now,
	}
}

// routes wires the HTTP routes for the dashboard.
func (h *Handler) routes() http.Handler {
	appMux := http.NewServeMux()
	dashboardmodule.RegisterRoutes(appMux, newDashboardModuleService(h))
	sessionmodule.RegisterRoutes(appMux, newSessionModuleService(h))
	notificationsmodule.RegisterRoutes(appMux, newNotificationsModuleService(h))
	collectionsmodule.RegisterRoutes(appMux, newCollectionsModuleService(h))

	rootMux := http.NewServeMux()
	httpmux.MountStatic(rootMux, static.FS, withStaticCache)
	httpmux.MountHealth(rootMux, h.health)
	httpmux.MountAdminRoutes(rootMux, h.requireAuth(appMux))
	return withRequestLog(withRecover(rootMux))
}

func withStaticCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) localizer(w http.ResponseWriter, r *http.Request) (*message.Printer, string) {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return i18n.Printer(tag), tag.String()
}

func (h *Handler) pageContext(lang string, loc *message.Printer, r *http.Request) templates.PageContext {
	page := templates.PageContext{
		Lang: lang,
		Loc:  loc,
		Now:  h.now(),
	}
	if r == nil {
		return page
	}
	page.CurrentPath = r.URL.Path
	page.CurrentQuery = r.URL.RawQuery
	query := r.URL.Query()
	page.Flash = strings.TrimSpace(query.Get(routepath.ParamMessage))
	page.FlashError = strings.TrimSpace(query.Get(routepath.ParamError))
	if principal, ok := requestctx.PrincipalFromContext(r.Context()); ok {
		page.UserName = principal.UserName
		page.Role = principal.Role
		page.Admin = principal.Role == backend.RoleAdmin
		page.SessionExpiresAt = principal.ExpiresAt
	}
	return page
}

// backendContext bounds a backend call made on behalf of r.
func backendContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.BackendRequest)
}

// principalToken returns the bearer token of the signed-in staff member.
func principalToken(r *http.Request) string {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	return principal.Token
}

// collection reads endpoint through the shared cache.
func (h *Handler) collection(r *http.Request, endpoint backend.Endpoint) collectioncache.Entry[[]backend.Item] {
	token := principalToken(r)
	return h.cache.Get(r.Context(), endpoint.Key(), func(ctx context.Context) ([]backend.Item, error) {
		return h.backend.FetchCollection(ctx, endpoint, token)
	})
}

// invalidate drops cached collections after a successful mutation.
func (h *Handler) invalidate(r *http.Request, endpoints ...backend.Endpoint) {
	ctx := context.WithoutCancel(r.Context())
	for _, endpoint := range endpoints {
		h.cache.Invalidate(ctx, endpoint.Key())
	}
}

// renderPage renders page components with consistent HTMX and non-HTMX behavior.
func renderPage(w http.ResponseWriter, r *http.Request, full templ.Component, title string) {
	sharedhtmx.RenderPage(w, r, full, title)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, messageKey string) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	title := loc.Sprintf("error.title")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorPage(page, title, loc.Sprintf(messageKey)).Render(r.Context(), w); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("render error page")
	}
}

// requirePost rejects requests that are not POST.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

// requireGet rejects requests that are not GET or HEAD.
func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func requireSameOrigin(w http.ResponseWriter, r *http.Request, loc *message.Printer) bool {
	if r == nil {
		http.Error(w, loc.Sprintf("error.csrf_invalid"), http.StatusForbidden)
		return false
	}
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		if !sameOrigin(origin, r) {
			http.Error(w, loc.Sprintf("error.csrf_invalid"), http.StatusForbidden)
			return false
		}
		return true
	}
	if referer := strings.TrimSpace(r.Referer()); referer != "" {
		if !sameOrigin(referer, r) {
			http.Error(w, loc.Sprintf("error.csrf_invalid"), http.StatusForbidden)
			return false
		}
		return true
	}
	http.Error(w, loc.Sprintf("error.csrf_invalid"), http.StatusForbidden)
	return false
}

func sameOrigin(rawURL string, r *http.Request) bool {
	if rawURL == "" || rawURL == "null" || r == nil {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	if !strings.EqualFold(parsed.Host, r.Host) {
		return false
	}
	if parsed.Scheme != "" {
		return strings.EqualFold(parsed.Scheme, requestScheme(r))
	}
	return true
}

func requestScheme(r *http.Request) string {
	if r == nil {
		return "http"
	}
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		parts := strings.Split(proto, ",")
		return strings.ToLower(strings.TrimSpace(parts[0]))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func isHTTPS(r *http.Request) bool {
	return requestScheme(r) == "https"
}

// redirectWithFlash sends the browser to target carrying a flash message.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target string, text string) {
	sharedhtmx.Redirect(w, r, routepath.WithMessage(target, routepath.ParamMessage, text))
}

// redirectWithError sends the browser to target carrying a failure message.
func redirectWithError(w http.ResponseWriter, r *http.Request, target string, text string) {
	sharedhtmx.Redirect(w, r, routepath.WithMessage(target, routepath.ParamError, text))
}

// backendErrorKey maps a failed backend call onto a localized message key.
func backendErrorKey(err error, fallback string) string {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return "error.not_found"
	case backend.KindOf(err) == backend.KindTransport:
		return "error.backend_unavailable"
	default:
		return fallback
	}
}

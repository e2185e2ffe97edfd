package admin

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/offerboat/admin/internal/platform/requestctx"
	"github.com/offerboat/admin/internal/services/admin/backend"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	"github.com/offerboat/admin/internal/services/admin/session"
	sharedhtmx "github.com/offerboat/admin/internal/services/shared/htmx"
)

const (
	// sessionCookieName addresses the stored staff session.
	sessionCookieName = "ob_session"
	// deviceCookieName keys failed sign-in counters to one browser.
	deviceCookieName = "ob_device"
	// deviceCookieTTL keeps the device key across sign-outs.
	deviceCookieTTL = 365 * 24 * time.Hour
)

// requireAuth resolves the session cookie on every protected route.
//
// Missing or expired sessions clear the cookie and send the browser to the
// login screen. Valid sessions are threaded through the request context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAuthExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if h.sessions == nil {
			http.Error(w, "sessions are not configured", http.StatusServiceUnavailable)
			return
		}

		current, err := h.sessions.Resolve(r.Context(), cookieValue(r, sessionCookieName))
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) && !errors.Is(err, session.ErrExpired) {
				log.Ctx(r.Context()).Error().Err(err).Msg("resolve session")
			}
			h.clearSessionCookie(w, r)
			target := routepath.Login
			if errors.Is(err, session.ErrExpired) {
				target += "?" + routepath.ParamExpired + "=1"
			}
			sharedhtmx.Redirect(w, r, target)
			return
		}

		ctx := requestctx.WithPrincipal(r.Context(), requestctx.Principal{
			SessionID: current.ID,
			UserName:  current.UserName,
			Role:      current.Role,
			Token:     current.Token,
			ExpiresAt: current.ExpiresAt,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isAuthExempt returns true for paths that should bypass authentication.
func isAuthExempt(path string) bool {
	return strings.HasPrefix(path, routepath.StaticPrefix) ||
		path == routepath.Login ||
		path == routepath.Logout
}

// requireAdmin renders 403 for team members on admin-only screens.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	principal, ok := requestctx.PrincipalFromContext(r.Context())
	if ok && principal.Role == backend.RoleAdmin {
		return true
	}
	h.renderError(w, r, http.StatusForbidden, "error.forbidden")
	return false
}

func cookieValue(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func (h *Handler) secureCookie(r *http.Request) bool {
	return h.secureCookies || isHTTPS(r)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, current session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    current.ID,
		Path:     "/",
		Expires:  current.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// deviceKey returns the browser's lockout key, issuing one when absent.
func (h *Handler) deviceKey(w http.ResponseWriter, r *http.Request) string {
	if key := cookieValue(r, deviceCookieName); key != "" {
		return key
	}
	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     deviceCookieName,
		Value:    key,
		Path:     "/",
		MaxAge:   int(deviceCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
	return key
}

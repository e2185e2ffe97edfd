package admin

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/offerboat/admin/internal/platform/requestctx"
	"github.com/offerboat/admin/internal/services/admin/backend"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	"github.com/offerboat/admin/internal/services/admin/session"
	"github.com/offerboat/admin/internal/services/admin/templates"
	sharedhtmx "github.com/offerboat/admin/internal/services/shared/htmx"
)

// maxPushTokenBytes caps the push registration body.
const maxPushTokenBytes = 4 << 10

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleLoginPage(w, r)
	case http.MethodPost:
		h.handleLoginSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		http.Error(w, "sessions are not configured", http.StatusServiceUnavailable)
		return
	}
	if current, err := h.sessions.Resolve(r.Context(), cookieValue(r, sessionCookieName)); err == nil {
		http.Redirect(w, r, current.HomePath(), http.StatusSeeOther)
		return
	}

	loc, lang := h.localizer(w, r)
	view := templates.LoginView{Expired: r.URL.Query().Get(routepath.ParamExpired) != ""}
	lockout, err := h.sessions.Lockout(r.Context(), h.deviceKey(w, r))
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("read login lockout")
	} else if lockout.Locked {
		view.Locked = true
		view.Error = loc.Sprintf("login.locked")
	}
	h.renderLogin(w, r, lang, loc, view)
}

func (h *Handler) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		http.Error(w, "sessions are not configured", http.StatusServiceUnavailable)
		return
	}
	loc, lang := h.localizer(w, r)
	if !requireSameOrigin(w, r, loc) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, lang, loc, templates.LoginView{Error: loc.Sprintf("error.form_invalid")})
		return
	}

	userName := strings.TrimSpace(r.FormValue("userName"))
	password := r.FormValue("password")
	view := templates.LoginView{UserName: userName}
	if userName == "" || password == "" {
		view.Error = loc.Sprintf("login.required")
		h.renderLogin(w, r, lang, loc, view)
		return
	}

	clientKey := h.deviceKey(w, r)
	current, err := h.sessions.SignIn(r.Context(), clientKey, userName, password)
	if err == nil {
		h.setSessionCookie(w, r, current)
		log.Ctx(r.Context()).Info().Str("user", current.UserName).Str("role", current.Role).Msg("staff signed in")
		http.Redirect(w, r, current.HomePath(), http.StatusSeeOther)
		return
	}

	switch {
	case errors.Is(err, session.ErrLocked):
		view.Locked = true
		view.Error = loc.Sprintf("login.locked")
	case errors.Is(err, backend.ErrInvalidCredentials):
		view.Error = loc.Sprintf("login.invalid")
		if lockout, lockErr := h.sessions.Lockout(r.Context(), clientKey); lockErr == nil && lockout.Locked {
			view.Locked = true
			view.Error = loc.Sprintf("login.locked")
		}
	case errors.Is(err, session.ErrExpired), errors.Is(err, session.ErrTokenExpiry):
		view.Error = loc.Sprintf("login.token_invalid")
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("sign in")
		view.Error = loc.Sprintf(backendErrorKey(err, "login.failed"))
		if lockout, lockErr := h.sessions.Lockout(r.Context(), clientKey); lockErr == nil && lockout.Locked {
			view.Locked = true
		}
	}
	h.renderLogin(w, r, lang, loc, view)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, lang string, loc templates.Localizer, view templates.LoginView) {
	page := templates.PageContext{
		Lang:         lang,
		Loc:          loc,
		CurrentPath:  r.URL.Path,
		CurrentQuery: r.URL.RawQuery,
		Now:          h.now(),
	}
	renderPage(w, r, templates.LoginPage(page, view), templates.ComposePageTitle(loc, loc.Sprintf("login.title")))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if sessionID := cookieValue(r, sessionCookieName); sessionID != "" && h.sessions != nil {
		if err := h.sessions.SignOut(r.Context(), sessionID); err != nil && !errors.Is(err, session.ErrNoSession) {
			log.Ctx(r.Context()).Error().Err(err).Msg("sign out")
		}
	}
	h.clearSessionCookie(w, r)

	target := routepath.Login
	if r.URL.Query().Get(routepath.ParamExpired) != "" {
		target += "?" + routepath.ParamExpired + "=1"
	}
	sharedhtmx.Redirect(w, r, target)
}

// handlePushToken registers the browser's push token for the signed-in staff
// member. The body is either JSON {"token": "..."} or a form field.
func (h *Handler) handlePushToken(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	principal, ok := requestctx.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	token, err := pushTokenFromRequest(r)
	if err != nil || token == "" {
		http.Error(w, "push token is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := backendContext(r)
	defer cancel()
	if err := h.backend.UpdatePushToken(ctx, principal.UserName, token, principal.Token); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("update push token")
		http.Error(w, "push token registration failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pushTokenFromRequest(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPushTokenBytes))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(gjson.GetBytes(body, "token").String()), nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.FormValue("token")), nil
}

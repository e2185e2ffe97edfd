package admin

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/offerboat/admin/internal/services/admin/backend"
	collectionsmodule "github.com/offerboat/admin/internal/services/admin/module/collections"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	"github.com/offerboat/admin/internal/services/admin/templates"
)

// supportSender marks thread entries written by staff.
const supportSender = "support"

// Record-level actions.
const (
	actionDelete               = "delete"
	actionEdit                 = "edit"
	actionDeleteProfilePicture = "profile-picture/delete"
	actionRemoveImage          = "images/remove"
	actionReply                = "reply"
	actionOfferListing         = "listing"
)

var errInvalidImageIndex = errors.New("invalid image index")

// mutation is one backend write issued for a record action.
type mutation struct {
	method string
	path   func(id string) string
	body   func(r *http.Request, id string) ([]byte, error)
	// invalidates lists the cached collections the write makes stale.
	invalidates []backend.Endpoint
	// invalidatePrefix drops every cached key under a backend path.
	invalidatePrefix string
	redirect         func(r *http.Request, id string) string
	doneKey          string
	failedKey        string
}

func redirectTo(target string) func(*http.Request, string) string {
	return func(*http.Request, string) string { return target }
}

type mutationKey struct {
	screen collectionsmodule.Screen
	action string
}

// recordMutations are the record actions that map onto a single backend write.
var recordMutations = map[mutationKey]mutation{
	{collectionsmodule.ScreenUsers, actionDelete}: {
		method: http.MethodPost,
		path:   func(string) string { return backend.PathDeleteUser },
		body: func(_ *http.Request, id string) ([]byte, error) {
			return backend.NewPayload().SetText("id", id).Bytes()
		},
		invalidates: []backend.Endpoint{backend.Users, backend.Documents},
		redirect:    redirectTo(routepath.Users),
		doneKey:     "flash.user_deleted",
		failedKey:   "flash.user_delete_failed",
	},
	{collectionsmodule.ScreenUsers, actionDeleteProfilePicture}: {
		method:      http.MethodDelete,
		path:        backend.DeleteProfilePicturePath,
		invalidates: []backend.Endpoint{backend.Users},
		redirect:    func(_ *http.Request, id string) string { return routepath.User(id) },
		doneKey:     "flash.picture_deleted",
		failedKey:   "flash.picture_delete_failed",
	},
	{collectionsmodule.ScreenBookings, actionDelete}: {
		method:           http.MethodDelete,
		path:             backend.DeleteBookingPath,
		invalidates:      []backend.Endpoint{backend.Bookings, backend.UpcomingBookings},
		invalidatePrefix: backend.PathUserUpcomingBookings,
		redirect:         redirectTo(routepath.Bookings),
		doneKey:          "flash.booking_deleted",
		failedKey:        "flash.booking_delete_failed",
	},
	{collectionsmodule.ScreenListings, actionDelete}: {
		method:           http.MethodDelete,
		path:             backend.DeleteListingPath,
		invalidates:      []backend.Endpoint{backend.Listings},
		invalidatePrefix: backend.PathOfferListings,
		redirect:         redirectTo(routepath.Listings),
		doneKey:          "flash.listing_deleted",
		failedKey:        "flash.listing_delete_failed",
	},
	{collectionsmodule.ScreenListings, actionRemoveImage}: {
		method: http.MethodPut,
		path:   backend.RemoveListingImagePath,
		body: func(r *http.Request, _ string) ([]byte, error) {
			index, err := strconv.Atoi(strings.TrimSpace(r.FormValue("imageIndex")))
			if err != nil || index < 0 {
				return nil, errInvalidImageIndex
			}
			return backend.NewPayload().Set("imageIndex", index).Bytes()
		},
		invalidates: []backend.Endpoint{backend.Listings},
		redirect:    func(_ *http.Request, id string) string { return routepath.Listing(id) },
		doneKey:     "flash.image_removed",
		failedKey:   "flash.image_remove_failed",
	},
	{collectionsmodule.ScreenCustomOffers, actionDelete}: {
		method:      http.MethodDelete,
		path:        backend.DeleteCustomOfferPath,
		invalidates: []backend.Endpoint{backend.CustomOffers},
		redirect:    redirectTo(routepath.CustomOffers),
		doneKey:     "flash.offer_deleted",
		failedKey:   "flash.offer_delete_failed",
	},
	{collectionsmodule.ScreenTeamMembers, actionDelete}: {
		method:      http.MethodDelete,
		path:        backend.DeleteTeamMemberPath,
		invalidates: []backend.Endpoint{backend.TeamMembers},
		redirect:    redirectTo(routepath.TeamMembers),
		doneKey:     "flash.team_deleted",
		failedKey:   "flash.team_delete_failed",
	},
	{collectionsmodule.ScreenReviews, actionDelete}: {
		method:      http.MethodDelete,
		path:        backend.DeleteReviewPath,
		invalidates: []backend.Endpoint{backend.AllRatings},
		redirect:    func(r *http.Request, _ string) string { return sameOriginReturn(r, routepath.Reviews) },
		doneKey:     "flash.review_deleted",
		failedKey:   "flash.review_delete_failed",
	},
}

func (h *Handler) handleRecordAction(w http.ResponseWriter, r *http.Request, screen collectionsmodule.Screen, id string, action string) {
	switch {
	case screen == collectionsmodule.ScreenUsers && action == actionEdit:
		h.handleUserEdit(w, r, id)
	case screen == collectionsmodule.ScreenTeamMembers && action == actionEdit:
		if h.requireAdmin(w, r) {
			h.handleTeamMemberEdit(w, r, id)
		}
	case screen == collectionsmodule.ScreenCustomOffers && action == actionOfferListing:
		h.handleOfferListings(w, r, id)
	case screen == collectionsmodule.ScreenMessages && action == actionReply:
		h.handleMessageReply(w, r, id)
	default:
		m, ok := recordMutations[mutationKey{screen: screen, action: action}]
		if !ok {
			h.renderError(w, r, http.StatusNotFound, "error.not_found")
			return
		}
		if screen == collectionsmodule.ScreenTeamMembers && !h.requireAdmin(w, r) {
			return
		}
		h.runMutation(w, r, id, m)
	}
}

// runMutation proxies one write to the backend, then drops the stale cache
// entries and redirects with a flash message. Failures are not retried.
func (h *Handler) runMutation(w http.ResponseWriter, r *http.Request, id string, m mutation) {
	if !requirePost(w, r) {
		return
	}
	loc, _ := h.localizer(w, r)
	if !requireSameOrigin(w, r, loc) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "error.form_invalid")
		return
	}

	target := m.redirect(r, id)
	var body []byte
	if m.body != nil {
		var err error
		if body, err = m.body(r, id); err != nil {
			redirectWithError(w, r, target, templates.T(loc, "error.form_invalid"))
			return
		}
	}

	ctx, cancel := backendContext(r)
	defer cancel()
	if _, err := h.backend.Send(ctx, m.method, m.path(id), body, principalToken(r)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("id", id).Str("path", m.path(id)).Msg("record mutation")
		redirectWithError(w, r, target, templates.T(loc, backendErrorKey(err, m.failedKey)))
		return
	}

	h.invalidate(r, m.invalidates...)
	if m.invalidatePrefix != "" {
		h.cache.InvalidatePrefix(m.invalidatePrefix)
	}
	redirectWithFlash(w, r, target, templates.T(loc, m.doneKey))
}

// sameOriginReturn sends the browser back to the page the action was posted
// from, falling back to fallback for foreign or missing referers.
func sameOriginReturn(r *http.Request, fallback string) string {
	referer := strings.TrimSpace(r.Referer())
	if referer == "" || !sameOrigin(referer, r) {
		return fallback
	}
	parsed, err := url.Parse(referer)
	if err != nil || parsed.Path == "" {
		return fallback
	}
	if parsed.RawQuery == "" {
		return parsed.Path
	}
	return parsed.Path + "?" + parsed.RawQuery
}

func (h *Handler) handleUserEdit(w http.ResponseWriter, r *http.Request, id string) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := templates.FormView{
		Title:       templates.T(loc, "form.edit_user"),
		Action:      routepath.UserEdit(id),
		SubmitLabel: templates.T(loc, "action.save"),
		CancelURL:   routepath.User(id),
		CancelLabel: templates.T(loc, "action.cancel"),
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		record, err := h.fetchRecord(r, backend.UserDetailsPath(id))
		user := record.Relation("user")
		if err != nil || !user.Present() {
			if err == nil || errors.Is(err, backend.ErrNotFound) {
				h.renderError(w, r, http.StatusNotFound, "detail.missing")
				return
			}
			log.Ctx(r.Context()).Warn().Err(err).Str("user", id).Msg("load user for edit")
			h.renderError(w, r, http.StatusBadGateway, backendErrorKey(err, "detail.load_failed"))
			return
		}
		view.Fields = userForm(loc, userInputFromItem(user.Item()), fieldErrors{}, false)
		renderForm(w, r, page, view)
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !requireSameOrigin(w, r, loc) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "error.form_invalid")
		return
	}

	in := userInputFromForm(r)
	if errs := in.validate(loc, false); !errs.empty() {
		view.Fields = userForm(loc, in, errs, false)
		renderForm(w, r, page, view)
		return
	}
	body, err := in.payload(false)
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "error.form_invalid")
		return
	}

	ctx, cancel := backendContext(r)
	defer cancel()
	if _, err := h.backend.Send(ctx, http.MethodPut, backend.UpdateUserPath(id), body, principalToken(r)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("user", id).Msg("update user")
		view.Error = templates.T(loc, backendErrorKey(err, "flash.user_update_failed"))
		view.Fields = userForm(loc, in, fieldErrors{}, false)
		renderForm(w, r, page, view)
		return
	}
	h.invalidate(r, backend.Users)
	redirectWithFlash(w, r, routepath.User(id), templates.T(loc, "flash.user_updated"))
}

func (h *Handler) handleTeamMemberEdit(w http.ResponseWriter, r *http.Request, id string) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := templates.FormView{
		Title:       templates.T(loc, "form.edit_team_member"),
		Action:      routepath.TeamMemberEdit(id),
		Multipart:   true,
		SubmitLabel: templates.T(loc, "action.save"),
		CancelURL:   routepath.TeamMembers,
		CancelLabel: templates.T(loc, "action.cancel"),
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		member, ok := h.findTeamMember(r, id)
		if !ok {
			h.renderError(w, r, http.StatusNotFound, "detail.missing")
			return
		}
		view.Fields = teamForm(loc, teamInputFromItem(member), fieldErrors{}, false)
		renderForm(w, r, page, view)
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !requireSameOrigin(w, r, loc) {
		return
	}
	h.submitTeamMember(w, r, page, view, id, false)
}

// findTeamMember looks the member up in the cached team collection.
func (h *Handler) findTeamMember(r *http.Request, id string) (backend.Item, bool) {
	entry := h.collection(r, backend.TeamMembers)
	if !entry.OK() {
		log.Ctx(r.Context()).Warn().Err(entry.Err).Msg("load team for edit")
		return backend.Item{}, false
	}
	for _, member := range entry.Data {
		if member.ID() == id {
			return member, true
		}
	}
	return backend.Item{}, false
}

// handleMessageReply appends a support reply to a help conversation.
func (h *Handler) handleMessageReply(w http.ResponseWriter, r *http.Request, id string) {
	if !requirePost(w, r) {
		return
	}
	loc, _ := h.localizer(w, r)
	if !requireSameOrigin(w, r, loc) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "error.form_invalid")
		return
	}
	target := routepath.Message(id)
	text := formText(r, "message")
	if text == "" {
		redirectWithError(w, r, target, templates.T(loc, "validation.reply_required"))
		return
	}

	record, err := h.fetchRecord(r, backend.MessageDetailsPath(id))
	message := record.Relation("message")
	if err != nil || !message.Present() || !message.Item().Relation("userId").Present() {
		log.Ctx(r.Context()).Warn().Err(err).Str("message", id).Msg("load conversation for reply")
		redirectWithError(w, r, target, templates.T(loc, "flash.reply_failed"))
		return
	}

	conversation := message.Item()
	body, err := backend.NewPayload().
		SetText("userId", conversation.Relation("userId").Item().ID()).
		SetText("sender", conversation.Text("sender")).
		Set("messageText.sender", supportSender).
		Set("messageText.message", text).
		Bytes()
	if err != nil {
		redirectWithError(w, r, target, templates.T(loc, "error.form_invalid"))
		return
	}

	ctx, cancel := backendContext(r)
	defer cancel()
	if _, err := h.backend.Send(ctx, http.MethodPost, backend.PathSendHelpMessage, body, principalToken(r)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("message", id).Msg("send support reply")
		redirectWithError(w, r, target, templates.T(loc, backendErrorKey(err, "flash.reply_failed")))
		return
	}
	h.invalidate(r, backend.HelpMessages)
	redirectWithFlash(w, r, target, templates.T(loc, "flash.reply_sent"))
}

package admin

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/offerboat/admin/internal/services/admin/backend"
	"github.com/offerboat/admin/internal/services/admin/listview"
	collectionsmodule "github.com/offerboat/admin/internal/services/admin/module/collections"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	"github.com/offerboat/admin/internal/services/admin/templates"
)

// listLoad is the snapshot a list screen renders plus the deep-link values
// every generated URL must carry.
type listLoad struct {
	items   []backend.Item
	extra   url.Values
	title   string
	loadErr string
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, screen collectionsmodule.Screen) {
	spec, ok := screens[screen]
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "error.not_found")
		return
	}
	if !requireGet(w, r) {
		return
	}
	if spec.adminOnly && !h.requireAdmin(w, r) {
		return
	}

	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	state := listview.ParseState(r.URL.Query())
	load := h.loadList(r, loc, spec)
	view := buildListView(loc, page, spec, state, load)
	renderPage(w, r, templates.ListPage(page, view), templates.ComposePageTitle(loc, view.Heading.Title))
}

// loadList fetches the snapshot behind a list screen.
func (h *Handler) loadList(r *http.Request, loc templates.Localizer, spec screenSpec) listLoad {
	load := listLoad{title: templates.T(loc, spec.title)}
	switch spec.source {
	case sourceReviews:
		items, err := parseReviewsParam(r.URL.Query())
		if err != nil {
			if !errors.Is(err, errDeepLinkMissing) {
				load.loadErr = templates.T(loc, "list.load_failed", load.title)
			}
			return load
		}
		load.items = items
		load.extra = url.Values{routepath.ParamReviews: {reviewsJSON(items)}}
		return load
	case sourceUpcoming:
		target, err := parseUpcomingParams(r.URL.Query())
		if err != nil {
			load.loadErr = templates.T(loc, "upcoming.invalid_link")
			return load
		}
		userJSON, err := upcomingUserJSON(target.UserID, target.UserType)
		if err != nil {
			load.loadErr = templates.T(loc, "upcoming.invalid_link")
			return load
		}
		load.title = templates.T(loc, "screen.upcoming_for", target.Date)
		load.extra = url.Values{routepath.ParamDate: {target.Date}, routepath.ParamUser: {userJSON}}
		return h.loadEndpoint(r, loc, target.Endpoint(), load)
	default:
		return h.loadEndpoint(r, loc, spec.endpoint, load)
	}
}

func (h *Handler) loadEndpoint(r *http.Request, loc templates.Localizer, endpoint backend.Endpoint, load listLoad) listLoad {
	entry := h.collection(r, endpoint)
	if !entry.OK() {
		log.Ctx(r.Context()).Warn().Err(entry.Err).Str("endpoint", endpoint.Key()).Msg("load collection")
		load.loadErr = templates.T(loc, "list.load_failed", load.title)
		return load
	}
	load.items = entry.Data
	return load
}

// buildListView runs the list processor and maps the page onto the view model.
func buildListView(loc templates.Localizer, page templates.PageContext, spec screenSpec, state listview.State, load listLoad) templates.ListView {
	cfg := spec.config()
	result := cfg.Render(load.items, state)
	state = result.State

	view := templates.ListView{
		Heading:      templates.PageHeading{Title: load.title},
		Searchable:   len(spec.search) > 0,
		SearchURL:    spec.basePath,
		SearchTerm:   state.Search,
		Hidden:       hiddenFields(state, load.extra),
		Total:        result.Total,
		Page:         state.Page,
		TotalPages:   result.TotalPages,
		FirstPageURL: state.WithPage(1).URL(spec.basePath, load.extra),
		OutOfRange:   result.OutOfRange(),
		LoadError:    load.loadErr,
	}
	if spec.createURL != "" && (!spec.adminOnly || page.Admin) {
		view.Heading.ActionURL = spec.createURL
		view.Heading.ActionLabel = templates.T(loc, spec.createLabel)
	}
	if spec.screen == collectionsmodule.ScreenTeamMembers {
		view.Extra = templates.ActionBar([]templates.RowAction{
			{Label: templates.T(loc, "action.reset_password"), URL: routepath.TeamMembersResetPassword},
		})
	}
	if result.HasPrev() {
		view.PrevURL = state.WithPage(state.Page - 1).URL(spec.basePath, load.extra)
	}
	if result.HasNext() {
		view.NextURL = state.WithPage(state.Page + 1).URL(spec.basePath, load.extra)
	}

	for _, column := range spec.columns {
		header := templates.Column{Label: templates.T(loc, column.label)}
		if column.sortable && cfg.CanSort(sortName) {
			header.SortURL = state.Toggle(sortName).URL(spec.basePath, load.extra)
			if state.SortField == sortName {
				header.SortDir = state.SortDir
			}
		}
		view.Columns = append(view.Columns, header)
	}

	for _, item := range result.Items {
		row := templates.Row{Cells: make([]templates.Cell, 0, len(spec.columns))}
		for _, column := range spec.columns {
			row.Cells = append(row.Cells, column.cell(loc, item))
		}
		if spec.actions != nil {
			row.Actions = spec.actions(loc, item)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// hiddenFields keeps sort order and deep-link values across a new search.
func hiddenFields(state listview.State, extra url.Values) []templates.HiddenField {
	var fields []templates.HiddenField
	if state.SortField != "" {
		fields = append(fields,
			templates.HiddenField{Name: listview.ParamSort, Value: state.SortField},
			templates.HiddenField{Name: listview.ParamDir, Value: string(state.SortDir)},
		)
	}
	for _, key := range []string{routepath.ParamReviews, routepath.ParamDate, routepath.ParamUser} {
		if value := extra.Get(key); value != "" {
			fields = append(fields, templates.HiddenField{Name: key, Value: value})
		}
	}
	return fields
}

func (h *Handler) handleCollectionAction(w http.ResponseWriter, r *http.Request, screen collectionsmodule.Screen, action string) {
	switch {
	case screen == collectionsmodule.ScreenUsers && action == collectionsmodule.ActionCreate:
		h.handleUserCreate(w, r)
	case screen == collectionsmodule.ScreenTeamMembers && action == collectionsmodule.ActionCreate:
		if h.requireAdmin(w, r) {
			h.handleTeamMemberCreate(w, r)
		}
	case screen == collectionsmodule.ScreenTeamMembers && action == collectionsmodule.ActionResetPassword:
		if h.requireAdmin(w, r) {
			h.handleTeamPasswordReset(w, r)
		}
	case screen == collectionsmodule.ScreenDocuments && action == collectionsmodule.ActionUpload:
		h.handleDocuments(w, r, false)
	case screen == collectionsmodule.ScreenDocuments && action == collectionsmodule.ActionUpdate:
		h.handleDocuments(w, r, true)
	default:
		h.renderError(w, r, http.StatusNotFound, "error.not_found")
	}
}

// renderForm shows a create or update form. Failed submits re-render with
// 200 so boosted requests still swap the errors in.
func renderForm(w http.ResponseWriter, r *http.Request, page templates.PageContext, view templates.FormView) {
	renderPage(w, r, templates.FormPage(page, view), templates.ComposePageTitle(page.Loc, view.Title))
}

func (h *Handler) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := templates.FormView{
		Title:       templates.T(loc, "form.create_user"),
		Action:      routepath.UsersCreate,
		Multipart:   true,
		SubmitLabel: templates.T(loc, "action.create"),
		CancelURL:   routepath.Users,
		CancelLabel: templates.T(loc, "action.cancel"),
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		view.Fields = userForm(loc, userInput{UserType: userTypeRenter, Rating: "0"}, fieldErrors{}, true)
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
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		view.Error = templates.T(loc, "error.form_invalid")
		view.Fields = userForm(loc, userInput{}, fieldErrors{}, true)
		renderForm(w, r, page, view)
		return
	}

	in := userInputFromForm(r)
	if errs := in.validate(loc, true); !errs.empty() {
		view.Fields = userForm(loc, in, errs, true)
		renderForm(w, r, page, view)
		return
	}
	body, err := in.payload(true)
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "error.form_invalid")
		return
	}

	ctx, cancel := backendContext(r)
	defer cancel()
	if _, err := h.backend.Send(ctx, http.MethodPost, backend.PathUserSignup, body, principalToken(r)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("create user")
		view.Error = templates.T(loc, backendErrorKey(err, "flash.user_create_failed"))
		view.Fields = userForm(loc, in, fieldErrors{}, true)
		renderForm(w, r, page, view)
		return
	}

	// Owners get their identity documents uploaded alongside the account.
	if in.UserType == userTypeOwner {
		if err := h.uploadDocuments(r, in.Email, false); err != nil && !errors.Is(err, errNoDocuments) {
			log.Ctx(r.Context()).Error().Err(err).Msg("upload documents for new owner")
			h.invalidate(r, backend.Users)
			redirectWithError(w, r, routepath.Users, templates.T(loc, "flash.documents_failed"))
			return
		}
	}
	h.invalidate(r, backend.Users, backend.Documents)
	redirectWithFlash(w, r, routepath.Users, templates.T(loc, "flash.user_created"))
}

func (h *Handler) handleTeamMemberCreate(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := templates.FormView{
		Title:       templates.T(loc, "form.create_team_member"),
		Action:      routepath.TeamMembersCreate,
		Multipart:   true,
		SubmitLabel: templates.T(loc, "action.create"),
		CancelURL:   routepath.TeamMembers,
		CancelLabel: templates.T(loc, "action.cancel"),
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		view.Fields = teamForm(loc, teamInput{Type: backend.RoleTeamMember}, fieldErrors{}, true)
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
	h.submitTeamMember(w, r, page, view, "", true)
}

// submitTeamMember validates and forwards the staff form for create or update.
func (h *Handler) submitTeamMember(w http.ResponseWriter, r *http.Request, page templates.PageContext, view templates.FormView, memberID string, create bool) {
	loc := page.Loc
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		view.Error = templates.T(loc, "error.form_invalid")
		view.Fields = teamForm(loc, teamInput{}, fieldErrors{}, create)
		renderForm(w, r, page, view)
		return
	}

	in := teamInputFromForm(r)
	if errs := in.validate(loc, create); !errs.empty() {
		view.Fields = teamForm(loc, in, errs, create)
		renderForm(w, r, page, view)
		return
	}
	picture, closePicture, err := formFile(r, "profilePicture")
	if err != nil {
		view.Error = templates.T(loc, "error.form_invalid")
		view.Fields = teamForm(loc, in, fieldErrors{}, create)
		renderForm(w, r, page, view)
		return
	}
	defer closePicture()

	method, path, failedKey, doneKey := http.MethodPost, backend.PathTeamSignup, "flash.team_create_failed", "flash.team_created"
	if !create {
		method, path, failedKey, doneKey = http.MethodPut, backend.UpdateTeamMemberPath(memberID), "flash.team_update_failed", "flash.team_updated"
	}

	ctx, cancel := backendContext(r)
	defer cancel()
	if _, err := h.backend.SendForm(ctx, method, path, in.form(create, picture), principalToken(r)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("member", memberID).Msg("save team member")
		view.Error = templates.T(loc, backendErrorKey(err, failedKey))
		view.Fields = teamForm(loc, in, fieldErrors{}, create)
		renderForm(w, r, page, view)
		return
	}
	h.invalidate(r, backend.TeamMembers)
	redirectWithFlash(w, r, routepath.TeamMembers, templates.T(loc, doneKey))
}

func (h *Handler) handleTeamPasswordReset(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := templates.FormView{
		Title:       templates.T(loc, "form.reset_password"),
		Action:      routepath.TeamMembersResetPassword,
		SubmitLabel: templates.T(loc, "action.reset_password"),
		CancelURL:   routepath.TeamMembers,
		CancelLabel: templates.T(loc, "action.cancel"),
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		view.Fields = resetPasswordForm(loc, resetPasswordInput{Email: r.URL.Query().Get("email")}, fieldErrors{})
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

	in := resetPasswordInputFromForm(r)
	if errs := in.validate(loc); !errs.empty() {
		view.Fields = resetPasswordForm(loc, in, errs)
		renderForm(w, r, page, view)
		return
	}
	body, err := in.payload()
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "error.form_invalid")
		return
	}

	ctx, cancel := backendContext(r)
	defer cancel()
	if _, err := h.backend.Send(ctx, http.MethodPost, backend.PathTeamResetPassword, body, principalToken(r)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("reset team password")
		view.Error = templates.T(loc, backendErrorKey(err, "flash.password_reset_failed"))
		view.Fields = resetPasswordForm(loc, in, fieldErrors{})
		renderForm(w, r, page, view)
		return
	}
	redirectWithFlash(w, r, routepath.TeamMembers, templates.T(loc, "flash.password_reset"))
}

var errNoDocuments = errors.New("no documents attached")

// uploadDocuments forwards the front and back images in r for email.
func (h *Handler) uploadDocuments(r *http.Request, email string, update bool) error {
	front, closeFront, err := formFile(r, "frontImage")
	if err != nil {
		return err
	}
	defer closeFront()
	back, closeBack, err := formFile(r, "backImage")
	if err != nil {
		return err
	}
	defer closeBack()
	if front.Content == nil && back.Content == nil {
		return errNoDocuments
	}
	// A first upload needs both sides of the document.
	if !update && (front.Content == nil || back.Content == nil) {
		return errNoDocuments
	}

	method, path := http.MethodPost, backend.PathUploadDocuments
	if update {
		method, path = http.MethodPut, backend.PathUpdateDocuments
	}
	form := backend.NewForm().Field("email", email).File(front).File(back)

	ctx, cancel := backendContext(r)
	defer cancel()
	_, err = h.backend.SendForm(ctx, method, path, form, principalToken(r))
	return err
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request, update bool) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	action, titleKey := routepath.DocumentsUpload, "form.upload_documents"
	if update {
		action, titleKey = routepath.DocumentsUpdate, "form.update_documents"
	}
	view := templates.FormView{
		Title:       templates.T(loc, titleKey),
		Action:      action,
		Multipart:   true,
		SubmitLabel: templates.T(loc, "action.save"),
		CancelURL:   routepath.Documents,
		CancelLabel: templates.T(loc, "action.cancel"),
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		view.Fields = documentsForm(loc, r.URL.Query().Get("email"), fieldErrors{})
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
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		view.Error = templates.T(loc, "error.form_invalid")
		view.Fields = documentsForm(loc, "", fieldErrors{})
		renderForm(w, r, page, view)
		return
	}

	email := formText(r, "email")
	errs := fieldErrors{}
	errs.email(loc, "email", email)
	if !errs.empty() {
		view.Fields = documentsForm(loc, email, errs)
		renderForm(w, r, page, view)
		return
	}

	if err := h.uploadDocuments(r, email, update); err != nil {
		if errors.Is(err, errNoDocuments) {
			view.Error = templates.T(loc, "validation.documents_required")
			view.Fields = documentsForm(loc, email, fieldErrors{})
			renderForm(w, r, page, view)
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("save documents")
		view.Error = templates.T(loc, backendErrorKey(err, "flash.documents_failed"))
		view.Fields = documentsForm(loc, email, fieldErrors{})
		renderForm(w, r, page, view)
		return
	}
	h.invalidate(r, backend.Documents)
	redirectWithFlash(w, r, routepath.Documents, templates.T(loc, "flash.documents_saved"))
}

package admin

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/offerboat/admin/internal/services/admin/backend"
	"github.com/offerboat/admin/internal/services/admin/listview"
	collectionsmodule "github.com/offerboat/admin/internal/services/admin/module/collections"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	"github.com/offerboat/admin/internal/services/admin/templates"
)

// Booking statuses counted on record pages.
var bookingStatuses = []struct {
	status string
	label  string
	stat   string
}{
	{status: "Accepted", label: "stats.accepted", stat: "totalAcceptedBookings"},
	{status: "Rejected", label: "stats.rejected", stat: "totalRejectedBookings"},
	{status: "Completed", label: "stats.completed", stat: "totalCompletedBookings"},
	{status: "Pending", label: "stats.pending", stat: "totalPendingBookings"},
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request, screen collectionsmodule.Screen, id string) {
	if !requireGet(w, r) {
		return
	}
	switch screen {
	case collectionsmodule.ScreenUsers:
		h.handleUserDetail(w, r, id)
	case collectionsmodule.ScreenBookings:
		h.handleBookingDetail(w, r, id)
	case collectionsmodule.ScreenListings:
		h.handleListingDetail(w, r, id)
	case collectionsmodule.ScreenCustomOffers:
		h.handleCustomOfferDetail(w, r, id)
	case collectionsmodule.ScreenMessages:
		h.handleMessageDetail(w, r, id)
	default:
		h.renderError(w, r, http.StatusNotFound, "error.not_found")
	}
}

// fetchRecord loads one record for the signed-in staff member.
func (h *Handler) fetchRecord(r *http.Request, path string) (backend.Item, error) {
	ctx, cancel := backendContext(r)
	defer cancel()
	return h.backend.FetchItem(ctx, path, principalToken(r))
}

// loadDetail fetches path and reports whether rendering can continue. A
// missing record or a failed fetch is recorded on view.
func (h *Handler) loadDetail(r *http.Request, loc templates.Localizer, path string, view *templates.DetailView) (backend.Item, bool) {
	record, err := h.fetchRecord(r, path)
	switch {
	case err == nil:
		return record, true
	case errors.Is(err, backend.ErrNotFound):
		view.Missing = true
	default:
		log.Ctx(r.Context()).Warn().Err(err).Str("path", path).Msg("load record")
		view.LoadError = templates.T(loc, backendErrorKey(err, "detail.load_failed"))
	}
	return backend.Item{}, false
}

func renderDetail(w http.ResponseWriter, r *http.Request, page templates.PageContext, view templates.DetailView) {
	renderPage(w, r, templates.DetailPage(page, view), templates.ComposePageTitle(page.Loc, view.Heading.Title))
}

func (h *Handler) handleUserDetail(w http.ResponseWriter, r *http.Request, id string) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := templates.DetailView{Heading: templates.PageHeading{
		Title:       templates.T(loc, "screen.user"),
		Breadcrumbs: []templates.Breadcrumb{{Label: templates.T(loc, "screen.users"), URL: routepath.Users}},
	}}

	record, ok := h.loadDetail(r, loc, backend.UserDetailsPath(id), &view)
	user := record.Relation("user")
	if ok && !user.Present() {
		view.Missing = true
	}
	if !ok || view.Missing {
		renderDetail(w, r, page, view)
		return
	}

	profile := user.Item()
	userType := profile.Text("userType")
	view.Heading.Title = profile.DisplayName("")
	if picture := profile.Text("profilePicture"); picture != "" {
		view.Images = []string{picture}
	}
	view.Sections = append(view.Sections,
		templates.DetailSection{Title: templates.T(loc, "detail.profile"), Fields: personFields(loc, profile)},
		templates.DetailSection{Title: templates.T(loc, "detail.booking_stats"), Fields: countStatuses(loc, record.List("bookings"))},
	)

	var calendar []templates.DetailField
	for _, day := range bookingCalendar(record.List("bookings"), id, userType, h.now()) {
		calendar = append(calendar, templates.DetailField{Label: day.Date, Value: templates.T(loc, "detail.bookings_on_day", day.Count), URL: day.Link})
	}
	view.Sections = append(view.Sections, templates.DetailSection{Title: templates.T(loc, "detail.calendar"), Fields: calendar})

	if userType == userTypeOwner {
		var listings []templates.DetailField
		for _, listing := range record.List("listings") {
			listings = append(listings, templates.DetailField{Label: truncate(listing.Text("title"), 20), Value: listing.Text("location"), URL: routepath.Listing(listing.ID())})
		}
		view.Sections = append(view.Sections, templates.DetailSection{Title: templates.T(loc, "detail.listings"), Fields: listings})
	}

	reviews := record.List("reviews")
	reviewLimit := 3
	if userType == userTypeOwner {
		reviewLimit = 7
	}
	view.Sections = append(view.Sections, reviewSection(loc, latestFirst(reviews, reviewLimit)))

	view.Actions = append(view.Actions, templates.RowAction{Label: templates.T(loc, "action.edit"), URL: routepath.UserEdit(id)})
	if len(reviews) > 0 {
		view.Actions = append(view.Actions, templates.RowAction{Label: templates.T(loc, "dashboard.view_all"), URL: routepath.ReviewsLink(reviewsJSON(reviews), 0)})
	}
	if len(view.Images) > 0 {
		view.Actions = append(view.Actions, templates.RowAction{
			Label:   templates.T(loc, "action.delete_picture"),
			URL:     routepath.UserProfilePictureDelete(id),
			Post:    true,
			Confirm: templates.T(loc, "action.delete_confirm"),
		})
	}
	view.Actions = append(view.Actions, deleteAction(loc, routepath.UserDelete(id)))
	renderDetail(w, r, page, view)
}

func (h *Handler) handleBookingDetail(w http.ResponseWriter, r *http.Request, id string) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := templates.DetailView{Heading: templates.PageHeading{
		Title:       templates.T(loc, "screen.booking"),
		Breadcrumbs: []templates.Breadcrumb{{Label: templates.T(loc, "screen.bookings"), URL: routepath.Bookings}},
	}}

	record, ok := h.loadDetail(r, loc, backend.BookingPath(id), &view)
	booking := record.Relation("booking")
	if ok && !booking.Present() {
		view.Missing = true
	}
	if !ok || view.Missing {
		renderDetail(w, r, page, view)
		return
	}

	item := booking.Item()
	view.Sections = append(view.Sections, templates.DetailSection{
		Title: templates.T(loc, "detail.booking"),
		Fields: []templates.DetailField{
			{Label: templates.T(loc, "column.date"), Value: item.Text("date")},
			{Label: templates.T(loc, "field.time"), Value: item.Text("time")},
			{Label: templates.T(loc, "column.status"), Value: item.Text("status")},
			{Label: templates.T(loc, "column.package"), Value: packageCell("packages.0.price", "packages.0.hours")(loc, item).Text},
		},
	})
	view.Sections = append(view.Sections,
		relatedPersonSection(loc, "detail.renter", item.Relation("userId")),
		relatedListingSection(loc, item.Relation("listingId")),
		relatedPersonSection(loc, "detail.owner", item.Relation("ownerId")),
		packagesSection(loc, item.List("packages")),
		reviewSection(loc, latestFirst(record.List("ownerReviews"), 3)),
	)
	if listing := item.Relation("listingId"); listing.Present() {
		view.Images = listing.Item().Strings("images")
	}
	view.Actions = []templates.RowAction{deleteAction(loc, routepath.BookingDelete(id))}
	renderDetail(w, r, page, view)
}

func (h *Handler) handleListingDetail(w http.ResponseWriter, r *http.Request, id string) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := templates.DetailView{Heading: templates.PageHeading{
		Title:       templates.T(loc, "screen.listing"),
		Breadcrumbs: []templates.Breadcrumb{{Label: templates.T(loc, "screen.listings"), URL: routepath.Listings}},
	}}

	record, ok := h.loadDetail(r, loc, backend.ListingPath(id), &view)
	listing := record.Relation("listing")
	if ok && !listing.Present() {
		view.Missing = true
	}
	if !ok || view.Missing {
		renderDetail(w, r, page, view)
		return
	}

	item := listing.Item()
	if title := item.Text("title"); title != "" {
		view.Heading.Title = title
	}
	view.Images = item.Strings("images")
	view.RemoveImageURL = routepath.ListingImageRemove(id)
	view.Sections = append(view.Sections,
		templates.DetailSection{
			Title: templates.T(loc, "detail.listing"),
			Fields: []templates.DetailField{
				{Label: templates.T(loc, "column.location"), Value: item.Text("location")},
				{Label: templates.T(loc, "field.description"), Value: item.Text("description")},
				{Label: templates.T(loc, "field.features"), Value: strings.Join(item.Strings("features"), ", ")},
				{Label: templates.T(loc, "field.rules"), Value: strings.Join(item.Strings("rules"), ", ")},
			},
		},
		relatedPersonSection(loc, "detail.owner", item.Relation("ownerId")),
		statisticsSection(loc, record.Relation("bookingStatistics").Item()),
		packagesSection(loc, item.List("packages")),
		reviewSection(loc, latestFirst(record.List("ownerReviews"), 5)),
	)
	view.Actions = []templates.RowAction{deleteAction(loc, routepath.ListingDelete(id))}
	renderDetail(w, r, page, view)
}

func (h *Handler) handleCustomOfferDetail(w http.ResponseWriter, r *http.Request, id string) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := templates.DetailView{Heading: templates.PageHeading{
		Title:       templates.T(loc, "screen.offer"),
		Breadcrumbs: []templates.Breadcrumb{{Label: templates.T(loc, "screen.offers"), URL: routepath.CustomOffers}},
	}}

	record, ok := h.loadDetail(r, loc, backend.CustomOfferPath(id), &view)
	offer := record.Relation("offers")
	if ok && !offer.Present() {
		view.Missing = true
	}
	if !ok || view.Missing {
		renderDetail(w, r, page, view)
		return
	}

	item := offer.Item()
	view.Sections = append(view.Sections,
		templates.DetailSection{
			Title: templates.T(loc, "detail.offer"),
			Fields: []templates.DetailField{
				{Label: templates.T(loc, "column.date"), Value: item.Text("date")},
				{Label: templates.T(loc, "field.time"), Value: item.Text("time")},
				{Label: templates.T(loc, "field.captain"), Value: item.Text("captain")},
				{Label: templates.T(loc, "column.package"), Value: packageCell("price", "hours")(loc, item).Text},
				{Label: templates.T(loc, "field.trip_instructions"), Value: item.Text("tripInstructions")},
			},
		},
		relatedPersonSection(loc, "detail.renter", item.Relation("userId")),
	)

	// Listings owners sent in response load independently of the offer.
	sent := h.collection(r, offerListings(id))
	sentSection := templates.DetailSection{Title: templates.T(loc, "detail.sent_listings")}
	if sent.OK() {
		for _, listing := range sent.Data {
			sentSection.Fields = append(sentSection.Fields, templates.DetailField{
				Label: listing.DisplayName("ownerId"),
				Value: truncate(listing.Text("title"), 20),
				URL:   routepath.Listing(listing.ID()),
			})
		}
	} else {
		log.Ctx(r.Context()).Warn().Err(sent.Err).Str("offer", id).Msg("load sent listings")
	}
	view.Sections = append(view.Sections, sentSection, reviewSection(loc, latestFirst(record.List("renterReviews"), 3)))
	view.Actions = []templates.RowAction{
		{Label: templates.T(loc, "detail.sent_listings"), URL: routepath.CustomOfferListing(id)},
		deleteAction(loc, routepath.CustomOfferDelete(id)),
	}
	renderDetail(w, r, page, view)
}

// offerListings is the collection of listings sent against a custom offer.
func offerListings(offerID string) backend.Endpoint {
	return backend.Endpoint{Path: backend.OfferListingPath(offerID)}
}

// handleOfferListings lists the listings sent against a custom offer with the
// listing screen's columns.
func (h *Handler) handleOfferListings(w http.ResponseWriter, r *http.Request, offerID string) {
	if !requireGet(w, r) {
		return
	}
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)

	spec := screens[collectionsmodule.ScreenListings]
	spec.title = "detail.sent_listings"
	spec.basePath = routepath.CustomOfferListing(offerID)
	spec.createURL = ""
	load := h.loadEndpoint(r, loc, offerListings(offerID), listLoad{title: templates.T(loc, spec.title)})
	view := buildListView(loc, page, spec, listview.ParseState(r.URL.Query()), load)
	view.Heading.Breadcrumbs = []templates.Breadcrumb{
		{Label: templates.T(loc, "screen.offers"), URL: routepath.CustomOffers},
		{Label: templates.T(loc, "screen.offer"), URL: routepath.CustomOffer(offerID)},
	}
	renderPage(w, r, templates.ListPage(page, view), templates.ComposePageTitle(loc, view.Heading.Title))
}

func (h *Handler) handleMessageDetail(w http.ResponseWriter, r *http.Request, id string) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := templates.DetailView{Heading: templates.PageHeading{
		Title:       templates.T(loc, "screen.message"),
		Breadcrumbs: []templates.Breadcrumb{{Label: templates.T(loc, "screen.messages"), URL: routepath.Messages}},
	}}

	record, ok := h.loadDetail(r, loc, backend.MessageDetailsPath(id), &view)
	message := record.Relation("message")
	if ok && !message.Present() {
		view.Missing = true
	}
	if !ok || view.Missing {
		renderDetail(w, r, page, view)
		return
	}

	item := message.Item()
	view.Sections = append(view.Sections,
		relatedPersonSection(loc, "detail.sender", item.Relation("userId")),
		statisticsSection(loc, record.Relation("bookingStatistics").Item()),
		reviewSection(loc, latestFirst(record.List("reviews"), 3)),
	)
	for _, entry := range item.List("messageText") {
		sender := entry.Text("sender")
		view.Thread = append(view.Thread, templates.ThreadMessage{
			Sender: sender,
			Text:   entry.Text("message"),
			SentAt: formatDate(entry.Text("createdAt")),
			Staff:  sender == supportSender,
		})
	}
	view.Extra = templates.Form(templates.FormView{
		Action:      routepath.MessageReply(id),
		SubmitLabel: templates.T(loc, "action.send"),
		Fields: []templates.FormField{
			{Name: "message", Label: templates.T(loc, "field.reply"), Type: templates.InputTextArea, Required: true},
		},
	})
	renderDetail(w, r, page, view)
}

// personFields lists the contact details of a marketplace user.
func personFields(loc templates.Localizer, person backend.Item) []templates.DetailField {
	return []templates.DetailField{
		{Label: templates.T(loc, "column.email"), Value: person.Text("email")},
		{Label: templates.T(loc, "column.phone"), Value: notAvailable(loc, person.Text("phoneNumber"))},
		{Label: templates.T(loc, "column.user_type"), Value: notAvailable(loc, person.Text("userType"))},
		{Label: templates.T(loc, "column.location"), Value: notAvailable(loc, person.Text("location"))},
		{Label: templates.T(loc, "column.rating"), Value: notAvailable(loc, person.Text("rating"))},
	}
}

func relatedPersonSection(loc templates.Localizer, titleKey string, person backend.Relation) templates.DetailSection {
	section := templates.DetailSection{Title: templates.T(loc, titleKey)}
	if !person.Present() {
		section.Fields = []templates.DetailField{{Label: templates.T(loc, "column.name"), Missing: true}}
		return section
	}
	item := person.Item()
	section.Fields = append([]templates.DetailField{
		{Label: templates.T(loc, "column.name"), Value: item.DisplayName(""), URL: routepath.User(item.ID())},
	}, personFields(loc, item)...)
	return section
}

func relatedListingSection(loc templates.Localizer, listing backend.Relation) templates.DetailSection {
	section := templates.DetailSection{Title: templates.T(loc, "detail.listing")}
	if !listing.Present() {
		section.Fields = []templates.DetailField{{Label: templates.T(loc, "column.title"), Missing: true}}
		return section
	}
	item := listing.Item()
	section.Fields = []templates.DetailField{
		{Label: templates.T(loc, "column.title"), Value: item.Text("title"), URL: routepath.Listing(item.ID())},
		{Label: templates.T(loc, "column.location"), Value: item.Text("location")},
		{Label: templates.T(loc, "field.description"), Value: item.Text("description")},
		{Label: templates.T(loc, "field.features"), Value: strings.Join(item.Strings("features"), ", ")},
		{Label: templates.T(loc, "field.rules"), Value: strings.Join(item.Strings("rules"), ", ")},
	}
	return section
}

func packagesSection(loc templates.Localizer, packages []backend.Item) templates.DetailSection {
	section := templates.DetailSection{Title: templates.T(loc, "detail.packages")}
	for _, pkg := range packages {
		section.Fields = append(section.Fields, templates.DetailField{
			Label: templates.T(loc, "detail.package_hours", pkg.Text("hours")),
			Value: pkg.Text("price"),
		})
	}
	return section
}

// statisticsSection renders the booking totals the backend computed.
func statisticsSection(loc templates.Localizer, stats backend.Item) templates.DetailSection {
	section := templates.DetailSection{Title: templates.T(loc, "detail.booking_stats")}
	for _, status := range bookingStatuses {
		section.Fields = append(section.Fields, templates.DetailField{
			Label: templates.T(loc, status.label),
			Value: strconv.FormatInt(stats.Int(status.stat), 10),
		})
	}
	return section
}

// countStatuses tallies bookings per status.
func countStatuses(loc templates.Localizer, bookings []backend.Item) []templates.DetailField {
	fields := make([]templates.DetailField, 0, len(bookingStatuses))
	for _, status := range bookingStatuses {
		var count int64
		for _, booking := range bookings {
			if booking.Text("status") == status.status {
				count++
			}
		}
		fields = append(fields, templates.DetailField{Label: templates.T(loc, status.label), Value: strconv.FormatInt(count, 10)})
	}
	return fields
}

func reviewSection(loc templates.Localizer, reviews []backend.Item) templates.DetailSection {
	section := templates.DetailSection{Title: templates.T(loc, "dashboard.recent_reviews")}
	if len(reviews) == 0 {
		section.Fields = []templates.DetailField{{Label: "", Value: templates.T(loc, "dashboard.no_reviews")}}
		return section
	}
	for _, review := range reviews {
		section.Fields = append(section.Fields, templates.DetailField{
			Label: templates.T(loc, "review.heading", reviewerName(review), review.Text("rating")),
			Value: review.Text("reviewText"),
		})
	}
	return section
}

// latestFirst orders items by createdAt, newest first, and keeps limit.
func latestFirst(items []backend.Item, limit int) []backend.Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b backend.Item) int {
		return createdAt(b).Compare(createdAt(a))
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func createdAt(item backend.Item) time.Time {
	parsed, _ := time.Parse(time.RFC3339, item.Text("createdAt"))
	return parsed
}

func notAvailable(loc templates.Localizer, value string) string {
	if value == "" {
		return templates.T(loc, "list.not_available")
	}
	return value
}

package collections

import (
	"net/http"
	"strings"

	sharedpath "github.com/offerboat/admin/internal/services/admin/module/sharedpath"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	sharedroute "github.com/offerboat/admin/internal/services/shared/route"
)

// Screen names a list screen and the records behind it.
type Screen string

const (
	ScreenUsers            Screen = "users"
	ScreenTeamMembers      Screen = "team"
	ScreenBookings         Screen = "bookings"
	ScreenUpcomingBookings Screen = "upcoming"
	ScreenListings         Screen = "listings"
	ScreenCustomOffers     Screen = "offers"
	ScreenDocuments        Screen = "documents"
	ScreenTransactions     Screen = "transactions"
	ScreenMessages         Screen = "messages"
	ScreenReviews          Screen = "reviews"
)

// Collection-level actions.
const (
	ActionCreate        = "create"
	ActionResetPassword = "reset-password"
	ActionUpload        = "upload"
	ActionUpdate        = "update"
)

// Service defines collection route handlers consumed by this route module.
type Service interface {
	HandleList(w http.ResponseWriter, r *http.Request, screen Screen)
	HandleCollectionAction(w http.ResponseWriter, r *http.Request, screen Screen, action string)
	HandleDetail(w http.ResponseWriter, r *http.Request, screen Screen, id string)
	HandleRecordAction(w http.ResponseWriter, r *http.Request, screen Screen, id string, action string)
}

type resource struct {
	screen Screen
	index  string
	prefix string
}

var resources = []resource{
	{screen: ScreenUsers, index: routepath.Users, prefix: routepath.UsersPrefix},
	{screen: ScreenTeamMembers, index: routepath.TeamMembers, prefix: routepath.TeamMembersPrefix},
	{screen: ScreenBookings, index: routepath.Bookings, prefix: routepath.BookingsPrefix},
	{screen: ScreenUpcomingBookings, index: routepath.UpcomingBookings},
	{screen: ScreenListings, index: routepath.Listings, prefix: routepath.ListingsPrefix},
	{screen: ScreenCustomOffers, index: routepath.CustomOffers, prefix: routepath.CustomOffersPrefix},
	{screen: ScreenDocuments, index: routepath.Documents},
	{screen: ScreenTransactions, index: routepath.Transactions},
	{screen: ScreenMessages, index: routepath.Messages, prefix: routepath.MessagesPrefix},
	{screen: ScreenReviews, index: routepath.Reviews, prefix: routepath.ReviewsPrefix},
}

type collectionAction struct {
	screen Screen
	path   string
	action string
}

var collectionActions = []collectionAction{
	{screen: ScreenUsers, path: routepath.UsersCreate, action: ActionCreate},
	{screen: ScreenTeamMembers, path: routepath.TeamMembersCreate, action: ActionCreate},
	{screen: ScreenTeamMembers, path: routepath.TeamMembersResetPassword, action: ActionResetPassword},
	{screen: ScreenDocuments, path: routepath.DocumentsUpload, action: ActionUpload},
	{screen: ScreenDocuments, path: routepath.DocumentsUpdate, action: ActionUpdate},
}

// RegisterRoutes wires list, detail, and mutation routes for every screen.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	for _, res := range resources {
		screen := res.screen
		mux.HandleFunc(res.index, func(w http.ResponseWriter, r *http.Request) {
			service.HandleList(w, r, screen)
		})
		if res.prefix == "" {
			continue
		}
		prefix := res.prefix
		mux.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
			HandleResourcePath(w, r, service, screen, prefix)
		})
	}
	for _, entry := range collectionActions {
		screen, action := entry.screen, entry.action
		mux.HandleFunc(entry.path, func(w http.ResponseWriter, r *http.Request) {
			service.HandleCollectionAction(w, r, screen, action)
		})
	}
}

// HandleResourcePath parses "<prefix><id>[/<action>]" and dispatches to service handlers.
func HandleResourcePath(w http.ResponseWriter, r *http.Request, service Service, screen Screen, prefix string) {
	if service == nil {
		http.NotFound(w, r)
		return
	}
	if sharedroute.RedirectTrailingSlash(w, r) {
		return
	}

	id, action, ok := sharedpath.ResourceTarget(strings.TrimPrefix(r.URL.Path, prefix))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if action == "" {
		service.HandleDetail(w, r, screen, id)
		return
	}
	service.HandleRecordAction(w, r, screen, id, action)
}

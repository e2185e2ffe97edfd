package admin

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/offerboat/admin/internal/services/admin/backend"
	"github.com/offerboat/admin/internal/services/admin/listview"
	collectionsmodule "github.com/offerboat/admin/internal/services/admin/module/collections"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	"github.com/offerboat/admin/internal/services/admin/templates"
)

// sortName is the only sort key the list screens register.
const sortName = "name"

type listSource int

const (
	// sourceCache reads the screen endpoint through the collection cache.
	sourceCache listSource = iota
	// sourceReviews decodes the reviews carried in the deep link.
	sourceReviews
	// sourceUpcoming reads one user's bookings for the date in the deep link.
	sourceUpcoming
)

type cellFunc func(loc templates.Localizer, item backend.Item) templates.Cell

type columnSpec struct {
	label    string
	sortable bool
	cell     cellFunc
}

type actionsFunc func(loc templates.Localizer, item backend.Item) []templates.RowAction

// screenSpec describes one list screen.
type screenSpec struct {
	screen    collectionsmodule.Screen
	title     string
	basePath  string
	source    listSource
	endpoint  backend.Endpoint
	pageSize  int
	search    []string
	name      func(item backend.Item) string
	adminOnly bool
	columns   []columnSpec
	actions   actionsFunc
	// createURL renders a heading call to action when set.
	createURL   string
	createLabel string
	// related endpoints are dropped from the cache alongside endpoint.
	related []backend.Endpoint
}

// config builds the list processor for the screen.
func (s screenSpec) config() listview.Config[backend.Item] {
	fields := make([]listview.Field[backend.Item], 0, len(s.search))
	for _, path := range s.search {
		fields = append(fields, itemField(path))
	}
	cfg := listview.Config[backend.Item]{
		PageSize:     s.pageSize,
		SearchFields: fields,
	}
	if s.name != nil {
		cfg.Sorters = map[string]listview.Compare[backend.Item]{
			sortName: listview.LowerCompare(s.name),
		}
	}
	return cfg
}

func itemField(path string) listview.Field[backend.Item] {
	return func(item backend.Item) (string, bool) {
		return item.Lookup(path)
	}
}

func displayName(prefix string) func(item backend.Item) string {
	return func(item backend.Item) string {
		return item.DisplayName(prefix)
	}
}

// reviewerName prefers the renter and falls back to the owner.
func reviewerName(item backend.Item) string {
	if name := item.DisplayName("renterId"); name != "" {
		return name
	}
	return item.DisplayName("ownerId")
}

var screens = map[collectionsmodule.Screen]screenSpec{
	collectionsmodule.ScreenUsers: {
		screen:   collectionsmodule.ScreenUsers,
		title:    "screen.users",
		basePath: routepath.Users,
		endpoint: backend.Users,
		pageSize: 30,
		search:   []string{"firstName", "lastName", "location", "email", "userType", "phoneNumber"},
		name:     displayName(""),
		columns: []columnSpec{
			{label: "column.name", sortable: true, cell: personCell("", func(item backend.Item) string { return routepath.User(item.ID()) })},
			{label: "column.email", cell: textCell("email")},
			{label: "column.user_type", cell: textCell("userType")},
			{label: "column.location", cell: textCell("location")},
			{label: "column.phone", cell: textCell("phoneNumber")},
			{label: "column.rating", cell: textCell("rating")},
		},
		actions: func(loc templates.Localizer, item backend.Item) []templates.RowAction {
			return []templates.RowAction{
				viewAction(loc, routepath.User(item.ID())),
				{Label: templates.T(loc, "action.edit"), URL: routepath.UserEdit(item.ID())},
				deleteAction(loc, routepath.UserDelete(item.ID())),
			}
		},
		createURL:   routepath.UsersCreate,
		createLabel: "action.create_user",
	},
	collectionsmodule.ScreenTeamMembers: {
		screen:    collectionsmodule.ScreenTeamMembers,
		title:     "screen.team",
		basePath:  routepath.TeamMembers,
		endpoint:  backend.TeamMembers,
		pageSize:  10,
		search:    []string{"firstName", "lastName", "userName", "email", "type", "phoneNumber"},
		name:      displayName(""),
		adminOnly: true,
		columns: []columnSpec{
			{label: "column.name", sortable: true, cell: personCell("", nil)},
			{label: "column.email", cell: textCell("email")},
			{label: "column.user_name", cell: textCell("userName")},
			{label: "column.type", cell: textCell("type")},
			{label: "column.phone", cell: textCell("phoneNumber")},
		},
		actions: func(loc templates.Localizer, item backend.Item) []templates.RowAction {
			return []templates.RowAction{
				{Label: templates.T(loc, "action.edit"), URL: routepath.TeamMemberEdit(item.ID())},
				deleteAction(loc, routepath.TeamMemberDelete(item.ID())),
			}
		},
		createURL:   routepath.TeamMembersCreate,
		createLabel: "action.create_team_member",
	},
	collectionsmodule.ScreenBookings: {
		screen:   collectionsmodule.ScreenBookings,
		title:    "screen.bookings",
		basePath: routepath.Bookings,
		endpoint: backend.Bookings,
		pageSize: 30,
		search:   []string{"userId.firstName", "userId.lastName", "location", "userId.email", "status"},
		name:     displayName("userId"),
		columns:  bookingColumns(),
		actions:  bookingActions,
		related:  []backend.Endpoint{backend.UpcomingBookings},
	},
	collectionsmodule.ScreenUpcomingBookings: {
		screen:   collectionsmodule.ScreenUpcomingBookings,
		title:    "screen.upcoming",
		basePath: routepath.UpcomingBookings,
		source:   sourceUpcoming,
		pageSize: 10,
		search:   []string{"userId.firstName", "userId.lastName", "status", "location", "userId.email"},
		name:     displayName("userId"),
		columns:  bookingColumns(),
		actions:  bookingActions,
	},
	collectionsmodule.ScreenListings: {
		screen:   collectionsmodule.ScreenListings,
		title:    "screen.listings",
		basePath: routepath.Listings,
		endpoint: backend.Listings,
		pageSize: 30,
		search:   []string{"ownerId.firstName", "ownerId.lastName", "location", "ownerId.email", "title"},
		name:     displayName("ownerId"),
		columns: []columnSpec{
			{label: "column.owner", sortable: true, cell: personCell("ownerId", func(item backend.Item) string { return routepath.Listing(item.ID()) })},
			{label: "column.email", cell: textCell("ownerId.email")},
			{label: "column.title", cell: truncatedCell("title", 20)},
			{label: "column.location", cell: textCell("location")},
		},
		actions: func(loc templates.Localizer, item backend.Item) []templates.RowAction {
			return []templates.RowAction{
				viewAction(loc, routepath.Listing(item.ID())),
				deleteAction(loc, routepath.ListingDelete(item.ID())),
			}
		},
	},
	collectionsmodule.ScreenCustomOffers: {
		screen:   collectionsmodule.ScreenCustomOffers,
		title:    "screen.offers",
		basePath: routepath.CustomOffers,
		endpoint: backend.CustomOffers,
		pageSize: 20,
		search:   []string{"userId.firstName", "userId.lastName", "location", "userId.email", "date"},
		name:     displayName("userId"),
		columns: []columnSpec{
			{label: "column.user", sortable: true, cell: personCell("userId", func(item backend.Item) string { return routepath.CustomOffer(item.ID()) })},
			{label: "column.email", cell: textCell("userId.email")},
			{label: "column.location", cell: textCell("location")},
			{label: "column.date", cell: textCell("date")},
			{label: "column.package", cell: packageCell("price", "hours")},
		},
		actions: func(loc templates.Localizer, item backend.Item) []templates.RowAction {
			return []templates.RowAction{
				viewAction(loc, routepath.CustomOffer(item.ID())),
				deleteAction(loc, routepath.CustomOfferDelete(item.ID())),
			}
		},
	},
	collectionsmodule.ScreenDocuments: {
		screen:   collectionsmodule.ScreenDocuments,
		title:    "screen.documents",
		basePath: routepath.Documents,
		endpoint: backend.Documents,
		pageSize: 30,
		search:   []string{"user.firstName", "user.lastName", "email"},
		name:     displayName("user"),
		columns: []columnSpec{
			{label: "column.user", sortable: true, cell: personCell("user", nil)},
			{label: "column.email", cell: textCell("email")},
			{label: "column.front_image", cell: imageCell("frontImage")},
			{label: "column.back_image", cell: imageCell("backImage")},
		},
		actions: func(loc templates.Localizer, item backend.Item) []templates.RowAction {
			return []templates.RowAction{
				{Label: templates.T(loc, "action.edit"), URL: templates.AppendQueryParam(routepath.DocumentsUpdate, "email", item.Text("email"))},
			}
		},
		createURL:   routepath.DocumentsUpload,
		createLabel: "action.upload_documents",
	},
	collectionsmodule.ScreenTransactions: {
		screen:    collectionsmodule.ScreenTransactions,
		title:     "screen.transactions",
		basePath:  routepath.Transactions,
		endpoint:  backend.Transactions,
		pageSize:  30,
		search:    []string{"paymentDetails.status", "paymentDetails.amount", "user.firstName", "user.lastName", "user.email"},
		name:      displayName("user"),
		adminOnly: true,
		columns: []columnSpec{
			{label: "column.user", sortable: true, cell: personCell("user", nil)},
			{label: "column.email", cell: textCell("user.email")},
			{label: "column.status", cell: textCell("paymentDetails.status")},
			{label: "column.amount", cell: func(_ templates.Localizer, item backend.Item) templates.Cell {
				return templates.Cell{Text: "$" + item.Text("paymentDetails.amount")}
			}},
			{label: "column.created", cell: unixTimeCell("paymentDetails.created")},
		},
	},
	collectionsmodule.ScreenMessages: {
		screen:   collectionsmodule.ScreenMessages,
		title:    "screen.messages",
		basePath: routepath.Messages,
		endpoint: backend.HelpMessages,
		pageSize: 20,
		search:   []string{"userId.firstName", "userId.lastName", "sender", "createdAt", "userId.email"},
		name:     displayName("userId"),
		columns: []columnSpec{
			{label: "column.user", sortable: true, cell: personCell("userId", func(item backend.Item) string { return routepath.Message(item.ID()) })},
			{label: "column.sender", cell: textCell("sender")},
			{label: "column.date", cell: dateCell("createdAt")},
			{label: "column.last_message", cell: lastMessageCell},
		},
		actions: func(loc templates.Localizer, item backend.Item) []templates.RowAction {
			return []templates.RowAction{viewAction(loc, routepath.Message(item.ID()))}
		},
	},
	collectionsmodule.ScreenReviews: {
		screen:   collectionsmodule.ScreenReviews,
		title:    "screen.reviews",
		basePath: routepath.Reviews,
		source:   sourceReviews,
		pageSize: 5,
		columns: []columnSpec{
			{label: "column.reviewer", cell: func(_ templates.Localizer, item backend.Item) templates.Cell {
				return templates.Cell{Text: reviewerName(item)}
			}},
			{label: "column.rating", cell: func(loc templates.Localizer, item backend.Item) templates.Cell {
				return templates.Cell{Text: templates.T(loc, "review.rating", item.Text("rating"))}
			}},
			{label: "column.review", cell: textCell("reviewText")},
			{label: "column.replies", cell: repliesCell},
			{label: "column.date", cell: dateCell("createdAt")},
		},
		actions: func(loc templates.Localizer, item backend.Item) []templates.RowAction {
			return []templates.RowAction{deleteAction(loc, routepath.ReviewDelete(item.ID()))}
		},
		related: []backend.Endpoint{backend.AllRatings},
	},
}

func bookingColumns() []columnSpec {
	return []columnSpec{
		{label: "column.renter", sortable: true, cell: personCell("userId", func(item backend.Item) string { return routepath.Booking(item.ID()) })},
		{label: "column.email", cell: textCell("userId.email")},
		{label: "column.location", cell: textCell("location")},
		{label: "column.status", cell: textCell("status")},
		{label: "column.package", cell: packageCell("packages.0.price", "packages.0.hours")},
	}
}

func bookingActions(loc templates.Localizer, item backend.Item) []templates.RowAction {
	return []templates.RowAction{
		viewAction(loc, routepath.Booking(item.ID())),
		deleteAction(loc, routepath.BookingDelete(item.ID())),
	}
}

func viewAction(loc templates.Localizer, url string) templates.RowAction {
	return templates.RowAction{Label: templates.T(loc, "action.view"), URL: url}
}

func deleteAction(loc templates.Localizer, url string) templates.RowAction {
	return templates.RowAction{
		Label:   templates.T(loc, "action.delete"),
		URL:     url,
		Post:    true,
		Confirm: templates.T(loc, "action.delete_confirm"),
		Danger:  true,
	}
}

// personCell renders the display name at prefix, or the missing placeholder
// when the referenced record is gone.
func personCell(prefix string, link func(item backend.Item) string) cellFunc {
	return func(_ templates.Localizer, item backend.Item) templates.Cell {
		if prefix != "" && !item.Relation(prefix).Present() {
			return templates.Cell{Missing: true}
		}
		cell := templates.Cell{Text: item.DisplayName(prefix)}
		if link != nil && item.ID() != "" {
			cell.URL = link(item)
		}
		return cell
	}
}

func textCell(path string) cellFunc {
	return func(_ templates.Localizer, item backend.Item) templates.Cell {
		return templates.Cell{Text: item.Text(path)}
	}
}

func truncatedCell(path string, limit int) cellFunc {
	return func(_ templates.Localizer, item backend.Item) templates.Cell {
		return templates.Cell{Text: truncate(item.Text(path), limit)}
	}
}

func imageCell(path string) cellFunc {
	return func(_ templates.Localizer, item backend.Item) templates.Cell {
		return templates.Cell{Text: path, Image: item.Text(path)}
	}
}

func packageCell(pricePath, hoursPath string) cellFunc {
	return func(loc templates.Localizer, item backend.Item) templates.Cell {
		price, ok := item.Lookup(pricePath)
		if !ok {
			return templates.Cell{}
		}
		return templates.Cell{Text: templates.T(loc, "booking.package", price, item.Text(hoursPath))}
	}
}

func dateCell(path string) cellFunc {
	return func(_ templates.Localizer, item backend.Item) templates.Cell {
		return templates.Cell{Text: formatDate(item.Text(path))}
	}
}

func unixTimeCell(path string) cellFunc {
	return func(loc templates.Localizer, item backend.Item) templates.Cell {
		seconds := item.Int(path)
		if seconds == 0 {
			return templates.Cell{Text: templates.T(loc, "list.not_available")}
		}
		return templates.Cell{Text: time.Unix(seconds, 0).UTC().Format("2006-01-02 15:04")}
	}
}

func lastMessageCell(loc templates.Localizer, item backend.Item) templates.Cell {
	thread := item.List("messageText")
	if len(thread) == 0 {
		return templates.Cell{Text: templates.T(loc, "message.none")}
	}
	return templates.Cell{Text: truncate(thread[len(thread)-1].Text("message"), 40)}
}

func repliesCell(_ templates.Localizer, item backend.Item) templates.Cell {
	replies := item.List("replies")
	parts := make([]string, 0, len(replies))
	for _, reply := range replies {
		parts = append(parts, reply.Text("replierName")+": "+reply.Text("replyText"))
	}
	return templates.Cell{Text: strings.Join(parts, " | ")}
}

// formatDate renders an RFC 3339 timestamp as a calendar date. Other values
// pass through untouched.
func formatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC().Format("2006-01-02")
	}
	return raw
}

func truncate(value string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit]) + "..."
}

package admin

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/offerboat/admin/internal/platform/requestctx"
	"github.com/offerboat/admin/internal/services/admin/backend"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	"github.com/offerboat/admin/internal/services/admin/session"
	"github.com/offerboat/admin/internal/services/admin/templates"
)

const (
	dashboardReviewLimit  = 12
	dashboardMessageLimit = 4
)

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routepath.Root {
		h.renderError(w, r, http.StatusNotFound, "error.not_found")
		return
	}
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	http.Redirect(w, r, session.Session{Role: principal.Role}.HomePath(), http.StatusSeeOther)
}

// adminStats are the aggregate figures on the admin landing page. Every field
// keeps its zero value when its fetch fails.
type adminStats struct {
	totalBookings     int64
	totalListings     int64
	owners            int64
	renters           int64
	todaysBookings    int64
	revenue           float64
	pendingBookings   int64
	acceptedBookings  int64
	weekly            []templates.WeeklyPoint
	finance           []templates.FinancePoint
	completedBookings int64
	upcoming          []backend.Item
}

// teamStats are the figures on the team member landing page.
type teamStats struct {
	todaysBookings   int64
	todaysListings   int64
	todaysMessages   int64
	pendingBookings  int64
	acceptedBookings int64
	ratings          []backend.Item
	messages         []backend.Item
	upcoming         []backend.Item
}

// fanOut runs every task concurrently. A failing task is logged and swallowed
// so the others still fill their part of the page.
func fanOut(ctx context.Context, tasks map[string]func(context.Context) error) {
	var group errgroup.Group
	for name, task := range tasks {
		group.Go(func() error {
			if err := task(ctx); err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("stat", name).Msg("dashboard stat unavailable")
			}
			return nil
		})
	}
	// Tasks never return an error, so Wait only joins them.
	_ = group.Wait()
}

func (h *Handler) loadAdminStats(r *http.Request) adminStats {
	ctx, cancel := backendContext(r)
	defer cancel()
	token := principalToken(r)

	var (
		mu    sync.Mutex
		stats = adminStats{weekly: emptyWeek()}
	)
	item := func(path string, apply func(backend.Item)) func(context.Context) error {
		return func(ctx context.Context) error {
			record, err := h.backend.FetchItem(ctx, path, token)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			apply(record)
			return nil
		}
	}
	fanOut(ctx, map[string]func(context.Context) error{
		"total_bookings": item(backend.PathTotalBookings, func(record backend.Item) {
			stats.totalBookings = record.Int("totalBookings")
		}),
		"total_listings": item(backend.PathTotalListings, func(record backend.Item) {
			stats.totalListings = record.Int("totalListings")
		}),
		"user_counts": item(backend.PathUserCounts, func(record backend.Item) {
			stats.owners = record.Int(userTypeOwner)
			stats.renters = record.Int(userTypeRenter)
		}),
		"todays_bookings": item(backend.PathTodaysBookingCount, func(record backend.Item) {
			stats.todaysBookings = record.Int("count")
		}),
		"transactions": item(backend.PathTransactionTotals, func(record backend.Item) {
			stats.revenue = record.Float("totalAmount") / 100
		}),
		"booking_counts": item(backend.PathBookingCounts, func(record backend.Item) {
			stats.pendingBookings = record.Int("pendingBookings")
			stats.acceptedBookings = record.Int("acceptedBookings")
		}),
		"finance": item(backend.PathFinance, func(record backend.Item) {
			stats.finance = financePoints(record.List("yearlyBookings"))
			stats.completedBookings = record.Int("completedBookings")
		}),
		"weekly_recap": func(ctx context.Context) error {
			days, err := h.backend.FetchCollection(ctx, backend.Endpoint{Path: backend.PathWeeklyRecap}, token)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			stats.weekly = weeklyPoints(days)
			return nil
		},
		"upcoming": func(ctx context.Context) error {
			bookings, err := h.backend.FetchCollection(ctx, backend.UpcomingBookings, token)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			stats.upcoming = bookings
			return nil
		},
	})
	return stats
}

func (h *Handler) loadTeamStats(r *http.Request) teamStats {
	ctx, cancel := backendContext(r)
	defer cancel()
	token := principalToken(r)

	var (
		mu    sync.Mutex
		stats teamStats
	)
	count := func(path, field string, dst *int64) func(context.Context) error {
		return func(ctx context.Context) error {
			record, err := h.backend.FetchItem(ctx, path, token)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			*dst = record.Int(field)
			return nil
		}
	}
	collection := func(endpoint backend.Endpoint, dst *[]backend.Item) func(context.Context) error {
		return func(ctx context.Context) error {
			items, err := h.backend.FetchCollection(ctx, endpoint, token)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			*dst = items
			return nil
		}
	}
	fanOut(ctx, map[string]func(context.Context) error{
		"todays_bookings": count(backend.PathTodaysBookings, "todayBookings", &stats.todaysBookings),
		"todays_listings": count(backend.PathTodaysListings, "todayListings", &stats.todaysListings),
		"todays_messages": count(backend.PathTodaysHelpMessages, "todayMessages", &stats.todaysMessages),
		"booking_counts": func(ctx context.Context) error {
			record, err := h.backend.FetchItem(ctx, backend.PathBookingCounts, token)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			stats.pendingBookings = record.Int("pendingBookings")
			stats.acceptedBookings = record.Int("acceptedBookings")
			return nil
		},
		"ratings":  collection(backend.AllRatings, &stats.ratings),
		"messages": collection(backend.HelpMessages, &stats.messages),
		"upcoming": collection(backend.UpcomingBookings, &stats.upcoming),
	})
	return stats
}

func (h *Handler) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) || !h.requireAdmin(w, r) {
		return
	}
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	stats := h.loadAdminStats(r)

	ownerPercent, renterPercent := userSplit(stats.owners, stats.renters)
	view := templates.AdminDashboardView{
		Counters: []templates.Counter{
			{Label: templates.T(loc, "dashboard.total_bookings"), Value: formatCount(stats.totalBookings), URL: routepath.Bookings},
			{Label: templates.T(loc, "dashboard.total_listings"), Value: formatCount(stats.totalListings), URL: routepath.Listings},
			{Label: templates.T(loc, "dashboard.total_users"), Value: formatCount(stats.owners + stats.renters), URL: routepath.Users},
			{Label: templates.T(loc, "dashboard.todays_bookings"), Value: formatCount(stats.todaysBookings)},
			{Label: templates.T(loc, "dashboard.revenue"), Value: templates.FormatAmount(stats.revenue), URL: routepath.Transactions},
			{Label: templates.T(loc, "dashboard.pending_bookings"), Value: formatCount(stats.pendingBookings)},
			{Label: templates.T(loc, "dashboard.accepted_bookings"), Value: formatCount(stats.acceptedBookings)},
		},
		OwnerPercent:      ownerPercent,
		RenterPercent:     renterPercent,
		Weekly:            stats.weekly,
		Finance:           stats.finance,
		CompletedBookings: stats.completedBookings,
		Upcoming:          upcomingDays(loc, stats.upcoming, upcomingWidgetSize),
	}
	renderPage(w, r, templates.AdminDashboardPage(page, view), templates.ComposePageTitle(loc, templates.T(loc, "dashboard.admin_title")))
}

func (h *Handler) handleTeamDashboard(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	stats := h.loadTeamStats(r)

	view := templates.TeamDashboardView{
		Counters: []templates.Counter{
			{Label: templates.T(loc, "dashboard.todays_bookings"), Value: formatCount(stats.todaysBookings), URL: routepath.Bookings},
			{Label: templates.T(loc, "dashboard.todays_listings"), Value: formatCount(stats.todaysListings), URL: routepath.Listings},
			{Label: templates.T(loc, "dashboard.todays_messages"), Value: formatCount(stats.todaysMessages), URL: routepath.Messages},
			{Label: templates.T(loc, "dashboard.pending_bookings"), Value: formatCount(stats.pendingBookings)},
			{Label: templates.T(loc, "dashboard.accepted_bookings"), Value: formatCount(stats.acceptedBookings)},
		},
		Upcoming: upcomingDays(loc, stats.upcoming, upcomingWidgetSize),
	}
	for _, rating := range latestFirst(stats.ratings, dashboardReviewLimit) {
		view.Reviews = append(view.Reviews, templates.ReviewCard{
			Name:      reviewerName(rating),
			Rating:    templates.T(loc, "review.rating", rating.Text("rating")),
			Review:    rating.Text("reviewText"),
			CreatedAt: formatDate(rating.Text("createdAt")),
		})
	}
	if len(stats.ratings) > 0 {
		view.ReviewsURL = routepath.ReviewsLink(reviewsJSON(stats.ratings), 1)
	}
	messages := stats.messages
	if len(messages) > dashboardMessageLimit {
		messages = messages[:dashboardMessageLimit]
	}
	for _, message := range messages {
		view.Messages = append(view.Messages, templates.MessagePreview{
			Name:   message.DisplayName("userId"),
			Text:   lastMessageCell(loc, message).Text,
			SentAt: formatDate(message.Text("createdAt")),
			URL:    routepath.Message(message.ID()),
		})
	}
	renderPage(w, r, templates.TeamDashboardPage(page, view), templates.ComposePageTitle(loc, templates.T(loc, "dashboard.team_title")))
}

// userSplit returns the owner and renter shares rounded to whole percents.
func userSplit(owners, renters int64) (int, int) {
	total := owners + renters
	if total <= 0 {
		return 0, 0
	}
	percent := func(n int64) int {
		return int(math.Round(float64(n) / float64(total) * 100))
	}
	return percent(owners), percent(renters)
}

func emptyWeek() []templates.WeeklyPoint {
	points := make([]templates.WeeklyPoint, 0, len(weekdays))
	for _, day := range weekdays {
		points = append(points, templates.WeeklyPoint{Day: day})
	}
	return points
}

// weeklyPoints fills the seven-day recap; days the backend omits stay at zero.
func weeklyPoints(days []backend.Item) []templates.WeeklyPoint {
	points := emptyWeek()
	for _, day := range days {
		for i := range points {
			if points[i].Day == day.Text("name") {
				points[i].Listings = day.Int("listings")
				points[i].Bookings = day.Int("bookings")
			}
		}
	}
	return points
}

func financePoints(months []backend.Item) []templates.FinancePoint {
	points := make([]templates.FinancePoint, 0, len(months))
	for _, month := range months {
		points = append(points, templates.FinancePoint{
			Name:     month.Text("name"),
			Bookings: month.Int("bookings"),
			Amount:   month.Float("amounts"),
		})
	}
	return points
}

func formatCount(n int64) string {
	return strconv.FormatInt(n, 10)
}

package admin

import (
	"cmp"
	"slices"
	"time"

	"github.com/offerboat/admin/internal/services/admin/backend"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
	"github.com/offerboat/admin/internal/services/admin/templates"
)

// bookingDateLayout is the DD-MM-YYYY format bookings carry.
const bookingDateLayout = "02-01-2006"

// upcomingWidgetSize is how many bookings the dashboard widget shows.
const upcomingWidgetSize = 3

type datedBooking struct {
	item backend.Item
	date time.Time
	ok   bool
}

// sortByBookingDate orders bookings by calendar date, ascending. Bookings
// with unreadable dates keep their relative order after the dated ones.
func sortByBookingDate(items []backend.Item) []backend.Item {
	dated := make([]datedBooking, 0, len(items))
	for _, item := range items {
		date, err := time.Parse(bookingDateLayout, item.Text("date"))
		dated = append(dated, datedBooking{item: item, date: date, ok: err == nil})
	}
	slices.SortStableFunc(dated, func(a, b datedBooking) int {
		switch {
		case a.ok && b.ok:
			return a.date.Compare(b.date)
		case a.ok:
			return -1
		case b.ok:
			return 1
		default:
			return 0
		}
	})
	out := make([]backend.Item, 0, len(dated))
	for _, entry := range dated {
		out = append(out, entry.item)
	}
	return out
}

// upcomingDays keeps the earliest limit bookings and groups them per date.
func upcomingDays(loc templates.Localizer, items []backend.Item, limit int) []templates.UpcomingDay {
	sorted := sortByBookingDate(items)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	days := make([]templates.UpcomingDay, 0, len(sorted))
	for _, item := range sorted {
		date := item.Text("date")
		entry := templates.UpcomingEntry{
			Name:   item.DisplayName("userId"),
			Detail: templates.T(loc, "upcoming.detail", date, item.Text("time"), item.Text("location"), item.Text("status")),
			URL:    routepath.Booking(item.ID()),
		}
		if n := len(days); n > 0 && days[n-1].Date == date {
			days[n-1].Entries = append(days[n-1].Entries, entry)
			continue
		}
		days = append(days, templates.UpcomingDay{
			Date:    date,
			Link:    upcomingDayLink(item.Relation("userId"), date),
			Entries: []templates.UpcomingEntry{entry},
		})
	}
	return days
}

func upcomingDayLink(user backend.Relation, date string) string {
	if !user.Present() {
		return ""
	}
	userType := user.Item().Text("userType")
	if userType == "" {
		userType = userTypeRenter
	}
	userJSON, err := upcomingUserJSON(user.Item().ID(), userType)
	if err != nil {
		return ""
	}
	return routepath.UpcomingBookingsLink(date, userJSON)
}

// calendarDay is one future date on a user's booking calendar.
type calendarDay struct {
	Date  string
	Count int
	Link  string
}

// bookingCalendar counts a user's bookings per date from today onwards.
func bookingCalendar(bookings []backend.Item, userID, userType string, today time.Time) []calendarDay {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	counts := map[string]int{}
	dates := map[string]time.Time{}
	for _, booking := range bookings {
		raw := booking.Text("date")
		date, err := time.Parse(bookingDateLayout, raw)
		if err != nil || date.Before(start) {
			continue
		}
		counts[raw]++
		dates[raw] = date
	}

	userJSON, err := upcomingUserJSON(userID, userType)
	days := make([]calendarDay, 0, len(counts))
	for raw, count := range counts {
		day := calendarDay{Date: raw, Count: count}
		if err == nil {
			day.Link = routepath.UpcomingBookingsLink(raw, userJSON)
		}
		days = append(days, day)
	}
	slices.SortFunc(days, func(a, b calendarDay) int {
		return cmp.Compare(dates[a.Date].Unix(), dates[b.Date].Unix())
	})
	return days
}

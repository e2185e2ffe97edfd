package templates

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Counter is one dashboard stat card.
type Counter struct {
	Label string
	Value string
	URL   string
}

// WeeklyPoint is one day of the weekly recap chart.
type WeeklyPoint struct {
	Day      string
	Listings int64
	Bookings int64
}

// FinancePoint is one month of the finance chart.
type FinancePoint struct {
	Name     string
	Bookings int64
	Amount   float64
}

// UpcomingEntry is one booking under an upcoming calendar date.
type UpcomingEntry struct {
	Name   string
	Detail string
	URL    string
}

// UpcomingDay groups upcoming bookings by calendar date.
type UpcomingDay struct {
	Date    string
	Link    string
	Entries []UpcomingEntry
}

// ReviewCard is one recent rating on the team dashboard.
type ReviewCard struct {
	Name      string
	Rating    string
	Review    string
	CreatedAt string
}

// MessagePreview is one recent support message.
type MessagePreview struct {
	Name   string
	Text   string
	SentAt string
	URL    string
}

// AdminDashboardView is the admin landing page.
type AdminDashboardView struct {
	Counters          []Counter
	OwnerPercent      int
	RenterPercent     int
	Weekly            []WeeklyPoint
	Finance           []FinancePoint
	CompletedBookings int64
	Upcoming          []UpcomingDay
}

// TeamDashboardView is the team member landing page.
type TeamDashboardView struct {
	Counters   []Counter
	Reviews    []ReviewCard
	ReviewsURL string
	Messages   []MessagePreview
	Upcoming   []UpcomingDay
}

// AdminDashboardPage renders the admin landing page.
func AdminDashboardPage(page PageContext, view AdminDashboardView) templ.Component {
	title := T(page.Loc, "dashboard.admin_title")
	return Layout(page, title, component(func(hw *htmlWriter) {
		hw.child(Heading(PageHeading{Title: title}))
		hw.child(counterGrid(view.Counters))

		hw.open("div", "class", "dashboard-grid")
		hw.open("section", "class", "card")
		hw.element("h2", T(page.Loc, "dashboard.user_split"), "class", "card-title")
		hw.open("div", "class", "split-bar", "role", "img",
			"aria-label", T(page.Loc, "dashboard.user_split_label", view.OwnerPercent, view.RenterPercent))
		hw.open("span", "class", "split-owner", "style", "width: "+itoa(view.OwnerPercent)+"%")
		hw.close("span")
		hw.open("span", "class", "split-renter", "style", "width: "+itoa(view.RenterPercent)+"%")
		hw.close("span")
		hw.close("div")
		hw.open("ul", "class", "legend")
		hw.element("li", T(page.Loc, "dashboard.owners", view.OwnerPercent))
		hw.element("li", T(page.Loc, "dashboard.renters", view.RenterPercent))
		hw.close("ul")
		hw.close("section")

		hw.child(weeklyChart(page, view.Weekly))
		hw.child(financeChart(page, view.Finance, view.CompletedBookings))
		hw.child(upcomingWidget(page, view.Upcoming))
		hw.close("div")
	}))
}

// TeamDashboardPage renders the team member landing page.
func TeamDashboardPage(page PageContext, view TeamDashboardView) templ.Component {
	title := T(page.Loc, "dashboard.team_title")
	return Layout(page, title, component(func(hw *htmlWriter) {
		hw.child(Heading(PageHeading{Title: title}))
		hw.child(counterGrid(view.Counters))

		hw.open("div", "class", "dashboard-grid")
		hw.open("section", "class", "card")
		hw.element("h2", T(page.Loc, "dashboard.recent_reviews"), "class", "card-title")
		if len(view.Reviews) == 0 {
			hw.element("p", T(page.Loc, "dashboard.no_reviews"), "class", "text-muted")
		}
		hw.open("ul", "class", "reviews")
		for _, review := range view.Reviews {
			hw.open("li")
			hw.element("strong", review.Name)
			hw.element("span", review.Rating, "class", "badge")
			hw.element("p", review.Review)
			hw.element("time", review.CreatedAt)
			hw.close("li")
		}
		hw.close("ul")
		if view.ReviewsURL != "" {
			hw.link(view.ReviewsURL, T(page.Loc, "dashboard.view_all"), "class", "btn btn-sm")
		}
		hw.close("section")

		hw.open("section", "class", "card")
		hw.element("h2", T(page.Loc, "dashboard.recent_messages"), "class", "card-title")
		if len(view.Messages) == 0 {
			hw.element("p", T(page.Loc, "dashboard.no_messages"), "class", "text-muted")
		}
		hw.open("ul", "class", "messages")
		for _, message := range view.Messages {
			hw.open("li")
			hw.link(message.URL, message.Name)
			hw.element("p", message.Text)
			hw.element("time", message.SentAt)
			hw.close("li")
		}
		hw.close("ul")
		hw.close("section")

		hw.child(upcomingWidget(page, view.Upcoming))
		hw.close("div")
	}))
}

func counterGrid(counters []Counter) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("div", "class", "stats")
		for _, counter := range counters {
			hw.open("div", "class", "stat")
			hw.element("div", counter.Label, "class", "stat-title")
			if counter.URL != "" {
				hw.open("div", "class", "stat-value")
				hw.link(counter.URL, counter.Value)
				hw.close("div")
			} else {
				hw.element("div", counter.Value, "class", "stat-value")
			}
			hw.close("div")
		}
		hw.close("div")
	})
}

func weeklyChart(page PageContext, points []WeeklyPoint) templ.Component {
	return component(func(hw *htmlWriter) {
		var peak int64
		for _, point := range points {
			peak = max(peak, point.Listings, point.Bookings)
		}
		hw.open("section", "class", "card")
		hw.element("h2", T(page.Loc, "dashboard.weekly_recap"), "class", "card-title")
		hw.open("div", "class", "bar-chart")
		for _, point := range points {
			hw.open("div", "class", "bar-group")
			hw.open("span", "class", "bar bar-listings", "style", "height: "+itoa(percentOf(point.Listings, peak))+"%",
				"title", T(page.Loc, "dashboard.listings_count", point.Listings))
			hw.close("span")
			hw.open("span", "class", "bar bar-bookings", "style", "height: "+itoa(percentOf(point.Bookings, peak))+"%",
				"title", T(page.Loc, "dashboard.bookings_count", point.Bookings))
			hw.close("span")
			hw.element("span", point.Day, "class", "bar-label")
			hw.close("div")
		}
		hw.close("div")
		hw.close("section")
	})
}

func financeChart(page PageContext, points []FinancePoint, completed int64) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("section", "class", "card")
		hw.element("h2", T(page.Loc, "dashboard.finance"), "class", "card-title")
		hw.element("p", T(page.Loc, "dashboard.completed_bookings", completed), "class", "stat-desc")
		if len(points) == 0 {
			hw.element("p", T(page.Loc, "dashboard.no_finance"), "class", "text-muted")
			hw.close("section")
			return
		}
		hw.open("svg", "class", "line-chart", "viewBox", "0 0 100 40", "preserveAspectRatio", "none", "role", "img",
			"aria-label", T(page.Loc, "dashboard.finance"))
		hw.open("polyline", "fill", "none", "stroke", "currentColor", "stroke-width", "1", "points", polylinePoints(points))
		hw.close("polyline")
		hw.close("svg")
		hw.open("table", "class", "table table-xs")
		hw.raw("<thead><tr>")
		hw.element("th", T(page.Loc, "dashboard.month"))
		hw.element("th", T(page.Loc, "dashboard.bookings"))
		hw.element("th", T(page.Loc, "dashboard.amount"))
		hw.raw("</tr></thead><tbody>")
		for _, point := range points {
			hw.raw("<tr>")
			hw.element("td", point.Name)
			hw.element("td", strconv.FormatInt(point.Bookings, 10))
			hw.element("td", FormatAmount(point.Amount))
			hw.raw("</tr>")
		}
		hw.raw("</tbody></table>")
		hw.close("section")
	})
}

func upcomingWidget(page PageContext, days []UpcomingDay) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.open("section", "class", "card")
		hw.element("h2", T(page.Loc, "dashboard.upcoming"), "class", "card-title")
		if len(days) == 0 {
			hw.element("p", T(page.Loc, "dashboard.no_upcoming"), "class", "text-muted")
		}
		for _, day := range days {
			hw.open("div", "class", "upcoming-day")
			hw.element("h3", day.Date)
			hw.open("ul")
			for _, entry := range day.Entries {
				hw.open("li")
				if entry.URL != "" {
					hw.link(entry.URL, entry.Name)
				} else {
					hw.text(entry.Name)
				}
				hw.element("span", entry.Detail, "class", "text-muted")
				hw.close("li")
			}
			hw.close("ul")
			if day.Link != "" {
				hw.link(day.Link, T(page.Loc, "dashboard.view_day"), "class", "btn btn-xs")
			}
			hw.close("div")
		}
		hw.close("section")
	})
}

func percentOf(value, peak int64) int {
	if peak <= 0 || value <= 0 {
		return 0
	}
	return int(value * 100 / peak)
}

// polylinePoints scales amounts into a 100x40 viewBox.
func polylinePoints(points []FinancePoint) string {
	peak := 0.0
	for _, point := range points {
		peak = max(peak, point.Amount)
	}
	step := 100.0
	if len(points) > 1 {
		step = 100.0 / float64(len(points)-1)
	}
	coords := make([]string, 0, len(points))
	for i, point := range points {
		y := 40.0
		if peak > 0 {
			y = 40 - point.Amount/peak*40
		}
		coords = append(coords, strconv.FormatFloat(float64(i)*step, 'f', 1, 64)+","+strconv.FormatFloat(y, 'f', 1, 64))
	}
	return strings.Join(coords, " ")
}

// FormatAmount renders a currency amount with two decimals.
func FormatAmount(amount float64) string {
	return "$" + strconv.FormatFloat(amount, 'f', 2, 64)
}

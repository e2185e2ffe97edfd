package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerboat/admin/internal/services/admin/backend"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
)

func bookings(raw ...string) []backend.Item {
	items := make([]backend.Item, 0, len(raw))
	for _, value := range raw {
		items = append(items, backend.MustItem(value))
	}
	return items
}

func TestSortByBookingDate(t *testing.T) {
	sorted := sortByBookingDate(bookings(
		`{"_id":"c","date":"01-02-2026"}`,
		`{"_id":"x","date":"soon"}`,
		`{"_id":"a","date":"15-01-2026"}`,
		`{"_id":"b","date":"01-02-2026"}`,
	))
	ids := make([]string, 0, len(sorted))
	for _, item := range sorted {
		ids = append(ids, item.ID())
	}
	assert.Equal(t, []string{"a", "c", "b", "x"}, ids)
}

func TestUpcomingDaysBucketsFirstThree(t *testing.T) {
	days := upcomingDays(nil, bookings(
		`{"_id":"b4","date":"09-03-2026","userId":{"_id":"u1","firstName":"Late"}}`,
		`{"_id":"b2","date":"05-03-2026","userId":{"_id":"u2","firstName":"Bo","userType":"BoatOwner"}}`,
		`{"_id":"b1","date":"05-03-2026","userId":{"_id":"u3","firstName":"Al"}}`,
		`{"_id":"b3","date":"07-03-2026"}`,
	), upcomingWidgetSize)

	require.Len(t, days, 2)
	assert.Equal(t, "05-03-2026", days[0].Date)
	require.Len(t, days[0].Entries, 2)
	assert.Equal(t, routepath.Booking("b2"), days[0].Entries[0].URL)
	assert.Contains(t, days[0].Link, routepath.UpcomingBookings+"?")

	assert.Equal(t, "07-03-2026", days[1].Date)
	assert.Empty(t, days[1].Link)
}

func TestUpcomingDaysEmpty(t *testing.T) {
	assert.Empty(t, upcomingDays(nil, nil, upcomingWidgetSize))
}

func TestBookingCalendarSkipsPastDates(t *testing.T) {
	today := time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)
	days := bookingCalendar(bookings(
		`{"date":"04-03-2026"}`,
		`{"date":"12-03-2026"}`,
		`{"date":"05-03-2026"}`,
		`{"date":"12-03-2026"}`,
		`{"date":"not a date"}`,
	), "u1", userTypeOwner, today)

	require.Len(t, days, 2)
	assert.Equal(t, calendarDay{Date: "05-03-2026", Count: 1, Link: days[0].Link}, days[0])
	assert.Equal(t, 2, days[1].Count)
	assert.Contains(t, days[1].Link, "12-03-2026")
}

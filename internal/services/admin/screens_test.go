package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerboat/admin/internal/services/admin/backend"
	collectionsmodule "github.com/offerboat/admin/internal/services/admin/module/collections"
	"github.com/offerboat/admin/internal/services/admin/listview"
)

func TestScreenPageSizes(t *testing.T) {
	want := map[collectionsmodule.Screen]int{
		collectionsmodule.ScreenUsers:            30,
		collectionsmodule.ScreenTeamMembers:      10,
		collectionsmodule.ScreenBookings:         30,
		collectionsmodule.ScreenUpcomingBookings: 10,
		collectionsmodule.ScreenListings:         30,
		collectionsmodule.ScreenCustomOffers:     20,
		collectionsmodule.ScreenDocuments:        30,
		collectionsmodule.ScreenTransactions:     30,
		collectionsmodule.ScreenMessages:         20,
		collectionsmodule.ScreenReviews:          5,
	}
	require.Len(t, screens, len(want))
	for screen, size := range want {
		assert.Equal(t, size, screens[screen].pageSize, screen)
		assert.Equal(t, screen, screens[screen].screen)
	}
	assert.True(t, screens[collectionsmodule.ScreenTransactions].adminOnly)
	assert.True(t, screens[collectionsmodule.ScreenTeamMembers].adminOnly)
}

func TestScreenConfigSortsByDisplayName(t *testing.T) {
	items := bookings(
		`{"_id":"1","userId":{"firstName":"zoe","lastName":"b"}}`,
		`{"_id":"2","userId":{"firstName":"Adam","lastName":"c"}}`,
		`{"_id":"3"}`,
	)
	cfg := screens[collectionsmodule.ScreenBookings].config()
	result := cfg.Render(items, listview.State{SortField: sortName, SortDir: listview.Asc, Page: 1})
	require.Len(t, result.Items, 3)
	assert.Equal(t, "2", result.Items[1].ID())
	assert.Equal(t, "1", result.Items[2].ID())
}

func TestScreenConfigSearchesRelations(t *testing.T) {
	items := bookings(
		`{"_id":"1","status":"Pending","userId":{"email":"ana@boats.test"}}`,
		`{"_id":"2","status":"Accepted","userId":null}`,
	)
	cfg := screens[collectionsmodule.ScreenBookings].config()
	result := cfg.Render(items, listview.State{Search: "ANA@", Page: 1})
	require.Len(t, result.Items, 1)
	assert.Equal(t, "1", result.Items[0].ID())
}

func TestPersonCellMissingRelation(t *testing.T) {
	cell := personCell("userId", nil)(nil, backend.MustItem(`{"_id":"b1","userId":null}`))
	assert.True(t, cell.Missing)

	cell = personCell("ownerId", nil)(nil, backend.MustItem(`{"_id":"l1","ownerId":{"firstName":"Rui","lastName":"Sá"}}`))
	assert.False(t, cell.Missing)
	assert.Equal(t, "Rui Sá", cell.Text)
}

func TestLastMessageCell(t *testing.T) {
	cell := lastMessageCell(nil, backend.MustItem(`{"messageText":[]}`))
	assert.Equal(t, "message.none", cell.Text)

	cell = lastMessageCell(nil, backend.MustItem(`{"messageText":[{"message":"first"},{"message":"latest"}]}`))
	assert.Equal(t, "latest", cell.Text)
}

func TestFormatDateAndTruncate(t *testing.T) {
	assert.Equal(t, "2026-03-05", formatDate("2026-03-05T23:10:00Z"))
	assert.Equal(t, "05-03-2026", formatDate("05-03-2026"))
	assert.Equal(t, "Sunset...", truncate("Sunset cruise", 6))
	assert.Equal(t, "Açaí", truncate("Açaí", 4))
}

package admin

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/offerboat/admin/internal/services/admin/backend"
	routepath "github.com/offerboat/admin/internal/services/admin/routepath"
)

// User types the marketplace assigns.
const (
	userTypeOwner  = "BoatOwner"
	userTypeRenter = "BoatRenter"
)

var (
	errDeepLinkMissing   = errors.New("deep link parameter missing")
	errDeepLinkMalformed = errors.New("deep link parameter malformed")
)

// upcomingTarget identifies whose bookings the upcoming screen shows.
type upcomingTarget struct {
	Date     string
	UserID   string
	UserType string
}

// Endpoint returns the backend collection for the target.
func (t upcomingTarget) Endpoint() backend.Endpoint {
	return backend.UserUpcomingBookings(t.UserID, t.Date, t.UserType)
}

// decodeJSONParam accepts a value that arrived either decoded once or still
// percent-encoded from a client that encoded the JSON before building the URL.
func decodeJSONParam(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "%") {
		if decoded, err := url.QueryUnescape(raw); err == nil {
			return decoded
		}
	}
	return raw
}

// parseReviewsParam decodes the reviews array carried by a deep link.
func parseReviewsParam(values url.Values) ([]backend.Item, error) {
	raw := decodeJSONParam(values.Get(routepath.ParamReviews))
	if raw == "" {
		return nil, errDeepLinkMissing
	}
	items, err := backend.ParseCollection([]byte(raw), "")
	if err != nil {
		return nil, errDeepLinkMalformed
	}
	return items, nil
}

// parseUpcomingParams decodes the date and user parameters of the upcoming
// bookings deep link.
func parseUpcomingParams(values url.Values) (upcomingTarget, error) {
	date := strings.TrimSpace(values.Get(routepath.ParamDate))
	rawUser := decodeJSONParam(values.Get(routepath.ParamUser))
	if date == "" || rawUser == "" {
		return upcomingTarget{}, errDeepLinkMissing
	}
	if _, err := time.Parse(bookingDateLayout, date); err != nil {
		return upcomingTarget{}, errDeepLinkMalformed
	}
	if !gjson.Valid(rawUser) {
		return upcomingTarget{}, errDeepLinkMalformed
	}
	user := gjson.Parse(rawUser)
	target := upcomingTarget{
		Date:     date,
		UserID:   strings.TrimSpace(user.Get("_id").String()),
		UserType: strings.TrimSpace(user.Get("userType").String()),
	}
	if target.UserID == "" {
		return upcomingTarget{}, errDeepLinkMalformed
	}
	if target.UserType == "" {
		target.UserType = userTypeRenter
	}
	return target, nil
}

// upcomingUserJSON encodes the user parameter of the upcoming bookings link.
func upcomingUserJSON(userID, userType string) (string, error) {
	raw, err := sjson.Set("{}", "_id", userID)
	if err != nil {
		return "", err
	}
	return sjson.Set(raw, "userType", userType)
}

// reviewsJSON encodes reviews for the review list deep link.
func reviewsJSON(reviews []backend.Item) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, review := range reviews {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(review.Raw())
	}
	b.WriteByte(']')
	return b.String()
}

// Package routepath holds the dashboard URL layout.
package routepath

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	Root = "/"
)

const (
	StaticPrefix = "/static/"
	Healthz      = "/healthz"
)

const (
	Login     = "/login"
	Logout    = "/logout"
	PushToken = "/push-token"
)

const (
	AdminHome = "/admin"
	TeamHome  = "/team"
)

const (
	Notifications       = "/notifications"
	NotificationsClear  = "/notifications/clear"
	NotificationsPrefix = "/notifications/"
)

const (
	Users       = "/users"
	UsersCreate = "/users/create"
	UsersPrefix = "/users/"
)

const (
	TeamMembers              = "/team-members"
	TeamMembersCreate        = "/team-members/create"
	TeamMembersResetPassword = "/team-members/reset-password"
	TeamMembersPrefix        = "/team-members/"
)

const (
	Bookings         = "/bookings"
	BookingsPrefix   = "/bookings/"
	UpcomingBookings = "/upcoming-bookings"
)

const (
	Listings       = "/listings"
	ListingsPrefix = "/listings/"
)

const (
	CustomOffers       = "/custom-offers"
	CustomOffersPrefix = "/custom-offers/"
)

const (
	Documents       = "/documents"
	DocumentsUpload = "/documents/upload"
	DocumentsUpdate = "/documents/update"
)

const (
	Transactions = "/transactions"
)

const (
	Messages       = "/messages"
	MessagesPrefix = "/messages/"
)

const (
	Reviews       = "/reviews"
	ReviewsPrefix = "/reviews/"
)

// Deep-link query parameters.
const (
	ParamReviews = "reviews"
	ParamDate    = "date"
	ParamUser    = "user"
	ParamMessage = "message"
	ParamError   = "error"
	ParamExpired = "expired"
)

func User(userID string) string {
	return Users + "/" + escapeSegment(userID)
}

func UserEdit(userID string) string {
	return User(userID) + "/edit"
}

func UserDelete(userID string) string {
	return User(userID) + "/delete"
}

func UserProfilePictureDelete(userID string) string {
	return User(userID) + "/profile-picture/delete"
}

func TeamMemberEdit(memberID string) string {
	return TeamMembers + "/" + escapeSegment(memberID) + "/edit"
}

func TeamMemberDelete(memberID string) string {
	return TeamMembers + "/" + escapeSegment(memberID) + "/delete"
}

func Booking(bookingID string) string {
	return Bookings + "/" + escapeSegment(bookingID)
}

func BookingDelete(bookingID string) string {
	return Booking(bookingID) + "/delete"
}

func Listing(listingID string) string {
	return Listings + "/" + escapeSegment(listingID)
}

func ListingDelete(listingID string) string {
	return Listing(listingID) + "/delete"
}

func ListingImageRemove(listingID string) string {
	return Listing(listingID) + "/images/remove"
}

func CustomOffer(offerID string) string {
	return CustomOffers + "/" + escapeSegment(offerID)
}

func CustomOfferDelete(offerID string) string {
	return CustomOffer(offerID) + "/delete"
}

func CustomOfferListing(offerID string) string {
	return CustomOffer(offerID) + "/listing"
}

func Message(messageID string) string {
	return Messages + "/" + escapeSegment(messageID)
}

func MessageReply(messageID string) string {
	return Message(messageID) + "/reply"
}

func ReviewDelete(reviewID string) string {
	return Reviews + "/" + escapeSegment(reviewID) + "/delete"
}

func NotificationRead(notificationID string) string {
	return Notifications + "/" + escapeSegment(notificationID) + "/read"
}

// ReviewsLink builds the review list deep link carrying the reviews as JSON.
func ReviewsLink(reviewsJSON string, page int) string {
	query := url.Values{}
	query.Set(ParamReviews, reviewsJSON)
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}
	return Reviews + "?" + query.Encode()
}

// UpcomingBookingsLink builds the per-day booking deep link. date is DD-MM-YYYY
// and userJSON carries the user's _id and userType.
func UpcomingBookingsLink(date string, userJSON string) string {
	query := url.Values{}
	query.Set(ParamDate, date)
	query.Set(ParamUser, userJSON)
	return UpcomingBookings + "?" + query.Encode()
}

// WithMessage appends a flash message query parameter to target.
func WithMessage(target string, key string, text string) string {
	separator := "?"
	if strings.Contains(target, "?") {
		separator = "&"
	}
	return target + separator + url.QueryEscape(key) + "=" + url.QueryEscape(text)
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}

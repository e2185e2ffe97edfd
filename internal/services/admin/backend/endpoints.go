package backend

import (
	"net/url"
	"strings"
)

// Endpoint identifies a collection GET and how to find its array.
type Endpoint struct {
	Path  string
	Query url.Values
	// ArrayPath names the property holding the array when the response wraps it.
	ArrayPath string
}

// Key returns the cache key for the endpoint.
func (e Endpoint) Key() string {
	if len(e.Query) == 0 {
		return e.Path
	}
	return e.Path + "?" + e.Query.Encode()
}

// Collection endpoints.
var (
	Users            = Endpoint{Path: "/user/users"}
	TeamMembers      = Endpoint{Path: "/team/teams"}
	Bookings         = Endpoint{Path: "/booking/bookings"}
	Listings         = Endpoint{Path: "/listing/listings"}
	CustomOffers     = Endpoint{Path: "/getAllCustomOffers", ArrayPath: "offers"}
	Documents        = Endpoint{Path: "/user/documents"}
	Transactions     = Endpoint{Path: "/booking/fetch-all-transactions"}
	HelpMessages     = Endpoint{Path: "/message/helpMessages"}
	Notifications    = Endpoint{Path: "/notification/notifications"}
	UpcomingBookings = Endpoint{Path: "/booking/upcomingBookings", ArrayPath: "bookings"}
	AllRatings       = Endpoint{Path: "/user/allRatings", ArrayPath: "ratings"}
)

// UserUpcomingBookings lists one user's bookings on a calendar date.
func UserUpcomingBookings(userID, date, userType string) Endpoint {
	query := url.Values{}
	query.Set("userId", userID)
	query.Set("date", date)
	query.Set("userType", userType)
	return Endpoint{Path: PathUserUpcomingBookings, Query: query}
}

// Parameterized collection paths.
const (
	PathUserUpcomingBookings = "/booking/userUpcomingBookings"
	PathOfferListings        = "/OwnerListingOnCustomOffers"
)

// Aggregate counter endpoints.
const (
	PathTotalBookings      = "/booking/totalBookings"
	PathTotalListings      = "/listing/totalListings"
	PathUserCounts         = "/user/user-counts"
	PathTodaysBookingCount = "/booking/todays-bookings-count"
	PathTransactionTotals  = "/booking/transactions"
	PathBookingCounts      = "/booking/booking-counts"
	PathWeeklyRecap        = "/booking/weekly-recap"
	PathFinance            = "/booking/finance"
	PathTodaysBookings     = "/booking/todaysBookings"
	PathTodaysListings     = "/listing/todaysListings"
	PathTodaysHelpMessages = "/team/todaysHelpMessages"
)

// Auth endpoints.
const (
	PathSignIn         = "/team/signin"
	PathUpdateFCMToken = "/team/update-fcm-token"
)

// Mutation endpoints without identifiers.
const (
	PathDeleteUser        = "/user/deleteUserById"
	PathTeamSignup        = "/team/signup"
	PathTeamResetPassword = "/team/reset-password"
	PathUserSignup        = "/user/signup"
	PathUploadDocuments   = "/user/uploadDocuments"
	PathUpdateDocuments   = "/user/updateDocuments"
	PathSendHelpMessage   = "/message/sendHelpMessage"
	PathDeleteAllNotices  = "/notification/delete-Notifications"
)

func withID(prefix, id string) string {
	return prefix + "/" + url.PathEscape(strings.TrimSpace(id))
}

// UserDetailsPath returns the user detail endpoint.
func UserDetailsPath(id string) string { return withID("/user/userDetails", id) }

// BookingPath returns the booking detail endpoint.
func BookingPath(id string) string { return withID("/booking/bookings", id) }

// ListingPath returns the listing detail endpoint.
func ListingPath(id string) string { return withID("/listing/listings", id) }

// CustomOfferPath returns the custom offer detail endpoint.
func CustomOfferPath(id string) string { return withID("/booking/customOffers", id) }

// OfferListingPath returns the listing an owner attached to a custom offer.
func OfferListingPath(id string) string { return withID(PathOfferListings, id) }

// MessageDetailsPath returns the support conversation endpoint.
func MessageDetailsPath(id string) string { return withID("/message/messageDetails", id) }

// TeamMemberPath returns the team member lookup by user name.
func TeamMemberPath(userName string) string { return withID("/team/teamData", userName) }

// DeleteBookingPath returns the booking delete endpoint.
func DeleteBookingPath(id string) string { return withID("/booking/delete-booking", id) }

// DeleteListingPath returns the listing delete endpoint.
func DeleteListingPath(id string) string { return withID("/listing/delete-listing", id) }

// DeleteCustomOfferPath returns the custom offer delete endpoint.
func DeleteCustomOfferPath(id string) string { return withID("/deleteCustomOffer", id) }

// DeleteTeamMemberPath returns the team member delete endpoint.
func DeleteTeamMemberPath(id string) string { return withID("/team/deleteTeam", id) }

// UpdateTeamMemberPath returns the team member update endpoint.
func UpdateTeamMemberPath(id string) string { return withID("/team/updateteam", id) }

// UpdateUserPath returns the user update endpoint.
func UpdateUserPath(id string) string { return withID("/user/updateUser", id) }

// DeleteReviewPath returns the review delete endpoint.
func DeleteReviewPath(id string) string { return withID("/user/deleteReview", id) }

// DeleteProfilePicturePath returns the profile picture delete endpoint.
func DeleteProfilePicturePath(id string) string { return withID("/user/deleteProfilePicture", id) }

// RemoveListingImagePath returns the listing image removal endpoint.
func RemoveListingImagePath(id string) string { return withID("/listing/listings", id) + "/remove-image" }

// MarkNotificationReadPath returns the notification read endpoint.
func MarkNotificationReadPath(id string) string {
	return withID("/notification/notifications", id) + "/read"
}

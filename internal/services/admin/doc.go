// Package admin serves the OfferBoat operator dashboard.
//
// Staff sign in against the marketplace backend, browse cached collections
// of users, bookings, listings, offers, transactions, messages and documents,
// and issue writes that are forwarded to the backend with the staff token.
// Admins see the full surface; team members get a reduced dashboard.
package admin

// Package session owns staff sign-in: credential exchange with the backend,
// expiry tracking from the issued token, and the failed-attempt lockout.
package session

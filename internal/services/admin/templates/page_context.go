package templates

import "time"

// PageContext provides shared layout context for dashboard pages.
type PageContext struct {
	Lang         string
	Loc          Localizer
	CurrentPath  string
	CurrentQuery string
	// UserName and Role describe the signed-in staff member. Both are empty
	// on the login screen.
	UserName string
	Role     string
	Admin    bool
	// SessionExpiresAt drives the client-side expiry redirect.
	SessionExpiresAt time.Time
	Now              time.Time
	Flash            string
	FlashError       string
}

// SignedIn reports whether the page renders for an authenticated principal.
func (p PageContext) SignedIn() bool {
	return p.UserName != ""
}

// secondsUntilExpiry returns the whole seconds left on the session, floored at zero.
func (p PageContext) secondsUntilExpiry() int {
	if p.SessionExpiresAt.IsZero() {
		return -1
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	remaining := p.SessionExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

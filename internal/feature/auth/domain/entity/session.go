package entity

import "time"

// Session represents a browser session tracked across requests.
// A session with UserID 0 is a guest session: it exists so that
// anonymous pages (login, registration) can carry flash messages.
type Session struct {
	ID        string    // Opaque session value (64-character hex string)
	UserID    uint      // Authenticated user ID, 0 for guests
	Remember  bool      // Whether the user asked to stay logged in
	CreatedAt time.Time // Session creation time
	ExpiresAt time.Time // Session expiration time
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsAuthenticated returns true if the session belongs to a logged-in user.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != 0
}

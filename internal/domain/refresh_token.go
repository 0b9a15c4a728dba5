package domain

import "time"

// RefreshToken is the single long-lived credential a user may hold.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Expired reports expiry; a token whose expiry equals now is still valid.
func (t RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

package domain

import "time"

// OTP is one outstanding verification attempt for an email.
type OTP struct {
	ID        string
	Email     string
	Code      string
	ExpiresAt time.Time
	Verified  bool
	CreatedAt time.Time
}

// Expired is evaluated lazily at validation time.
func (o OTP) Expired(now time.Time) bool {
	return o.ExpiresAt.Before(now)
}

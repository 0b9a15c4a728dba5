package domain

import "time"

// ActivationState is the {emailVerified, enabled} pair as a named state.
type ActivationState string

const (
	StateUnverifiedDisabled ActivationState = "UNVERIFIED_DISABLED"
	StateVerifiedEnabled    ActivationState = "VERIFIED_ENABLED"
)

type User struct {
	ID            string
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	EmailVerified bool
	Enabled       bool
	Roles         Roles
	CreatedAt     time.Time
}

// NewUnverifiedUser builds a freshly signed-up account.
func NewUnverifiedUser(id, email, passwordHash, first, last string, role Role, now time.Time) User {
	return User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    first,
		LastName:     last,
		Roles:        Roles{role},
		CreatedAt:    now,
	}
}

// State reports the activation state. An enabled-but-unverified record is
// treated as unverified so it can never pass the login gate.
func (u User) State() ActivationState {
	if u.EmailVerified && u.Enabled {
		return StateVerifiedEnabled
	}
	return StateUnverifiedDisabled
}

// CanLogin is the activation gate checked after credentials succeed.
func (u User) CanLogin() bool {
	return u.State() == StateVerifiedEnabled
}

// Activate moves UNVERIFIED_DISABLED -> VERIFIED_ENABLED, setting both flags
// together. Activating an already active user is rejected.
func (u User) Activate() (User, error) {
	if u.State() != StateUnverifiedDisabled {
		return u, ErrInvalidTransition(string(u.State()), string(StateVerifiedEnabled))
	}
	u.EmailVerified = true
	u.Enabled = true
	return u, nil
}

package dto

import "github.com/baechuer/otp-auth-service/internal/domain"

// UserView is the standard user payload for auth-service responses.
type UserView struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	EmailVerified bool     `json:"emailVerified"`
	Roles         []string `json:"roles"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		EmailVerified: u.EmailVerified,
		Roles:         u.Roles.Strings(),
	}
}

// AuthResponse is returned as-is (no ack envelope) by login and refresh.
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType"` // "Bearer"
	ExpiresIn    int64    `json:"expiresIn"` // seconds
	User         UserView `json:"user"`
}

type SignupData struct {
	Email string `json:"email"`
}

type ProfileData struct {
	Email string `json:"email"`
}

type DashboardData struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

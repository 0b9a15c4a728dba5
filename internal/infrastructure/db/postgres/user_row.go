package postgres

import (
	"strings"
	"time"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type userRow struct {
	ID            string
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	EmailVerified bool
	Enabled       bool
	CreatedAt     time.Time
	Roles         string // comma separated, from string_agg
}

func (ur userRow) toDomain() domain.User {
	var tags []string
	if ur.Roles != "" {
		tags = strings.Split(ur.Roles, ",")
	}
	return domain.User{
		ID:            ur.ID,
		Email:         ur.Email,
		PasswordHash:  ur.PasswordHash,
		FirstName:     ur.FirstName,
		LastName:      ur.LastName,
		EmailVerified: ur.EmailVerified,
		Enabled:       ur.Enabled,
		Roles:         domain.ParseRoles(tags),
		CreatedAt:     ur.CreatedAt,
	}
}

package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baechuer/otp-auth-service/internal/domain"
	"github.com/baechuer/otp-auth-service/internal/logger"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

type RoleEnsurer interface {
	Ensure(ctx context.Context, role domain.Role) error
}

// SeedRoles makes sure every known role exists. The default role is required
// for signup, so a failure here is returned.
func SeedRoles(ctx context.Context, roles RoleEnsurer) error {
	for _, r := range domain.KnownRoles() {
		if err := roles.Ensure(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates verified development accounts. Restart safe.
func SeedUsers(ctx context.Context, repo SeederRepo, hasher SeederHasher) {
	type seedUser struct {
		Email string
		First string
		Last  string
		Roles domain.Roles
		Pass  string
	}

	seeds := []seedUser{
		{Email: "admin@example.com", First: "Admin", Last: "User", Roles: domain.Roles{domain.RoleUser, domain.RoleAdmin}, Pass: "AdminPassword123!"},
		{Email: "user@example.com", First: "Regular", Last: "User", Roles: domain.Roles{domain.RoleUser}, Pass: "UserPassword123!"},
	}

	created := 0
	for _, s := range seeds {
		hash, err := hasher.Hash(s.Pass)
		if err != nil {
			logger.Logger.Warn().Err(err).Str("email", s.Email).Msg("seed hash failed")
			continue
		}

		u := domain.User{
			ID:            uuid.NewString(),
			Email:         s.Email,
			PasswordHash:  hash,
			FirstName:     s.First,
			LastName:      s.Last,
			EmailVerified: true,
			Enabled:       true,
			Roles:         s.Roles,
		}

		if _, err = repo.Create(ctx, u); err != nil {
			// ignore duplicates (restart safe)
			continue
		}
		created++
	}

	logger.Logger.Info().Int("created", created).Msg("dev users seeded")
}

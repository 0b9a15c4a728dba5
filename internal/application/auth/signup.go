package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Signup creates an unverified account and sends its first OTP.
// When only delivery fails, the created user is returned together with the
// delivery error; the account and code both exist.
func (s *Service) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return domain.User{}, domain.ErrInvalidField("email", "email and password are required")
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}

	ok, err := s.roles.Exists(ctx, domain.DefaultRole)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrDefaultRoleMissing(string(domain.DefaultRole))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, domain.ErrHashFailed(err)
	}

	u := domain.NewUnverifiedUser(
		uuid.NewString(),
		email,
		hash,
		strings.TrimSpace(in.FirstName),
		strings.TrimSpace(in.LastName),
		domain.DefaultRole,
		s.now(),
	)

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	s.audit.SignedUp(ctx, created.ID, created.Email)

	if _, err := s.otps.Issue(ctx, created.Email); err != nil {
		s.audit.OTPIssued(ctx, created.Email, false)
		return created, err
	}
	s.audit.OTPIssued(ctx, created.Email, true)

	return created, nil
}

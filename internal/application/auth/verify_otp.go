package auth

import (
	"context"
	"strings"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

// VerifyOTP consumes the code and activates the owning account.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (domain.User, error) {
	email = strings.TrimSpace(email)

	ok, err := s.otps.Validate(ctx, email, code)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrInvalidOTP()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}

	// a fresh code for an already active account is accepted as a no-op
	if u.CanLogin() {
		return u, nil
	}

	activated, err := u.Activate()
	if err != nil {
		return domain.User{}, err
	}
	if err := s.users.Activate(ctx, u.ID); err != nil {
		return domain.User{}, err
	}

	s.audit.EmailVerified(ctx, activated.ID, activated.Email)
	return activated, nil
}

// ResendOTP re-issues a code for a known email; the previous code stops working.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return err
	}

	if _, err := s.otps.Issue(ctx, email); err != nil {
		s.audit.OTPIssued(ctx, email, false)
		return err
	}
	s.audit.OTPIssued(ctx, email, true)
	return nil
}

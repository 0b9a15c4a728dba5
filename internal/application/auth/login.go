package auth

import (
	"context"
	"strings"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

// Login checks credentials first and activation second: a wrong password
// never reveals verification status, a correct one against an unverified
// account does.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			s.compareDummy(password)
			s.audit.LoginFailed(ctx, email, "invalid_credentials")
			return AuthResult{}, domain.ErrInvalidCredentials()
		}
		return AuthResult{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.audit.LoginFailed(ctx, email, "invalid_credentials")
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	if !u.CanLogin() {
		s.audit.LoginFailed(ctx, email, "email_not_verified")
		return AuthResult{}, domain.ErrEmailNotVerified()
	}

	access, err := s.signAccess(u)
	if err != nil {
		return AuthResult{}, err
	}

	rt, err := s.refresh.IssueOrRotate(ctx, u.ID)
	if err != nil {
		return AuthResult{}, err
	}

	s.audit.LoginSucceeded(ctx, u.ID, u.Email)
	return AuthResult{User: u, Tokens: s.tokens(access, rt)}, nil
}

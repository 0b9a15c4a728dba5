package auth

import (
	"context"
	"strings"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

// Refresh exchanges a live refresh token for a new access token and a
// rotated refresh token. The presented value stops working on success.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return AuthResult{}, domain.ErrRefreshTokenInvalid()
	}

	rt, err := s.refresh.Resolve(ctx, refreshToken)
	if err != nil {
		if domain.Is(err, "refresh_token_not_found") {
			return AuthResult{}, domain.ErrRefreshTokenInvalid()
		}
		return AuthResult{}, err
	}

	// expired rows are deleted inside Verify
	rt, err = s.refresh.Verify(ctx, rt)
	if err != nil {
		return AuthResult{}, err
	}

	u, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return AuthResult{}, domain.ErrRefreshTokenInvalid()
		}
		return AuthResult{}, err
	}

	access, err := s.signAccess(u)
	if err != nil {
		return AuthResult{}, err
	}

	next, err := s.refresh.Rotate(ctx, rt)
	if err != nil {
		if domain.Is(err, "refresh_token_not_found") {
			return AuthResult{}, domain.ErrRefreshTokenInvalid()
		}
		return AuthResult{}, err
	}

	s.audit.TokenRefreshed(ctx, u.ID)
	return AuthResult{User: u, Tokens: s.tokens(access, next)}, nil
}

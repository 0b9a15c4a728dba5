package auth

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type Service struct {
	users   UserRepo
	roles   RoleRepo
	hasher  PasswordHasher
	signer  TokenSigner
	otps    OTPs
	refresh RefreshTokens

	accessTTL time.Duration
	audit     Auditor
	now       func() time.Time

	// compared against on unknown emails so both login failures cost one hash
	dummyOnce sync.Once
	dummyHash string
}

type Config struct {
	AccessTTL time.Duration
}

func NewService(
	users UserRepo,
	roles RoleRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	otps OTPs,
	refresh RefreshTokens,
	cfg Config,
) *Service {
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &Service{
		users:     users,
		roles:     roles,
		hasher:    hasher,
		signer:    signer,
		otps:      otps,
		refresh:   refresh,
		accessTTL: accessTTL,
		audit:     noopAuditor{},
		now:       time.Now,
	}
}

func (s *Service) WithAudit(a Auditor) *Service {
	if a != nil {
		s.audit = a
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// AuthTokens is the common token output for handlers/DTO mapping.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds
	TokenType    string
}

// AuthResult is returned by login and refresh.
type AuthResult struct {
	User   domain.User
	Tokens AuthTokens
}

func (s *Service) signAccess(u domain.User) (string, error) {
	access, err := s.signer.SignAccessToken(u.ID, u.Email, u.Roles.Strings(), s.accessTTL)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return access, nil
}

func (s *Service) tokens(access string, rt domain.RefreshToken) AuthTokens {
	return AuthTokens{
		AccessToken:  access,
		RefreshToken: rt.Token,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}
}

type noopAuditor struct{}

func (noopAuditor) SignedUp(context.Context, string, string) {}
func (noopAuditor) LoginSucceeded(context.Context, string, string) {}
func (noopAuditor) LoginFailed(context.Context, string, string) {}
func (noopAuditor) OTPIssued(context.Context, string, bool) {}
func (noopAuditor) EmailVerified(context.Context, string, string) {}
func (noopAuditor) TokenRefreshed(context.Context, string) {}

// compareDummy spends one hasher comparison on a throwaway hash.
func (s *Service) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password-0!")
	})
	if s.dummyHash != "" {
		_ = s.hasher.Compare(s.dummyHash, password)
	}
}

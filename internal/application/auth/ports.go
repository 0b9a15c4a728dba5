package auth

import (
	"context"
	"time"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the auth service needs, not HOW it's stored.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Create returns domain.ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, u domain.User) (domain.User, error)
	// Activate persists email_verified and enabled together in one update.
	Activate(ctx context.Context, userID string) error
}

/*
RoleRepo
--------
Registry of known role tags, seeded at bootstrap.
*/
type RoleRepo interface {
	Exists(ctx context.Context, role domain.Role) (bool, error)
}

/*
PasswordHasher
--------------
The external credential verifier. Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies stateless access tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	UserID string
	Email  string
	Roles  []string
	Exp    time.Time
}

type TokenSigner interface {
	SignAccessToken(userID, email string, roles []string, ttl time.Duration) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
}

/*
OTPs
----
OTP generator/validator (application/otp).
*/
type OTPs interface {
	Issue(ctx context.Context, email string) (domain.OTP, error)
	Validate(ctx context.Context, email, code string) (bool, error)
}

/*
RefreshTokens
-------------
Refresh token manager (application/refresh).
*/
type RefreshTokens interface {
	IssueOrRotate(ctx context.Context, userID string) (domain.RefreshToken, error)
	Rotate(ctx context.Context, current domain.RefreshToken) (domain.RefreshToken, error)
	Resolve(ctx context.Context, token string) (domain.RefreshToken, error)
	Verify(ctx context.Context, rt domain.RefreshToken) (domain.RefreshToken, error)
}

/*
Auditor
-------
Structured audit trail of auth business events.
*/
type Auditor interface {
	SignedUp(ctx context.Context, userID, email string)
	LoginSucceeded(ctx context.Context, userID, email string)
	LoginFailed(ctx context.Context, email, reason string)
	OTPIssued(ctx context.Context, email string, delivered bool)
	EmailVerified(ctx context.Context, userID, email string)
	TokenRefreshed(ctx context.Context, userID string)
}

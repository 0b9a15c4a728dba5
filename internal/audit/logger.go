package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	appCtx "github.com/baechuer/otp-auth-service/internal/pkg/context"
)

// Logger provides structured audit logging for auth business events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// SignedUp logs a new, still unverified account
func (l *Logger) SignedUp(ctx context.Context, userID, email string) {
	l.log.Info().
		Str("action", "signup").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("User signed up")
}

// LoginSucceeded logs a successful login
func (l *Logger) LoginSucceeded(ctx context.Context, userID, email string) {
	l.log.Info().
		Str("action", "login_success").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("User logged in successfully")
}

// LoginFailed logs a failed login attempt
func (l *Logger) LoginFailed(ctx context.Context, email, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("email", maskEmail(email)).
		Str("reason", reason).
		Str("ip", appCtx.GetClientIP(ctx)).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Login attempt failed")
}

// OTPIssued logs an OTP issue; the code itself is never logged
func (l *Logger) OTPIssued(ctx context.Context, email string, delivered bool) {
	evt := l.log.Info()
	if !delivered {
		evt = l.log.Warn()
	}
	evt.
		Str("action", "otp_issued").
		Str("email", maskEmail(email)).
		Bool("delivered", delivered).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Verification code issued")
}

// EmailVerified logs account activation
func (l *Logger) EmailVerified(ctx context.Context, userID, email string) {
	l.log.Info().
		Str("action", "email_verified").
		Str("user_id", userID).
		Str("email", maskEmail(email)).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Email verified")
}

// TokenRefreshed logs a refresh token exchange
func (l *Logger) TokenRefreshed(ctx context.Context, userID string) {
	l.log.Info().
		Str("action", "token_refreshed").
		Str("user_id", userID).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Access token refreshed")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}

// MaskEmail is shared with request logging.
func MaskEmail(email string) string { return maskEmail(email) }

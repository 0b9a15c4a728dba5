package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/otp-auth-service/internal/application/otp"
)

// LogNotifier writes the code to the log instead of sending it. Dev only.
type LogNotifier struct {
	lg zerolog.Logger
}

func NewLogNotifier(lg zerolog.Logger) *LogNotifier {
	return &LogNotifier{lg: lg.With().Str("component", "log_notifier").Logger()}
}

func (n *LogNotifier) SendOTP(ctx context.Context, msg otp.Message) error {
	n.lg.Info().
		Str("to", msg.Email).
		Str("code", msg.Code).
		Dur("ttl", msg.TTL).
		Str("subject", otpSubject).
		Msg("FAKE send otp email")
	return nil
}

package email

import (
	"fmt"
	"time"

	"github.com/baechuer/otp-auth-service/internal/application/otp"
)

const otpSubject = "Email Verification - OTP"

func otpBody(msg otp.Message) string {
	return fmt.Sprintf(
		"Your OTP for email verification is: %s\n\n"+
			"This OTP will expire in %s.\n\n"+
			"If you didn't request this, please ignore this email.",
		msg.Code, lifetime(msg.TTL),
	)
}

func lifetime(ttl time.Duration) string {
	if ttl <= 0 {
		ttl = otp.DefaultTTL
	}
	if ttl%time.Minute == 0 {
		n := int(ttl / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	}
	return ttl.String()
}

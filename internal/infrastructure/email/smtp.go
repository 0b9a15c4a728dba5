package email

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/baechuer/otp-auth-service/internal/application/otp"
	"github.com/baechuer/otp-auth-service/internal/domain"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	// Insecure allows plaintext when the server does not offer STARTTLS.
	Insecure bool
}

// SMTPNotifier delivers OTP codes directly over SMTP.
type SMTPNotifier struct {
	lg  zerolog.Logger
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig, lg zerolog.Logger) *SMTPNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPNotifier{
		lg:  lg.With().Str("component", "smtp_notifier").Logger(),
		cfg: cfg,
	}
}

func (s *SMTPNotifier) SendOTP(ctx context.Context, msg otp.Message) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	c, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return domain.ErrEmailUnavailable(err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		s.lg.Error().Err(err).Str("host", s.cfg.Host).Msg("smtp send failed")
		return domain.ErrEmailUnavailable(err)
	}

	s.lg.Debug().Str("host", s.cfg.Host).Msg("smtp send ok")
	return nil
}

func (s *SMTPNotifier) buildMessage(msg otp.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, domain.ErrInvalidField("from", err.Error())
	}
	if err := m.To(msg.Email); err != nil {
		return nil, domain.ErrInvalidField("email", err.Error())
	}
	m.Subject(otpSubject)
	m.SetBodyString(mail.TypeTextPlain, otpBody(msg))
	return m, nil
}

func (s *SMTPNotifier) clientOptions() []mail.Option {
	tlsPolicy := mail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = mail.TLSOpportunistic
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy),
		mail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

/*
Store
-----
Persistence port for OTP records.
Replace must delete-then-insert as one atomic unit so no reader ever
observes an email with zero rows mid-reissue.
*/
type Store interface {
	Replace(ctx context.Context, o domain.OTP) error
	// FindUnconsumed returns domain.ErrOTPNotFound when no unconsumed row matches.
	FindUnconsumed(ctx context.Context, email, code string) (domain.OTP, error)
	// MarkVerified flips verified=false -> true. It reports false when the row
	// was already consumed by someone else.
	MarkVerified(ctx context.Context, id string) (bool, error)
}

/*
Notifier
--------
Delivers a code to its owner. Retries are the transport's concern.
*/
type Notifier interface {
	SendOTP(ctx context.Context, msg Message) error
}

type Message struct {
	Email string
	Code  string
	TTL   time.Duration
}

type Config struct {
	Length int
	TTL    time.Duration
}

const (
	DefaultLength = 6
	DefaultTTL    = 5 * time.Minute
)

type Service struct {
	store    Store
	notifier Notifier

	length int
	ttl    time.Duration

	now    func() time.Time
	random io.Reader
}

func NewService(store Store, notifier Notifier, cfg Config) *Service {
	length := cfg.Length
	if length <= 0 {
		length = DefaultLength
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		store:    store,
		notifier: notifier,
		length:   length,
		ttl:      ttl,
		now:      time.Now,
		random:   rand.Reader,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) WithRandom(r io.Reader) *Service {
	if r != nil {
		s.random = r
	}
	return s
}

func (s *Service) Length() int { return s.length }

// Issue replaces every OTP for email with a fresh one, then dispatches it.
// The record is committed before dispatch; a dispatch failure returns the
// persisted OTP together with a delivery error and is not rolled back.
func (s *Service) Issue(ctx context.Context, email string) (domain.OTP, error) {
	code, err := generateCode(s.random, s.length)
	if err != nil {
		return domain.OTP{}, domain.ErrRandomFailed(err)
	}

	now := s.now()
	o := domain.OTP{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.store.Replace(ctx, o); err != nil {
		return domain.OTP{}, err
	}

	if err := s.notifier.SendOTP(ctx, Message{Email: email, Code: code, TTL: s.ttl}); err != nil {
		return o, domain.ErrOTPDeliveryFailed(err)
	}
	return o, nil
}

// Resend invalidates the previous code by issuing a new one.
func (s *Service) Resend(ctx context.Context, email string) (domain.OTP, error) {
	return s.Issue(ctx, email)
}

// Validate consumes a matching unexpired OTP. Wrong code and expired code are
// both reported as false; only infrastructure failures return an error.
func (s *Service) Validate(ctx context.Context, email, code string) (bool, error) {
	o, err := s.store.FindUnconsumed(ctx, email, code)
	if err != nil {
		if domain.Is(err, "otp_not_found") {
			return false, nil
		}
		return false, err
	}

	if o.Expired(s.now()) {
		return false, nil
	}

	return s.store.MarkVerified(ctx, o.ID)
}

// generateCode draws each digit uniformly from 0-9. Bytes >= 250 are
// rejected so the modulo carries no bias.
func generateCode(r io.Reader, length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid otp length")
	}
	out := make([]byte, 0, length)
	for len(out) < length {
		buf := make([]byte, length-len(out))
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= 250 {
				continue
			}
			out = append(out, '0'+b%10)
		}
	}
	return string(out), nil
}

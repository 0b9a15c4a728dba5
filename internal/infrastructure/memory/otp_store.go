package memory

import (
	"context"
	"sync"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

// OTPStore keeps OTP rows grouped by email. A single mutex makes
// delete+insert one unit for readers.
type OTPStore struct {
	mu      sync.Mutex
	byEmail map[string][]domain.OTP
}

func NewOTPStore() *OTPStore {
	return &OTPStore{byEmail: make(map[string][]domain.OTP)}
}

func (s *OTPStore) Replace(ctx context.Context, o domain.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmail[o.Email] = []domain.OTP{o}
	return nil
}

func (s *OTPStore) FindUnconsumed(ctx context.Context, email, code string) (domain.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.byEmail[email] {
		if o.Code == code && !o.Verified {
			return o, nil
		}
	}
	return domain.OTP{}, domain.ErrOTPNotFound()
}

func (s *OTPStore) MarkVerified(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, rows := range s.byEmail {
		for i := range rows {
			if rows[i].ID != id {
				continue
			}
			if rows[i].Verified {
				return false, nil
			}
			rows[i].Verified = true
			s.byEmail[email] = rows
			return true, nil
		}
	}
	return false, nil
}

// Count reports stored rows for email, consumed or not.
func (s *OTPStore) Count(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byEmail[email])
}

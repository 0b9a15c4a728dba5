package otp

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type fakeStore struct {
	mu   sync.Mutex
	rows map[string]domain.OTP // id -> row

	replaceErr error
	findErr    error
	markErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]domain.OTP)}
}

func (s *fakeStore) Replace(ctx context.Context, o domain.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceErr != nil {
		return s.replaceErr
	}
	for id, r := range s.rows {
		if r.Email == o.Email {
			delete(s.rows, id)
		}
	}
	s.rows[o.ID] = o
	return nil
}

func (s *fakeStore) FindUnconsumed(ctx context.Context, email, code string) (domain.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return domain.OTP{}, s.findErr
	}
	for _, r := range s.rows {
		if r.Email == email && r.Code == code && !r.Verified {
			return r, nil
		}
	}
	return domain.OTP{}, domain.ErrOTPNotFound()
}

func (s *fakeStore) MarkVerified(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return false, s.markErr
	}
	r, ok := s.rows[id]
	if !ok || r.Verified {
		return false, nil
	}
	r.Verified = true
	s.rows[id] = r
	return true, nil
}

func (s *fakeStore) countFor(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.Email == email {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []Message
	err  error

	// observed store state at dispatch time
	store     *fakeStore
	rowsAtRun int
}

func (n *fakeNotifier) SendOTP(ctx context.Context, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.store != nil {
		n.rowsAtRun = n.store.countFor(msg.Email)
	}
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *fakeNotifier) last() Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return Message{}
	}
	return n.sent[len(n.sent)-1]
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newSvcForTest(t *testing.T) (*Service, *fakeStore, *fakeNotifier, *clock) {
	t.Helper()
	st := newFakeStore()
	n := &fakeNotifier{store: st}
	c := &clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(st, n, Config{Length: 6, TTL: 5 * time.Minute}).WithClock(c.Now)
	return svc, st, n, c
}

func fixedRandom(b ...byte) *bytes.Reader { return bytes.NewReader(b) }

var errBoom = errors.New("boom")

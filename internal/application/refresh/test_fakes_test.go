package refresh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type fakeStore struct {
	mu     sync.Mutex
	byUser map[string]domain.RefreshToken

	deleteErr error
	deletes   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byUser: make(map[string]domain.RefreshToken)}
}

func (s *fakeStore) Upsert(ctx context.Context, rt domain.RefreshToken) (domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.byUser[rt.UserID]; ok {
		rt.ID = cur.ID
	}
	s.byUser[rt.UserID] = rt
	return rt, nil
}

func (s *fakeStore) Swap(ctx context.Context, oldToken string, next domain.RefreshToken) (domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byUser[next.UserID]
	if !ok || cur.Token != oldToken {
		return domain.RefreshToken{}, domain.ErrRefreshTokenNotFound()
	}
	next.ID = cur.ID
	s.byUser[next.UserID] = next
	return next, nil
}

func (s *fakeStore) FindByToken(ctx context.Context, token string) (domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rt := range s.byUser {
		if rt.Token == token {
			return rt, nil
		}
	}
	return domain.RefreshToken{}, domain.ErrRefreshTokenNotFound()
}

func (s *fakeStore) Delete(ctx context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for uid, rt := range s.byUser {
		if rt.ID == id && rt.Token == token {
			delete(s.byUser, uid)
		}
	}
	return nil
}

func (s *fakeStore) rows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser)
}

func newManagerForTest(t *testing.T) (*Manager, *fakeStore, *time.Time) {
	t.Helper()
	st := newFakeStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(st, time.Hour).WithClock(func() time.Time { return now })
	return m, st, &now
}

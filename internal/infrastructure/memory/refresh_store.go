package memory

import (
	"context"
	"sync"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type RefreshTokenStore struct {
	mu      sync.Mutex
	byUser  map[string]domain.RefreshToken
	byToken map[string]string // token -> userID
}

func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{
		byUser:  make(map[string]domain.RefreshToken),
		byToken: make(map[string]string),
	}
}

func (s *RefreshTokenStore) Upsert(ctx context.Context, rt domain.RefreshToken) (domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.byToken[rt.Token]; ok && owner != rt.UserID {
		return domain.RefreshToken{}, domain.ErrInternal(nil)
	}
	if cur, ok := s.byUser[rt.UserID]; ok {
		rt.ID = cur.ID
		delete(s.byToken, cur.Token)
	}
	s.byUser[rt.UserID] = rt
	s.byToken[rt.Token] = rt.UserID
	return rt, nil
}

func (s *RefreshTokenStore) Swap(ctx context.Context, oldToken string, next domain.RefreshToken) (domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byUser[next.UserID]
	if !ok || cur.Token != oldToken {
		return domain.RefreshToken{}, domain.ErrRefreshTokenNotFound()
	}
	next.ID = cur.ID
	delete(s.byToken, cur.Token)
	s.byUser[next.UserID] = next
	s.byToken[next.Token] = next.UserID
	return next, nil
}

func (s *RefreshTokenStore) FindByToken(ctx context.Context, token string) (domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, ok := s.byToken[token]
	if !ok {
		return domain.RefreshToken{}, domain.ErrRefreshTokenNotFound()
	}
	return s.byUser[uid], nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for uid, rt := range s.byUser {
		if rt.ID == id && rt.Token == token {
			delete(s.byToken, rt.Token)
			delete(s.byUser, uid)
			return nil
		}
	}
	return nil
}

// CountForUser is 0 or 1 by construction.
func (s *RefreshTokenStore) CountForUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[userID]; ok {
		return 1
	}
	return 0
}

package refresh

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

/*
Store
-----
Persistence port for refresh tokens, keyed one row per user.
*/
type Store interface {
	// Upsert inserts the row for rt.UserID or overwrites its token and expiry
	// in place. The returned row keeps the original ID on overwrite.
	Upsert(ctx context.Context, rt domain.RefreshToken) (domain.RefreshToken, error)
	// Swap overwrites the user's row only while it still holds oldToken.
	// It returns domain.ErrRefreshTokenNotFound otherwise.
	Swap(ctx context.Context, oldToken string, next domain.RefreshToken) (domain.RefreshToken, error)
	// FindByToken returns domain.ErrRefreshTokenNotFound on a miss.
	FindByToken(ctx context.Context, token string) (domain.RefreshToken, error)
	// Delete removes the row only while it still holds token, so a value
	// rotated in by a concurrent login survives a stale cleanup.
	Delete(ctx context.Context, id, token string) error
}

// 32 bytes = 256 bits of entropy.
const tokenBytes = 32

type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// IssueOrRotate makes a fresh token the user's only token.
func (m *Manager) IssueOrRotate(ctx context.Context, userID string) (domain.RefreshToken, error) {
	next, err := m.next(userID)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	return m.store.Upsert(ctx, next)
}

// Rotate replaces current with a fresh token, failing if current was already
// rotated by a concurrent exchange.
func (m *Manager) Rotate(ctx context.Context, current domain.RefreshToken) (domain.RefreshToken, error) {
	next, err := m.next(current.UserID)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	next.ID = current.ID
	return m.store.Swap(ctx, current.Token, next)
}

// Resolve looks a token up by value.
func (m *Manager) Resolve(ctx context.Context, token string) (domain.RefreshToken, error) {
	return m.store.FindByToken(ctx, token)
}

// Verify passes an unexpired token through. An expired one is deleted and
// reported as expired; that deletion is the only cleanup path.
func (m *Manager) Verify(ctx context.Context, rt domain.RefreshToken) (domain.RefreshToken, error) {
	if !rt.Expired(m.now()) {
		return rt, nil
	}
	if err := m.store.Delete(ctx, rt.ID, rt.Token); err != nil {
		return domain.RefreshToken{}, err
	}
	return domain.RefreshToken{}, domain.ErrRefreshTokenExpired()
}

func (m *Manager) next(userID string) (domain.RefreshToken, error) {
	if userID == "" {
		return domain.RefreshToken{}, domain.ErrMissingField("user_id")
	}
	tok, err := newOpaqueToken(tokenBytes)
	if err != nil {
		return domain.RefreshToken{}, domain.ErrRandomFailed(err)
	}
	return domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     tok,
		ExpiresAt: m.now().Add(m.ttl),
	}, nil
}

// newOpaqueToken returns a URL-safe opaque token.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

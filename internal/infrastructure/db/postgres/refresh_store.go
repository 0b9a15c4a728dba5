package postgres

import (
	"context"
	"database/sql"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type RefreshTokenStore struct {
	db *sql.DB
}

func NewRefreshTokenStore(db *sql.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

// Upsert keeps at most one row per user; an existing row keeps its id.
func (s *RefreshTokenStore) Upsert(ctx context.Context, rt domain.RefreshToken) (domain.RefreshToken, error) {
	const q = `
INSERT INTO refresh_tokens (id, user_id, token, expires_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (user_id) DO UPDATE
SET token = EXCLUDED.token,
    expires_at = EXCLUDED.expires_at
RETURNING id, user_id, token, expires_at;
`
	var out domain.RefreshToken
	err := s.db.QueryRowContext(ctx, q, rt.ID, rt.UserID, rt.Token, rt.ExpiresAt).
		Scan(&out.ID, &out.UserID, &out.Token, &out.ExpiresAt)
	if err != nil {
		return domain.RefreshToken{}, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

// Swap replaces the token only if the row still holds oldToken, so two
// concurrent rotations of the same token cannot both succeed.
func (s *RefreshTokenStore) Swap(ctx context.Context, oldToken string, next domain.RefreshToken) (domain.RefreshToken, error) {
	const q = `
UPDATE refresh_tokens
SET token = $3,
    expires_at = $4
WHERE user_id = $1 AND token = $2
RETURNING id, user_id, token, expires_at;
`
	var out domain.RefreshToken
	err := s.db.QueryRowContext(ctx, q, next.UserID, oldToken, next.Token, next.ExpiresAt).
		Scan(&out.ID, &out.UserID, &out.Token, &out.ExpiresAt)
	if err != nil {
		if isNoRows(err) {
			return domain.RefreshToken{}, domain.ErrRefreshTokenNotFound()
		}
		return domain.RefreshToken{}, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (s *RefreshTokenStore) FindByToken(ctx context.Context, token string) (domain.RefreshToken, error) {
	const q = `
SELECT id, user_id, token, expires_at
FROM refresh_tokens
WHERE token = $1;
`
	var out domain.RefreshToken
	err := s.db.QueryRowContext(ctx, q, token).Scan(&out.ID, &out.UserID, &out.Token, &out.ExpiresAt)
	if err != nil {
		if isNoRows(err) {
			return domain.RefreshToken{}, domain.ErrRefreshTokenNotFound()
		}
		return domain.RefreshToken{}, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, id, token string) error {
	const q = `DELETE FROM refresh_tokens WHERE id = $1 AND token = $2;`

	if _, err := s.db.ExecContext(ctx, q, id, token); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

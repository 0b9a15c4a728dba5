package postgres

import (
	"context"
	"database/sql"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type OTPStore struct {
	db *sql.DB
}

func NewOTPStore(db *sql.DB) *OTPStore {
	return &OTPStore{db: db}
}

// Replace drops every earlier OTP for the email and stores o, atomically.
func (s *OTPStore) Replace(ctx context.Context, o domain.OTP) error {
	const del = `DELETE FROM otps WHERE email = $1;`
	const ins = `
INSERT INTO otps (id, email, code, expires_at, verified, created_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
	err := WithTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, del, o.Email); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, ins, o.ID, o.Email, o.Code, o.ExpiresAt, o.Verified, o.CreatedAt)
		return err
	})
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (s *OTPStore) FindUnconsumed(ctx context.Context, email, code string) (domain.OTP, error) {
	const q = `
SELECT id, email, code, expires_at, verified, created_at
FROM otps
WHERE email = $1 AND code = $2 AND verified = FALSE
ORDER BY created_at DESC
LIMIT 1;
`
	var o domain.OTP
	err := s.db.QueryRowContext(ctx, q, email, code).Scan(
		&o.ID, &o.Email, &o.Code, &o.ExpiresAt, &o.Verified, &o.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return domain.OTP{}, domain.ErrOTPNotFound()
		}
		return domain.OTP{}, domain.ErrDBUnavailable(err)
	}
	return o, nil
}

// MarkVerified consumes the OTP. Only one concurrent caller observes true.
func (s *OTPStore) MarkVerified(ctx context.Context, id string) (bool, error) {
	const q = `UPDATE otps SET verified = TRUE WHERE id = $1 AND verified = FALSE;`

	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return n == 1, nil
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

func (r *RoleRepo) Exists(ctx context.Context, role domain.Role) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1);`

	var ok bool
	if err := r.db.QueryRowContext(ctx, q, string(role)).Scan(&ok); err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return ok, nil
}

// Ensure is idempotent.
func (r *RoleRepo) Ensure(ctx context.Context, role domain.Role) error {
	const q = `INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING;`

	if _, err := r.db.ExecContext(ctx, q, string(role)); err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

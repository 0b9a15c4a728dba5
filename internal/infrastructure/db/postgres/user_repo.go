package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

const selectUser = `
SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name,
       u.email_verified, u.enabled, u.created_at,
       COALESCE(string_agg(r.name, ',' ORDER BY r.name), '')
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN roles r ON r.id = ur.role_id
`

func scanUserRow(row *sql.Row) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Email,
		&ur.PasswordHash,
		&ur.FirstName,
		&ur.LastName,
		&ur.EmailVerified,
		&ur.Enabled,
		&ur.CreatedAt,
		&ur.Roles,
	)
	return ur, err
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg string) (domain.User, error) {
	q := selectUser + where + "\nGROUP BY u.id;"
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	return r.getOne(ctx, "WHERE u.email = $1", email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	return r.getOne(ctx, "WHERE u.id = $1", id)
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1);`

	var ok bool
	if err := r.db.QueryRowContext(ctx, q, strings.TrimSpace(email)).Scan(&ok); err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return ok, nil
}

// Create inserts the user together with its role links in one transaction.
func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}

	const insUser = `
INSERT INTO users (id, email, password_hash, first_name, last_name, email_verified, enabled)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING created_at;
`
	const insRole = `
INSERT INTO user_roles (user_id, role_id)
SELECT $1, id FROM roles WHERE name = $2
ON CONFLICT DO NOTHING;
`

	err := WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		err := tx.QueryRowContext(ctx, insUser,
			u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.EmailVerified, u.Enabled,
		).Scan(&u.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrEmailAlreadyExists()
			}
			return domain.ErrDBUnavailable(err)
		}

		for _, role := range u.Roles {
			res, err := tx.ExecContext(ctx, insRole, u.ID, string(role))
			if err != nil {
				return domain.ErrDBUnavailable(err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return domain.ErrRoleNotFound(string(role))
			}
		}
		return nil
	})
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return domain.User{}, de
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return u, nil
}

// Activate sets both activation flags in a single statement.
func (r *UserRepo) Activate(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET email_verified = TRUE,
    enabled = TRUE
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

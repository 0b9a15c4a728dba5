//go:build integration

package infra

import (
	"context"
	"database/sql"
	"fmt"
)

// ResetPostgres empties every table except the seeded roles.
func ResetPostgres(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `TRUNCATE TABLE refresh_tokens, otps, user_roles, users CASCADE;`)
	if err != nil {
		return fmt.Errorf("reset postgres: %w", err)
	}
	return nil
}

package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/baechuer/otp-auth-service/internal/logger"
)

// DBPool sizes the database/sql pool. Zero fields fall back to defaults.
type DBPool struct {
	MaxOpen     int
	MaxIdle     int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

func (p DBPool) withDefaults() DBPool {
	if p.MaxOpen <= 0 {
		p.MaxOpen = 20
	}
	if p.MaxIdle <= 0 {
		p.MaxIdle = p.MaxOpen / 2
	}
	if p.MaxIdle > p.MaxOpen {
		p.MaxIdle = p.MaxOpen
	}
	if p.MaxIdleTime <= 0 {
		p.MaxIdleTime = 5 * time.Minute
	}
	if p.MaxLifetime <= 0 {
		p.MaxLifetime = time.Hour
	}
	return p
}

// NewDB opens the pgx-backed pool described by cfg and pings it once.
func NewDB(cfg *Config) (*sql.DB, error) {
	if cfg == nil || cfg.DBAddr == "" {
		return nil, fmt.Errorf("empty DB DSN")
	}

	db, err := sql.Open("pgx", cfg.DBAddr)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	pool := cfg.DBPool.withDefaults()
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxIdleTime(pool.MaxIdleTime)
	db.SetConnMaxLifetime(pool.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if cfg.DBDebug {
		logConnection(ctx, db, pool)
	}
	return db, nil
}

// logConnection reports which server we landed on. Never logs the DSN.
func logConnection(ctx context.Context, db *sql.DB, pool DBPool) {
	var who, dbname, ver string
	_ = db.QueryRowContext(ctx, "SELECT current_user, current_database(), current_setting('server_version')").
		Scan(&who, &dbname, &ver)

	var otps sql.NullString
	_ = db.QueryRowContext(ctx, "SELECT to_regclass('public.otps')::text").Scan(&otps)

	logger.Logger.Debug().
		Str("user", who).
		Str("db", dbname).
		Str("version", ver).
		Bool("schema_ready", otps.Valid).
		Int("max_open", pool.MaxOpen).
		Int("max_idle", pool.MaxIdle).
		Msg("db connected")
}

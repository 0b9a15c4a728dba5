//go:build integration

package infra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	amqp "github.com/rabbitmq/amqp091-go"
)

// poll retries probe with a growing delay (capped at 2s) until it succeeds or ctx ends.
func poll(ctx context.Context, what string, probe func(context.Context) error) error {
	delay := 100 * time.Millisecond
	for {
		err := probe(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait %s: %w (last=%v)", what, ctx.Err(), err)
		case <-time.After(delay):
		}
		if delay < 2*time.Second {
			delay *= 2
		}
	}
}

func WaitPostgres(ctx context.Context, dsn string) error {
	return poll(ctx, "postgres", func(ctx context.Context) error {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		var one int
		return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})
}

func WaitRabbit(ctx context.Context, amqpURL string) error {
	return poll(ctx, "rabbitmq", func(context.Context) error {
		conn, err := amqp.Dial(amqpURL)
		if err != nil {
			return err
		}
		return conn.Close()
	})
}

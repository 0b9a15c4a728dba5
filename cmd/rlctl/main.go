// rlctl lists and clears the Redis rate-limit counters used by the auth routes.
//
//	go run ./cmd/rlctl -addr localhost:6379 -scope auth.login
//	go run ./cmd/rlctl -scope auth.login -reset 10.0.0.7
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/baechuer/otp-auth-service/internal/infrastructure/redis"
)

func main() {
	var (
		addr    = flag.String("addr", "localhost:6379", "redis address")
		pass    = flag.String("password", "", "redis password")
		db      = flag.Int("db", 0, "redis db")
		scope   = flag.String("scope", "", "limiter scope, e.g. auth.login (empty = all)")
		reset   = flag.String("reset", "", "caller identity to reset within -scope")
		batch   = flag.Int64("count", 200, "SCAN COUNT hint")
		timeout = flag.Duration("timeout", 5*time.Second, "overall timeout")
	)
	flag.Parse()

	c := redis.New(*addr, *pass, *db)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "redis ping failed: %v\n", err)
		os.Exit(1)
	}

	l := redis.NewFixedWindowLimiter(c)

	if *reset != "" {
		if *scope == "" {
			fmt.Fprintln(os.Stderr, "-reset needs -scope")
			os.Exit(2)
		}
		ok, err := l.Reset(ctx, *scope, *reset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reset failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("reset %s: %v\n", l.Key(*scope, *reset), ok)
		return
	}

	counters, err := l.Counters(ctx, *scope, *batch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(1)
	}
	if len(counters) == 0 {
		fmt.Println("No counters matched.")
		return
	}
	for i, cn := range counters {
		fmt.Printf("%d) %s\n   count=%d ttl=%s\n", i+1, cn.Key, cn.Count, cn.TTL)
	}
}

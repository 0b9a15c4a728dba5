// tokengen writes signed access tokens for load testing the protected routes.
// Tokens are minted directly with JWT_SECRET; the users do not exist in the store,
// which is fine for /api/user/profile and /api/admin/dashboard since both only
// read the token identity.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/baechuer/otp-auth-service/internal/domain"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/security"
)

type accessSigner interface {
	SignAccessToken(userID, email string, roles []string, ttl time.Duration) (string, error)
}

func main() {
	_ = godotenv.Load()

	var (
		n      = flag.Int("n", 1000, "number of tokens")
		out    = flag.String("out", "tokens.csv", "output file (- for stdout)")
		ttl    = flag.Duration("ttl", time.Hour, "token lifetime")
		admin  = flag.Bool("admin", false, "include ROLE_ADMIN")
		issuer = flag.String("issuer", envOr("JWT_ISSUER", "otp-auth-service"), "token issuer")
	)
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "missing required env var: JWT_SECRET")
		os.Exit(2)
	}

	w := io.Writer(os.Stdout)
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	roles := []string{string(domain.RoleUser)}
	if *admin {
		roles = append(roles, string(domain.RoleAdmin))
	}

	signer := security.NewJWTSigner(secret, *issuer)
	if err := generate(w, signer, *n, roles, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		os.Exit(1)
	}
	if *out != "-" {
		fmt.Fprintf(os.Stderr, "wrote %d tokens to %s\n", *n, *out)
	}
}

// generate writes one "userID,email,token" line per token.
func generate(w io.Writer, s accessSigner, n int, roles []string, ttl time.Duration) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		uid := uuid.NewString()
		email := fmt.Sprintf("load-%d@example.test", i)
		tok, err := s.SignAccessToken(uid, email, roles, ttl)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(bw, "%s,%s,%s\n", uid, email, tok); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

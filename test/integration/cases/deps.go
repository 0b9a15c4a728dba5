//go:build integration

package cases

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baechuer/otp-auth-service/internal/application/auth"
	"github.com/baechuer/otp-auth-service/internal/application/otp"
	"github.com/baechuer/otp-auth-service/internal/application/refresh"
	pg "github.com/baechuer/otp-auth-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/security"
	itinfra "github.com/baechuer/otp-auth-service/test/integration/infra"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// inbox captures delivered codes instead of sending mail.
type inbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (i *inbox) SendOTP(ctx context.Context, msg otp.Message) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.codes[msg.Email] = msg.Code
	return nil
}

func (i *inbox) Code(email string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.codes[email]
}

type Deps struct {
	DB *sql.DB

	Users   *pg.UserRepo
	OTPs    *pg.OTPStore
	Refresh *pg.RefreshTokenStore
	Signer  *security.JWTSigner
	Inbox   *inbox

	Svc *auth.Service
}

func MustNewDeps(t *testing.T) *Deps {
	t.Helper()

	env := itinfra.LoadEnv()
	dsn := env.PostgresDSN
	if dsn == "" {
		dsn = itinfra.StartPostgres(t)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, itinfra.WaitPostgres(ctx, dsn))

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, pg.Migrate(ctx, db))
	require.NoError(t, itinfra.ResetPostgres(ctx, db))

	roles := pg.NewRoleRepo(db)
	require.NoError(t, pg.SeedRoles(ctx, roles))

	users := pg.NewUserRepo(db)
	otpStore := pg.NewOTPStore(db)
	rtStore := pg.NewRefreshTokenStore(db)
	signer := security.NewJWTSigner("integration-test-secret", "otp-auth-service-it")
	box := &inbox{codes: map[string]string{}}

	svc := auth.NewService(
		users,
		roles,
		security.NewBcryptHasher(4),
		signer,
		otp.NewService(otpStore, box, otp.Config{Length: 6, TTL: 5 * time.Minute}),
		refresh.NewManager(rtStore, 24*time.Hour),
		auth.Config{AccessTTL: 15 * time.Minute},
	)

	return &Deps{
		DB:      db,
		Users:   users,
		OTPs:    otpStore,
		Refresh: rtStore,
		Signer:  signer,
		Inbox:   box,
		Svc:     svc,
	}
}

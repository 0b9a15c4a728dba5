package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/baechuer/otp-auth-service/internal/application/auth"
	"github.com/baechuer/otp-auth-service/internal/application/otp"
	"github.com/baechuer/otp-auth-service/internal/application/refresh"
	"github.com/baechuer/otp-auth-service/internal/audit"
	"github.com/baechuer/otp-auth-service/internal/config"
	"github.com/baechuer/otp-auth-service/internal/domain"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/email"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/memory"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/redis"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/security"
	"github.com/baechuer/otp-auth-service/internal/logger"
	http_handlers "github.com/baechuer/otp-auth-service/internal/transport/http/handlers"
	"github.com/baechuer/otp-auth-service/internal/transport/http/middleware"
	"github.com/baechuer/otp-auth-service/internal/transport/http/response"
	"github.com/baechuer/otp-auth-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB   func(cfg *config.Config) (*sql.DB, error)
	Migrate func(ctx context.Context, db *sql.DB) error

	// Returning a client that fails Ping disables Redis.
	NewRedis func(addr, password string, db int) *redis.Client

	// The returned close func may be nil.
	NewNotifier func(ctx context.Context, cfg *config.Config) (otp.Notifier, func(), error)

	NewRouter func(router.Deps) (http.Handler, error)
}

// UserStore is what both the auth service and the dev seeder need.
type UserStore interface {
	auth.UserRepo
	postgres.SeederRepo
}

type RoleStore interface {
	auth.RoleRepo
	postgres.RoleEnsurer
}

type stores struct {
	db      *sql.DB // nil on in-memory stores
	users   UserStore
	roles   RoleStore
	otps    otp.Store
	refresh refresh.Store
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	ctx := context.Background()

	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 1) stores
	st, err := openStores(ctx, deps, cfg)
	if err != nil {
		return nil, nil, err
	}
	if st.db != nil {
		db := st.db
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })
	}

	// default role must exist before the first signup
	if err := postgres.SeedRoles(ctx, st.roles); err != nil {
		return fail(fmt.Errorf("seed roles: %w", err))
	}

	// 2) redis (best-effort)
	var redisCli *redis.Client
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Ping(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-process rate limits")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 3) OTP delivery
	notifier, closeNotifier, err := deps.NewNotifier(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	if closeNotifier != nil {
		cleanupFns = append(cleanupFns, closeNotifier)
	}

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)

	// seed (dev only)
	if cfg.IsDev() {
		postgres.SeedUsers(ctx, st.users, hasher)
	}

	// 5) services
	otpSvc := otp.NewService(st.otps, notifier, otp.Config{
		Length: cfg.OTPLength,
		TTL:    cfg.OTPTTL,
	})
	refreshMgr := refresh.NewManager(st.refresh, cfg.RefreshTokenTTL)

	authSvc := auth.NewService(
		st.users,
		st.roles,
		hasher,
		signer,
		otpSvc,
		refreshMgr,
		auth.Config{AccessTTL: cfg.AccessTokenTTL},
	).WithAudit(audit.New(logger.Logger))

	// 6) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc, otpSvc.Length())
	userH := http_handlers.NewUserHandler()
	healthH := http_handlers.NewHealthHandler(st.db)

	authMW := middleware.Auth(signer, response.WriteError)
	adminMW := middleware.RequireRole(domain.RoleAdmin, response.WriteError)

	// rate limit (fail-open to the in-process limiter)
	var limiter middleware.RateLimiter
	if redisCli != nil {
		limiter = redis.NewFixedWindowLimiter(redisCli)
	}

	rl := func(key string, limit int) func(http.Handler) http.Handler {
		return middleware.RateLimitFixedWindow(
			limiter,
			middleware.FixedWindowConfig{
				RouteKey: key,
				Limit:    limit,
				Window:   time.Minute,
			},
			response.WriteError,
		)
	}

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:      healthH,
		Auth:        authH,
		User:        userH,
		RequestIDMW: middleware.RequestID,
		AuthMW:      authMW,
		AdminMW:     adminMW,
		SignupRL:    rl("auth.signup", cfg.RateLimitSignup),
		LoginRL:     rl("auth.login", cfg.RateLimitLogin),
		RefreshRL:   rl("auth.refresh", cfg.RateLimitRefresh),
		CORSOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		return fail(err)
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

// openStores connects Postgres, or falls back to in-memory stores when no
// DB_ADDR is configured (dev only; config.Load enforces that).
func openStores(ctx context.Context, deps Deps, cfg *config.Config) (stores, error) {
	if cfg.DBAddr == "" {
		logger.Logger.Warn().Msg("DB_ADDR not set; using in-memory stores")
		return stores{
			users:   memory.NewUserRepo(),
			roles:   memory.NewRoleRepo(),
			otps:    memory.NewOTPStore(),
			refresh: memory.NewRefreshTokenStore(),
		}, nil
	}

	db, err := deps.NewDB(cfg)
	if err != nil {
		return stores{}, err
	}

	if cfg.DBMigrate && deps.Migrate != nil {
		if err := deps.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return stores{}, fmt.Errorf("migrate: %w", err)
		}
	}

	return stores{
		db:      db,
		users:   postgres.NewUserRepo(db),
		roles:   postgres.NewRoleRepo(db),
		otps:    postgres.NewOTPStore(db),
		refresh: postgres.NewRefreshTokenStore(db),
	}, nil
}

// newNotifier picks the OTP delivery backend named by cfg.Notifier.
func newNotifier(ctx context.Context, cfg *config.Config) (otp.Notifier, func(), error) {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		return email.NewSMTPNotifier(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Insecure: !cfg.SMTPTLS,
		}, logger.Logger), nil, nil

	case config.NotifierSES:
		n, err := email.NewSESNotifierFromEnv(ctx, cfg.AWSRegion, cfg.MailFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("ses notifier: %w", err)
		}
		return n, nil, nil

	case config.NotifierRabbit:
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExch)
		if err != nil {
			if cfg.IsDev() {
				logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; logging OTPs instead")
				return email.NewLogNotifier(logger.Logger), nil, nil
			}
			return nil, nil, err
		}
		return pub, func() { _ = pub.Close() }, nil

	default:
		return email.NewLogNotifier(logger.Logger), nil, nil
	}
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    postgres.Migrate,
		NewRedis: func(addr, password string, db int) *redis.Client {
			return redis.New(addr, password, db)
		},
		NewNotifier: newNotifier,
		NewRouter:   router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

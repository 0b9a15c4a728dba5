package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Notifier backends for OTP delivery.
const (
	NotifierLog    = "log"
	NotifierSMTP   = "smtp"
	NotifierSES    = "ses"
	NotifierRabbit = "rabbitmq"
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr           string
	CORSAllowedOrigins []string
	//Auth / Security
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int

	// OTP
	OTPLength int
	OTPTTL    time.Duration

	// Infrastructure
	DBAddr        string
	DBDebug       bool
	DBMigrate     bool
	DBPool        DBPool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RabbitURL     string
	RabbitExch    string

	// Delivery
	Notifier     string
	MailFrom     string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool
	AWSRegion    string

	// Per-minute limits keyed by client IP
	RateLimitLogin   int
	RateLimitSignup  int
	RateLimitRefresh int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func (c *Config) IsDev() bool { return c.Env == "dev" }

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Env:       getEnv("ENV", "dev"),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		JWTIssuer: getEnv("JWT_ISSUER", "otp-auth-service"),
	}
	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}

	// optional with defaults
	// TTLs are truncated to whole seconds since tokens and OTP rows carry second precision
	ttl, err := getSeconds("ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = ttl

	rtl, err := getSeconds("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTokenTTL = rtl

	otl, err := getSeconds("OTP_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.OTPTTL = otl

	if cfg.OTPLength, err = getInt("OTP_LENGTH", 6); err != nil {
		return nil, err
	}
	if cfg.OTPLength < 1 || cfg.OTPLength > 12 {
		return nil, fmt.Errorf("OTP_LENGTH must be between 1 and 12, got %d", cfg.OTPLength)
	}

	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}

	// Infrastructure dependencies.
	// Outside dev the service cannot operate without its database,
	// so fail fast instead of starting partially initialized.
	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" && !cfg.IsDev() {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}
	if cfg.DBAddr != "" {
		if err := validatePostgresDSN(cfg.DBAddr); err != nil {
			return nil, err
		}
	}
	if cfg.DBDebug, err = getBool("DB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.DBMigrate, err = getBool("DB_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.DBPool.MaxOpen, err = getInt("DB_MAX_OPEN_CONNS", 20); err != nil {
		return nil, err
	}
	if cfg.DBPool.MaxIdle, err = getInt("DB_MAX_IDLE_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.DBPool.MaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", time.Hour); err != nil {
		return nil, err
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	cfg.RabbitURL = os.Getenv("RABBIT_URL")
	cfg.RabbitExch = getEnv("RABBIT_EXCHANGE", "auth.events")

	// delivery
	cfg.MailFrom = getEnv("MAIL_FROM", "no-reply@localhost")
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	if cfg.SMTPTLS, err = getBool("SMTP_TLS", true); err != nil {
		return nil, err
	}
	cfg.AWSRegion = os.Getenv("AWS_REGION")

	defNotifier := NotifierSMTP
	if cfg.IsDev() {
		defNotifier = NotifierLog
	}
	cfg.Notifier = strings.ToLower(getEnv("NOTIFIER", defNotifier))
	switch cfg.Notifier {
	case NotifierLog:
		if !cfg.IsDev() {
			return nil, fmt.Errorf("NOTIFIER=log is only allowed when ENV=dev")
		}
	case NotifierSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("missing required env var: SMTP_HOST")
		}
	case NotifierSES:
		if cfg.AWSRegion == "" {
			return nil, fmt.Errorf("missing required env var: AWS_REGION")
		}
	case NotifierRabbit:
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("missing required env var: RABBIT_URL")
		}
	default:
		return nil, fmt.Errorf("unknown NOTIFIER %q", cfg.Notifier)
	}

	cfg.CORSAllowedOrigins = getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})

	if cfg.RateLimitLogin, err = getInt("RATE_LIMIT_LOGIN", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitSignup, err = getInt("RATE_LIMIT_SIGNUP", 3); err != nil {
		return nil, err
	}
	if cfg.RateLimitRefresh, err = getInt("RATE_LIMIT_REFRESH", 10); err != nil {
		return nil, err
	}

	//Timeout values are optional and have a default value if not
	rt, err := getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPReadTimeout = rt

	wt, err := getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout = wt

	it, err := getDuration("HTTP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout = it

	return cfg, nil
}

func validatePostgresDSN(dsn string) error {
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("invalid DB_ADDR: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("DB_ADDR must use postgres:// scheme, got %q", u.Scheme)
	}
	if strings.Trim(u.Path, "/") == "" {
		return fmt.Errorf("DB_ADDR must name a database")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

// getSeconds parses a positive duration and drops anything below one second.
func getSeconds(key string, def time.Duration) (time.Duration, error) {
	d, err := getDuration(key, def)
	if err != nil {
		return 0, err
	}
	d = d.Truncate(time.Second)
	if d < time.Second {
		return 0, fmt.Errorf("%s must be at least 1s", key)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/otp-auth-service/internal/application/otp"
	"github.com/baechuer/otp-auth-service/internal/application/refresh"
	"github.com/baechuer/otp-auth-service/internal/domain"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/memory"
)

/*
Fakes for ports
*/

type fakeHasher struct {
	hashFn func(pw string) (string, error)

	mu       sync.Mutex
	compares int
}

func (h *fakeHasher) compareCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.compares
}

func (h *fakeHasher) Hash(pw string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(pw)
	}
	return "hash:" + pw, nil
}

func (h *fakeHasher) Compare(hash, pw string) error {
	h.mu.Lock()
	h.compares++
	h.mu.Unlock()
	if hash != "hash:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

type fakeSigner struct {
	mu    sync.Mutex
	n     int
	err   error
	calls []TokenClaims
}

func (s *fakeSigner) SignAccessToken(userID, email string, roles []string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.n++
	s.calls = append(s.calls, TokenClaims{UserID: userID, Email: email, Roles: roles})
	return "access-" + userID + "-" + strings.Repeat("x", s.n), nil
}

func (s *fakeSigner) VerifyAccessToken(token string) (TokenClaims, error) {
	return TokenClaims{}, domain.ErrTokenInvalid()
}

type fakeNotifier struct {
	mu    sync.Mutex
	codes map[string]string // email -> last code
	err   error
}

func (n *fakeNotifier) SendOTP(ctx context.Context, msg otp.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.codes == nil {
		n.codes = map[string]string{}
	}
	n.codes[msg.Email] = msg.Code
	return n.err
}

func (n *fakeNotifier) code(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[email]
}

type failingUsers struct {
	*memory.UserRepo
	existsErr error
	createErr error
}

func (f *failingUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.UserRepo.ExistsByEmail(ctx, email)
}

func (f *failingUsers) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	return f.UserRepo.Create(ctx, u)
}

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *fakeAuditor) add(action string, kv ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[kv[i]] = kv[i+1]
	}
	a.entries = append(a.entries, auditEntry{action: action, fields: f})
}

func (a *fakeAuditor) SignedUp(ctx context.Context, userID, email string) {
	a.add("signed_up", "user_id", userID)
}
func (a *fakeAuditor) LoginSucceeded(ctx context.Context, userID, email string) {
	a.add("login_success", "user_id", userID)
}
func (a *fakeAuditor) LoginFailed(ctx context.Context, email, reason string) {
	a.add("login_failed", "reason", reason)
}
func (a *fakeAuditor) OTPIssued(ctx context.Context, email string, delivered bool) {
	d := "false"
	if delivered {
		d = "true"
	}
	a.add("otp_issued", "delivered", d)
}
func (a *fakeAuditor) EmailVerified(ctx context.Context, userID, email string) {
	a.add("email_verified", "user_id", userID)
}
func (a *fakeAuditor) TokenRefreshed(ctx context.Context, userID string) {
	a.add("token_refreshed", "user_id", userID)
}

func (a *fakeAuditor) has(action string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e.action == action {
			return true
		}
	}
	return false
}

/*
Fixture
*/

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc      *Service
	users    *failingUsers
	roles    *memory.RoleRepo
	hasher   *fakeHasher
	signer   *fakeSigner
	notifier *fakeNotifier
	otps     *memory.OTPStore
	tokens   *memory.RefreshTokenStore
	audit    *fakeAuditor
	clock    *clock
}

func newSvcForTest(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:    &failingUsers{UserRepo: memory.NewUserRepo()},
		roles:    memory.NewRoleRepo(),
		hasher:   &fakeHasher{},
		signer:   &fakeSigner{},
		notifier: &fakeNotifier{},
		otps:     memory.NewOTPStore(),
		tokens:   memory.NewRefreshTokenStore(),
		audit:    &fakeAuditor{},
		clock:    &clock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	_ = f.roles.Ensure(context.Background(), domain.RoleUser)

	otpSvc := otp.NewService(f.otps, f.notifier, otp.Config{Length: 6, TTL: 5 * time.Minute}).WithClock(f.clock.Now)
	refreshMgr := refresh.NewManager(f.tokens, 24*time.Hour).WithClock(f.clock.Now)

	f.svc = NewService(f.users, f.roles, f.hasher, f.signer, otpSvc, refreshMgr, Config{AccessTTL: 15 * time.Minute}).
		WithAudit(f.audit).
		WithClock(f.clock.Now)
	return f
}

// signupVerified creates an active account and returns its id.
func (f *fixture) signupVerified(t *testing.T, email, pw string) string {
	t.Helper()
	ctx := context.Background()
	u, err := f.svc.Signup(ctx, SignupInput{Email: email, Password: pw, FirstName: "A", LastName: "B"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := f.svc.VerifyOTP(ctx, email, f.notifier.code(email)); err != nil {
		t.Fatalf("verify: %v", err)
	}
	return u.ID
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}

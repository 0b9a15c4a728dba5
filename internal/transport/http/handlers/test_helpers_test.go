package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/otp-auth-service/internal/application/auth"
	"github.com/baechuer/otp-auth-service/internal/application/otp"
	"github.com/baechuer/otp-auth-service/internal/application/refresh"
	"github.com/baechuer/otp-auth-service/internal/domain"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/memory"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/security"
	"github.com/baechuer/otp-auth-service/internal/transport/http/middleware"
)

// captureNotifier records the last code sent to each email.
type captureNotifier struct {
	mu    sync.Mutex
	codes map[string]string
	fail  bool
}

func (n *captureNotifier) SendOTP(ctx context.Context, msg otp.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp down")
	}
	n.codes[msg.Email] = msg.Code
	return nil
}

func (n *captureNotifier) code(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[email]
}

type testEnv struct {
	handler  *AuthHandler
	users    *memory.UserRepo
	notifier *captureNotifier
	signer   *security.JWTSigner
	hasher   *security.BcryptHasher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserRepo()
	roles := memory.NewRoleRepo()
	for _, r := range domain.KnownRoles() {
		_ = roles.Ensure(context.Background(), r)
	}

	notifier := &captureNotifier{codes: map[string]string{}}
	otps := otp.NewService(memory.NewOTPStore(), notifier, otp.Config{Length: 6, TTL: 5 * time.Minute})
	tokens := refresh.NewManager(memory.NewRefreshTokenStore(), time.Hour)
	hasher := security.NewBcryptHasher(4)
	signer := security.NewJWTSigner("test-secret", "otp-auth-service")

	svc := auth.NewService(users, roles, hasher, signer, otps, tokens, auth.Config{AccessTTL: 15 * time.Minute})

	return &testEnv{
		handler:  NewAuthHandler(svc, 6),
		users:    users,
		notifier: notifier,
		signer:   signer,
		hasher:   hasher,
	}
}

// seedVerified stores an active account directly.
func (e *testEnv) seedVerified(t *testing.T, email, password string, roles ...domain.Role) domain.User {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleUser}
	}
	u, err := e.users.Create(context.Background(), domain.User{
		ID: "id-" + email, Email: email, PasswordHash: hash,
		FirstName: "F", LastName: "L",
		EmailVerified: true, Enabled: true,
		Roles: roles, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func mustReadJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("decode json failed: %v; body=%s", err, rr.Body.String())
	}
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		rd = mustJSONBody(t, body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

type errBody struct {
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func mustErrCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) errBody {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d body=%s", status, rr.Code, rr.Body.String())
	}
	var eb errBody
	mustReadJSON(t, rr, &eb)
	if eb.Success || eb.Code != code {
		t.Fatalf("expected code %q, got %+v", code, eb)
	}
	return eb
}

// withUserCtx injects the identity the Auth middleware would set.
func withUserCtx(req *http.Request, userID, email string, roles ...string) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), userID, email, roles))
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

func runRBAC(t *testing.T, ctx context.Context) (*writeErrRecorder, *nextRecorder) {
	t.Helper()
	we := &writeErrRecorder{}
	nx := &nextRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/x", nil).WithContext(ctx)
	RequireRole(domain.RoleAdmin, we.fn)(nx).ServeHTTP(httptest.NewRecorder(), req)
	return we, nx
}

func TestRequireRole_NoIdentity_ReturnsTokenMissing(t *testing.T) {
	we, nx := runRBAC(t, context.Background())

	if nx.calls != 0 || !domain.Is(we.last, "token_missing") {
		t.Fatalf("expected token_missing, got calls=%d err=%v", nx.calls, we.last)
	}
}

func TestRequireRole_MissingRole_ReturnsForbidden(t *testing.T) {
	ctx := WithUser(context.Background(), "u1", "a@x.com", []string{"ROLE_USER"})
	we, nx := runRBAC(t, ctx)

	if nx.calls != 0 {
		t.Fatalf("expected next not called")
	}
	if domain.KindOf(we.last) != domain.KindForbidden {
		t.Fatalf("expected forbidden kind, got %v", we.last)
	}
}

func TestRequireRole_HasRole_Passes(t *testing.T) {
	ctx := WithUser(context.Background(), "u1", "a@x.com", []string{"ROLE_USER", "ROLE_ADMIN"})
	we, nx := runRBAC(t, ctx)

	if we.calls != 0 || nx.calls != 1 {
		t.Fatalf("expected pass-through, got writeErr=%d next=%d", we.calls, nx.calls)
	}
}

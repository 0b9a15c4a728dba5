package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/baechuer/otp-auth-service/internal/domain"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/redis"
)

type failingLimiter struct{ calls int }

func (f *failingLimiter) Key(scope, identity string) string { return scope + ":" + identity }

func (f *failingLimiter) AllowFixedWindow(ctx context.Context, key string, limit int, window time.Duration) (redis.Decision, error) {
	f.calls++
	return redis.Decision{}, errors.New("redis down")
}

func hit(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = ip + ":5555"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit_Redis_BlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redis.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })

	we := &writeErrRecorder{}
	nx := &nextRecorder{}
	h := RateLimitFixedWindow(redis.NewFixedWindowLimiter(c), FixedWindowConfig{RouteKey: "login", Limit: 2, Window: time.Minute}, we.fn)(nx)

	for i := 0; i < 2; i++ {
		if rr := hit(h, "10.0.0.1"); rr.Code != http.StatusOK {
			t.Fatalf("hit %d: expected 200, got %d", i, rr.Code)
		}
	}

	rr := hit(h, "10.0.0.1")
	if !domain.Is(we.last, "rate_limited") {
		t.Fatalf("expected rate_limited, got %v", we.last)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	// another client is unaffected
	if rr := hit(h, "10.0.0.2"); rr.Code != http.StatusOK {
		t.Fatalf("expected other ip allowed, got %d", rr.Code)
	}
	if nx.calls != 3 {
		t.Fatalf("expected 3 passes, got %d", nx.calls)
	}
}

func TestRateLimit_NilLimiter_UsesLocalWindow(t *testing.T) {
	we := &writeErrRecorder{}
	nx := &nextRecorder{}
	h := RateLimitFixedWindow(nil, FixedWindowConfig{RouteKey: "signup", Limit: 1, Window: time.Minute}, we.fn)(nx)

	hit(h, "10.0.0.9")
	hit(h, "10.0.0.9")

	if nx.calls != 1 {
		t.Fatalf("expected 1 pass, got %d", nx.calls)
	}
	if !domain.Is(we.last, "rate_limited") {
		t.Fatalf("expected rate_limited, got %v", we.last)
	}
}

func TestRateLimit_RedisError_FallsBackToLocalWindow(t *testing.T) {
	lim := &failingLimiter{}
	we := &writeErrRecorder{}
	nx := &nextRecorder{}
	h := RateLimitFixedWindow(lim, FixedWindowConfig{RouteKey: "refresh", Limit: 1, Window: time.Minute}, we.fn)(nx)

	hit(h, "10.0.0.3")
	hit(h, "10.0.0.3")

	if lim.calls != 2 {
		t.Fatalf("expected redis attempted twice, got %d", lim.calls)
	}
	if nx.calls != 1 || !domain.Is(we.last, "rate_limited") {
		t.Fatalf("expected local window to block second hit, next=%d err=%v", nx.calls, we.last)
	}
}

func TestRateLimit_ZeroLimit_Disabled(t *testing.T) {
	we := &writeErrRecorder{}
	nx := &nextRecorder{}
	h := RateLimitFixedWindow(nil, FixedWindowConfig{RouteKey: "x", Limit: 0}, we.fn)(nx)

	for i := 0; i < 5; i++ {
		hit(h, "10.0.0.4")
	}
	if nx.calls != 5 || we.calls != 0 {
		t.Fatalf("expected no limiting, next=%d writeErr=%d", nx.calls, we.calls)
	}
}

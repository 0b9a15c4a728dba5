package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	appCtx "github.com/baechuer/otp-auth-service/internal/pkg/context"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.com": "al***@example.com",
		"a@example.com":     "a***@example.com",
		"abc":               "***",
		"noatsign":          "no***",
	}
	for in, want := range cases {
		if got := maskEmail(in); got != want {
			t.Fatalf("maskEmail(%q)=%q want %q", in, got, want)
		}
	}
}

func TestLogger_WritesAuditFieldsWithoutSecrets(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))
	ctx := appCtx.WithRequestID(context.Background(), "rid-9")

	l.OTPIssued(ctx, "alice@example.com", false)

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v body=%s", err, buf.String())
	}
	if m["audit"] != true || m["action"] != "otp_issued" || m["delivered"] != false {
		t.Fatalf("unexpected record %v", m)
	}
	if m["request_id"] != "rid-9" || m["level"] != "warn" {
		t.Fatalf("unexpected record %v", m)
	}
	if strings.Contains(buf.String(), "alice@") {
		t.Fatalf("email must be masked: %s", buf.String())
	}
}

func TestLogger_LoginFailedCarriesReason(t *testing.T) {
	var buf bytes.Buffer
	ctx := appCtx.WithClientIP(context.Background(), "198.51.100.4")
	New(zerolog.New(&buf)).LoginFailed(ctx, "bob@example.com", "email_not_verified")
	if !strings.Contains(buf.String(), `"reason":"email_not_verified"`) {
		t.Fatalf("missing reason: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"ip":"198.51.100.4"`) {
		t.Fatalf("missing ip: %s", buf.String())
	}
}

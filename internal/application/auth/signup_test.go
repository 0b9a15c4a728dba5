package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/baechuer/otp-auth-service/internal/domain"
	"github.com/baechuer/otp-auth-service/internal/infrastructure/memory"
)

func TestSignup_Success_CreatesUnverifiedUserAndSendsOTP(t *testing.T) {
	t.Parallel()
	f := newSvcForTest(t)

	u, err := f.svc.Signup(context.Background(), SignupInput{
		Email: " a@x.com ", Password: "P@ssw0rd", FirstName: "A", LastName: "B",
	})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if u.ID == "" || u.Email != "a@x.com" {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.EmailVerified || u.Enabled {
		t.Fatalf("new user must be unverified/disabled")
	}
	if !u.Roles.Has(domain.RoleUser) {
		t.Fatalf("expected default role, got %v", u.Roles)
	}
	if u.PasswordHash != "hash:P@ssw0rd" {
		t.Fatalf("expected hashed password")
	}
	if f.notifier.code("a@x.com") == "" {
		t.Fatalf("expected OTP sent")
	}
	if f.otps.Count("a@x.com") != 1 {
		t.Fatalf("expected one OTP row")
	}
	if !f.audit.has("signed_up") || !f.audit.has("otp_issued") {
		t.Fatalf("expected audit entries, got %+v", f.audit.entries)
	}
}

func TestSignup_DuplicateEmail_AlreadyExists(t *testing.T) {
	t.Parallel()
	f := newSvcForTest(t)
	ctx := context.Background()

	in := SignupInput{Email: "a@x.com", Password: "P@ssw0rd", FirstName: "A", LastName: "B"}
	if _, err := f.svc.Signup(ctx, in); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	_, err := f.svc.Signup(ctx, in)
	requireErrCode(t, err, "email_already_exists")
}

func TestSignup_CreateRace_AlreadyExistsFromRepo(t *testing.T) {
	t.Parallel()
	f := newSvcForTest(t)
	f.users.createErr = domain.ErrEmailAlreadyExists()

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "pw"})
	requireErrCode(t, err, "email_already_exists")
	if f.notifier.code("a@x.com") != "" {
		t.Fatalf("no OTP for a user that was not created")
	}
}

func TestSignup_DefaultRoleMissing_FailsClosed(t *testing.T) {
	t.Parallel()
	f := newSvcForTest(t)
	f.svc.roles = memory.NewRoleRepo() // empty registry

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "pw"})
	requireErrCode(t, err, "default_role_missing")
	if ok, _ := f.users.ExistsByEmail(context.Background(), "a@x.com"); ok {
		t.Fatalf("user must not be created without a default role")
	}
}

func TestSignup_HashFail_ReturnsHashFailed(t *testing.T) {
	t.Parallel()
	f := newSvcForTest(t)
	f.hasher.hashFn = func(string) (string, error) { return "", errors.New("boom") }

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "pw"})
	requireErrCode(t, err, "hash_failed")
}

func TestSignup_LookupFail_Propagates(t *testing.T) {
	t.Parallel()
	f := newSvcForTest(t)
	f.users.existsErr = domain.ErrDBUnavailable(errors.New("down"))

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "pw"})
	requireErrCode(t, err, "db_unavailable")
}

func TestSignup_DeliveryFailure_UserAndOTPKept(t *testing.T) {
	t.Parallel()
	f := newSvcForTest(t)
	f.notifier.err = errors.New("smtp down")

	u, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "pw"})
	requireErrCode(t, err, "otp_delivery_failed")
	if u.ID == "" {
		t.Fatalf("created user should be returned with the delivery error")
	}
	if ok, _ := f.users.ExistsByEmail(context.Background(), "a@x.com"); !ok {
		t.Fatalf("user must persist")
	}
	if f.otps.Count("a@x.com") != 1 {
		t.Fatalf("OTP must persist despite delivery failure")
	}
}

func TestSignup_EmptyInput_Invalid(t *testing.T) {
	t.Parallel()
	f := newSvcForTest(t)
	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "  "})
	requireErrCode(t, err, "invalid_field")
}

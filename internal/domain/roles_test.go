package domain

import "testing"

func TestIsValidRole(t *testing.T) {
	cases := []struct {
		role string
		ok   bool
	}{
		{"ROLE_USER", true},
		{"ROLE_ADMIN", true},
		{"user", false},
		{"", false},
		{"ROLE_ROOT", false},
	}

	for _, c := range cases {
		if IsValidRole(c.role) != c.ok {
			t.Fatalf("unexpected IsValidRole(%q)", c.role)
		}
	}
}

func TestKnownRoles_ContainsDefault(t *testing.T) {
	found := false
	for _, r := range KnownRoles() {
		if r == DefaultRole {
			found = true
		}
	}
	if !found {
		t.Fatalf("default role %q must be seeded", DefaultRole)
	}
}

func TestParseRoles_DropsUnknownAndDuplicates(t *testing.T) {
	rs := ParseRoles([]string{"ROLE_USER", "ROLE_X", "ROLE_USER", "ROLE_ADMIN"})
	if len(rs) != 2 {
		t.Fatalf("expected 2 roles, got %v", rs)
	}
	if !rs.Has(RoleUser) || !rs.Has(RoleAdmin) {
		t.Fatalf("unexpected roles %v", rs)
	}
	got := rs.Strings()
	if got[0] != "ROLE_USER" || got[1] != "ROLE_ADMIN" {
		t.Fatalf("expected stored order, got %v", got)
	}
}

package domain

type Role string

const (
	// Assigned to every account at signup.
	RoleUser Role = "ROLE_USER"
	// Grants access to the admin dashboard.
	RoleAdmin Role = "ROLE_ADMIN"
)

// DefaultRole is resolved from the role store on every signup.
const DefaultRole = RoleUser

// KnownRoles lists every tag the role store is seeded with.
func KnownRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

// Roles is a flat, user-owned set of role tags.
type Roles []Role

func (rs Roles) Has(r Role) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// Strings returns the tags in stored order.
func (rs Roles) Strings() []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, string(r))
	}
	return out
}

// ParseRoles drops unknown tags and duplicates.
func ParseRoles(in []string) Roles {
	out := make(Roles, 0, len(in))
	for _, s := range in {
		if !IsValidRole(s) || out.Has(Role(s)) {
			continue
		}
		out = append(out, Role(s))
	}
	return out
}

package domain

import "strings"

// Role is the closed set of authorization roles a User may hold.
type Role string

const (
	RoleUser                  Role = "USER"
	RoleAdmin                 Role = "ADMIN"
	RoleServiceManager        Role = "SERVICE_MANAGER"
	RoleManufacturingEngineer Role = "MANUFACTURING_ENGINEER"
	RoleSystemAdmin           Role = "SYSTEM_ADMIN"
)

var roles = map[Role]struct{}{
	RoleUser:                  {},
	RoleAdmin:                 {},
	RoleServiceManager:        {},
	RoleManufacturingEngineer: {},
	RoleSystemAdmin:           {},
}

// Roles lists every valid role, fallback first.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleServiceManager, RoleManufacturingEngineer, RoleSystemAdmin}
}

// NormalizeRole maps client-supplied role text onto the closed role set.
// Hyphens become underscores and the result is upper-cased; anything that
// still does not name a role, including the empty string, yields RoleUser.
// Unknown input is never promoted to an elevated role.
func NormalizeRole(raw string) Role {
	candidate := Role(strings.ToUpper(strings.ReplaceAll(raw, "-", "_")))
	if candidate.Valid() {
		return candidate
	}
	return RoleUser
}

// ParseRole is the strict counterpart of NormalizeRole: it accepts only the
// canonical spelling of a role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Valid reports whether r is a member of the role set.
func (r Role) Valid() bool {
	_, ok := roles[r]
	return ok
}

func (r Role) String() string { return string(r) }

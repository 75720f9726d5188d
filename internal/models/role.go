package models

import "strings"

// Role is the closed set of access levels a system user can hold.
type Role string

// Role constants define the supported access levels.
const (
	// RoleUser may only read its own account's dashboard and payment history.
	RoleUser Role = "user"
	// RoleAdmin may manage accounts, billing, finances, and blog content.
	RoleAdmin Role = "admin"
)

// NormalizeRole maps persisted role representations to the closed enum.
// Historical rows store roles as numeric ids ("1", "2") or freeform strings;
// anything unrecognized degrades to RoleUser.
func NormalizeRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "administrador", "2":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// IsAdmin reports whether the role grants administrative access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

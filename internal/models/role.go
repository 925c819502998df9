package models

import "github.com/lib/pq"

// Role is the closed set of roles the access policy understands.
type Role string

const (
	RoleNone      Role = ""
	RoleExecutive Role = "executive"
	RoleManager   Role = "manager"
	RoleAdmin     Role = "admin"
)

// Roles lists every assignable role.
var Roles = []Role{RoleExecutive, RoleManager, RoleAdmin}

// ParseRole maps a stored role string onto the closed variant. Matching is exact; anything else,
// including case or whitespace variants, becomes RoleNone.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleExecutive:
		return RoleExecutive
	case RoleManager:
		return RoleManager
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleNone
	}
}

// RoleAssignment is a row of the user_roles table, created out-of-band.
type RoleAssignment struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"userId"`
	Role        string         `db:"role" json:"role"`
	Permissions pq.StringArray `db:"permissions" json:"permissions,omitempty"`
}

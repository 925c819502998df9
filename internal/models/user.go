package models

import "time"

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"fullName"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// UserSession is a server-side sign-in session referenced by access tokens.
type UserSession struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"userId"`
	ExpiresAt time.Time  `db:"expires_at" json:"expiresAt"`
	RevokedAt *time.Time `db:"revoked_at" json:"revokedAt,omitempty"`
	IPAddress string     `db:"ip_address" json:"-"`
	UserAgent string     `db:"user_agent" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

// Active reports whether the session may still authenticate requests.
func (s *UserSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Actor is the resolved caller of a request: identity plus the single authoritative role.
type Actor struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Role      Role   `json:"role"`
	SessionID string `json:"sessionId"`
}

// DisplayName is the name stamped into submitter/approver fields.
func (a *Actor) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Email
}

// SessionView answers "who am I": the user with every role row stored for them.
type SessionView struct {
	User  User             `json:"user"`
	Roles []RoleAssignment `json:"roles"`
	Role  Role             `json:"role"`
	Views []View           `json:"views"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

package model

import "time"

// Role is the authorization role carried in the access token.
type Role string

const (
	RolePlayer Role = "PLAYER"
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
)

// Valid reports whether r is one of the three QuickCourt roles.
func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleOwner || r == RoleAdmin
}

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  FullName     – display name.
//  PasswordHash – bcrypt hashed password.
//  Role         – PLAYER, OWNER or ADMIN.
//  IsActive     – false once the account is deactivated.
//  IsSuspended  – set by an admin; suspended users cannot book.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	IsActive     bool
	IsSuspended  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanAct reports whether the user may perform authenticated actions.
func (u *User) CanAct() bool {
	return u != nil && u.IsActive && !u.IsSuspended
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

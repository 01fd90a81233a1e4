package model

import "time"

// Roles stored in users.role.  Administrators and drivers share one
// table and are told apart by this column.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents an application user record as stored in the
// `users` table.  The password is kept only as a bcrypt hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name.
//  Phone        – contact number.
//  Address      – postal address.
//  PinCode      – postal code.
//  Role         – ADMIN or USER.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Email        string    `json:"email"`      // users.email
	PasswordHash string    `json:"-"`          // users.password_hash
	FullName     string    `json:"full_name"`  // users.full_name
	Phone        string    `json:"phone"`      // users.phone
	Address      string    `json:"address"`    // users.address
	PinCode      string    `json:"pin_code"`   // users.pin_code
	Role         string    `json:"role"`       // users.role
	CreatedAt    time.Time `json:"created_at"` // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

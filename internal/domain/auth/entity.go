package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials indicates a login failure. It deliberately covers
	// unknown emails, wrong passwords, and deactivated accounts so callers
	// cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailExists signals a duplicate email registration.
	ErrEmailExists = errors.New("email already registered")
	// ErrTokenInvalid means a supplied token cannot be validated.
	ErrTokenInvalid = errors.New("token invalid or expired")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole indicates the provided role is not supported.
	ErrInvalidRole = errors.New("invalid role")
	// ErrSelfDeactivation indicates an admin tried to deactivate their own account.
	ErrSelfDeactivation = errors.New("cannot deactivate your own account")
)

// Role identifies the privileges assigned to a user. Authorization is
// set-membership over roles; there is no ordering between them.
type Role string

const (
	// RoleBuyer represents a standard shopper.
	RoleBuyer Role = "buyer"
	// RoleSeller represents a user who can list and manage products.
	RoleSeller Role = "seller"
	// RoleAdmin represents an administrative user.
	RoleAdmin Role = "admin"
)

// ParseRole validates a raw role string against the closed enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return Role(raw), nil
	default:
		return "", ErrInvalidRole
	}
}

// User models the account entity persisted in storage.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Email    string
	Password string
}

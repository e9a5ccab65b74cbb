package auth

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, page Page) ([]*User, error)
	SetActive(ctx context.Context, id int64, active bool, updatedAt time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error
}

// Page bounds list queries.
type Page struct {
	Offset int
	Limit  int
}

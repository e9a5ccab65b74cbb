package auth

import (
	"context"

	domain "storefront/backend/internal/domain/auth"
)

// TokenManager abstracts token issuance and reset-token verification.
// Access-token verification is consumed at the HTTP boundary, not here.
type TokenManager interface {
	IssueAccess(email string, userID int64, role domain.Role) (string, error)
	IssueReset(email string) (string, error)
	VerifyReset(token string) (string, error)
}

// PasswordHasher abstracts one-way credential hashing.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, credential string) bool
}

// ResetSender delivers password-reset tokens out-of-band (email dispatch
// in production).
type ResetSender interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

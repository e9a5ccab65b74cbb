// Package password hashes and verifies stored credentials with bcrypt.
package password

import "golang.org/x/crypto/bcrypt"

// BcryptHasher produces salted one-way hashes of plaintext passwords.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a hasher with the given cost. Costs outside
// the bcrypt range fall back to the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt encoding of plaintext. A fresh random salt is
// embedded on every call, so equal inputs hash to different outputs.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored credential. Malformed
// or legacy credentials simply fail verification; no error escapes.
func (h *BcryptHasher) Verify(plaintext, credential string) bool {
	return bcrypt.CompareHashAndPassword([]byte(credential), []byte(plaintext)) == nil
}

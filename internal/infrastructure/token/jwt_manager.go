package token

import (
	"errors"
	"time"

	domain "storefront/backend/internal/domain/auth"
	usecase "storefront/backend/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v5"
)

const resetTokenType = "reset"

// JWTManager issues and validates HS256 tokens across two independent
// signing domains: access tokens and password-reset tokens. Each domain
// has its own secret so a reset token can never be replayed as an access
// token even if a caller forgets to check the type tag.
type JWTManager struct {
	accessSecret []byte
	resetSecret  []byte
	accessTTL    time.Duration
	resetTTL     time.Duration
	issuer       string
}

// NewJWTManager constructs a manager from injected secrets and lifetimes.
// Secrets are configuration, not ambient state; tests construct managers
// with their own.
func NewJWTManager(accessSecret, resetSecret string, accessTTL, resetTTL time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		accessSecret: []byte(accessSecret),
		resetSecret:  []byte(resetSecret),
		accessTTL:    accessTTL,
		resetTTL:     resetTTL,
		issuer:       issuer,
	}
}

// Ensure JWTManager implements the TokenManager interface.
var _ usecase.TokenManager = (*JWTManager)(nil)

// AccessClaims carries the verified identity of an authenticated request.
type AccessClaims struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Email returns the subject the token was issued for.
func (c *AccessClaims) Email() string {
	return c.Subject
}

type resetClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// IssueAccess creates a signed access token for the given identity.
func (m *JWTManager) IssueAccess(email string, userID int64, role domain.Role) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
}

// VerifyAccess parses and validates an access token. Every failure mode
// (bad signature, expired, malformed, missing identity fields) collapses
// into the single ErrTokenInvalid sentinel so callers cannot distinguish
// them across the trust boundary.
func (m *JWTManager) VerifyAccess(tokenString string) (*AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.accessSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if claims.Subject == "" || claims.UserID == 0 || claims.Role == "" {
		return nil, domain.ErrTokenInvalid
	}
	if _, err := domain.ParseRole(string(claims.Role)); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// IssueReset creates a signed, single-purpose password-reset token that
// proves control of the given email for the reset TTL (15 minutes by
// default).
func (m *JWTManager) IssueReset(email string) (string, error) {
	now := time.Now().UTC()
	claims := resetClaims{
		TokenType: resetTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.resetTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.resetSecret)
}

// VerifyReset validates a reset token and returns the email it was issued
// for. Tokens missing the reset type tag are rejected even when validly
// signed and unexpired.
func (m *JWTManager) VerifyReset(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &resetClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.resetSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", domain.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*resetClaims)
	if !ok || !parsed.Valid {
		return "", domain.ErrTokenInvalid
	}
	if claims.TokenType != resetTokenType || claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.Subject, nil
}

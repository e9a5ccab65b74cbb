package auth

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	domain "storefront/backend/internal/domain/auth"
)

// Service coordinates authentication workflows between domain and infrastructure.
type Service struct {
	users   domain.UserRepository
	tokens  TokenManager
	hasher  PasswordHasher
	resets  ResetSender
	nowFunc func() time.Time
}

// NewService constructs an auth service.
func NewService(users domain.UserRepository, tokens TokenManager, hasher PasswordHasher, resets ResetSender) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		resets:  resets,
		nowFunc: time.Now,
	}
}

// RegisterInput carries the payload for account creation.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register creates a new active user and returns the persisted entity.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	role := domain.RoleBuyer
	if trimmed := strings.TrimSpace(strings.ToLower(input.Role)); trimmed != "" {
		parsed, err := domain.ParseRole(trimmed)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Login validates credentials and returns an access token plus the user.
// Unknown email, wrong password, and deactivated account all surface the
// same ErrInvalidCredentials so login cannot be used to probe accounts.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (string, *domain.User, error) {
	email := normalizeEmail(creds.Email)
	password := creds.Password
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueAccess(user.Email, user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, sanitizeUser(user), nil
}

// ForgotPassword issues a reset token for the account and hands it to the
// reset sender. Unknown emails succeed silently with an empty token; the
// caller must not reveal whether the account exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}

	token, err := s.tokens.IssueReset(user.Email)
	if err != nil {
		return "", err
	}
	if err := s.resets.SendPasswordReset(ctx, user.Email, token); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword verifies a reset token and replaces the account credential.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.VerifyReset(token)
	if err != nil {
		return domain.ErrTokenInvalid
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hashed, s.nowFunc().UTC())
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// validatePassword enforces the registration password policy: at least
// eight characters with an upper-case letter, a lower-case letter, and a
// digit.
func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one digit")
	}
	return nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}

package user

import (
	"context"
	"time"

	domain "storefront/backend/internal/domain/auth"
)

const (
	defaultLimit = 100
	maxLimit     = 100
)

// Service provides user management use cases for administrative workflows.
type Service struct {
	repo    domain.UserRepository
	nowFunc func() time.Time
}

// NewService constructs a user service around the provided repository.
func NewService(repo domain.UserRepository) *Service {
	return &Service{
		repo:    repo,
		nowFunc: time.Now,
	}
}

// List returns users within the requested page.
func (s *Service) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	users, err := s.repo.List(ctx, domain.Page{Offset: offset, Limit: limit})
	if err != nil {
		return nil, err
	}
	return sanitizeUsers(users), nil
}

// Get retrieves a single user by its identifier.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Deactivate disables the target account. Admins cannot deactivate
// themselves, which would lock the last admin out.
func (s *Service) Deactivate(ctx context.Context, actorID, id int64) (*domain.User, error) {
	if actorID == id {
		return nil, domain.ErrSelfDeactivation
	}
	return s.setActive(ctx, id, false)
}

// Activate re-enables the target account.
func (s *Service) Activate(ctx context.Context, id int64) (*domain.User, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	if err := s.repo.SetActive(ctx, id, active, now); err != nil {
		return nil, err
	}
	user.IsActive = active
	user.UpdatedAt = now
	return sanitizeUser(user), nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}

func sanitizeUsers(items []*domain.User) []*domain.User {
	out := make([]*domain.User, 0, len(items))
	for _, item := range items {
		out = append(out, sanitizeUser(item))
	}
	return out
}

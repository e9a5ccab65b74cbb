package product

import (
	"context"
	"errors"
	"strings"
	"time"

	authdomain "storefront/backend/internal/domain/auth"
	domain "storefront/backend/internal/domain/product"
)

const (
	defaultLimit = 100
	maxLimit     = 100
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	UserID int64
	Role   authdomain.Role
}

// IsAdmin reports whether the actor holds the admin role. There is no role
// hierarchy; this is plain membership.
func (a Actor) IsAdmin() bool {
	return a.Role == authdomain.RoleAdmin
}

// Service encapsulates product use cases.
type Service struct {
	repo    domain.Repository
	nowFunc func() time.Time
}

// NewService constructs a product service.
func NewService(repo domain.Repository) *Service {
	return &Service{
		repo:    repo,
		nowFunc: time.Now,
	}
}

// CreateInput contains the payload required for product creation.
type CreateInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// UpdateInput encapsulates partial product updates.
type UpdateInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

// ListInput bounds and filters public product listings.
type ListInput struct {
	Search string
	Offset int
	Limit  int
}

// Create stores a new listing owned by the actor after validation.
func (s *Service) Create(ctx context.Context, actor Actor, input CreateInput) (*domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, errors.New("name is required")
	}
	if input.Price <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	if input.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}

	now := s.nowFunc().UTC()
	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		SellerID:    actor.UserID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// List retrieves active products with search and pagination.
func (s *Service) List(ctx context.Context, input ListInput) ([]*domain.Product, error) {
	return s.repo.List(ctx, domain.Filter{
		Search: strings.TrimSpace(input.Search),
		Offset: clampOffset(input.Offset),
		Limit:  clampLimit(input.Limit),
	})
}

// ListAll retrieves products for administrators, optionally including
// soft-deleted listings.
func (s *Service) ListAll(ctx context.Context, input ListInput, includeInactive bool) ([]*domain.Product, error) {
	return s.repo.List(ctx, domain.Filter{
		Search:          strings.TrimSpace(input.Search),
		IncludeInactive: includeInactive,
		Offset:          clampOffset(input.Offset),
		Limit:           clampLimit(input.Limit),
	})
}

// Get fetches an active product by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// Update applies partial updates to a product. Only the owning seller or
// an admin may modify a listing.
func (s *Service) Update(ctx context.Context, actor Actor, id int64, input UpdateInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != actor.UserID && !actor.IsAdmin() {
		return nil, domain.ErrNotOwner
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, errors.New("name cannot be empty")
		}
		*input.Name = trimmed
	}
	if input.Price != nil && *input.Price <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}

	product.Update(input.Name, input.Description, input.Price, input.Stock)

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Deactivate soft-deletes a listing on behalf of its owner or an admin.
func (s *Service) Deactivate(ctx context.Context, actor Actor, id int64) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product.SellerID != actor.UserID && !actor.IsAdmin() {
		return domain.ErrNotOwner
	}

	product.IsActive = false
	product.UpdatedAt = s.nowFunc().UTC()
	return s.repo.Update(ctx, product)
}

// HardDelete permanently removes a listing. Route-level guards restrict
// this to admins.
func (s *Service) HardDelete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

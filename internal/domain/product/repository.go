package product

import "context"

// Repository defines persistence behaviours for products.
type Repository interface {
	Create(ctx context.Context, product *Product) error
	// GetByID returns the product regardless of its active flag; callers
	// decide whether inactive listings are visible.
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, filter Filter) ([]*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id int64) error
}

// Filter narrows product listings.
type Filter struct {
	Search          string
	IncludeInactive bool
	Offset          int
	Limit           int
}

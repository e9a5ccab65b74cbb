package product

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a product could not be located.
	ErrNotFound = errors.New("product not found")
	// ErrNotOwner signals an actor who neither owns the product nor holds
	// the admin role.
	ErrNotOwner = errors.New("not authorized to manage this product")
	// ErrInvalidPrice rejects non-positive prices.
	ErrInvalidPrice = errors.New("price must be greater than 0")
	// ErrInvalidStock rejects negative stock.
	ErrInvalidStock = errors.New("stock cannot be negative")
)

// Product captures the state of an individual listing.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	SellerID    int64     `json:"seller_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Update applies partial field updates to the product.
func (p *Product) Update(name, description *string, price *float64, stock *int) {
	if name != nil {
		p.Name = *name
	}
	if description != nil {
		p.Description = *description
	}
	if price != nil {
		p.Price = *price
	}
	if stock != nil {
		p.Stock = *stock
	}
	p.UpdatedAt = time.Now().UTC()
}

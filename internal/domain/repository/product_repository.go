// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"kicks/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProductNotFound is a domain-specific error returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the standard operations for catalog persistence.
type ProductRepository interface {
	// FindByID retrieves a single product by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// FindByIDs retrieves the products for the given IDs. Missing IDs are simply
	// absent from the result; the caller decides whether that is an error.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error)

	// List retrieves products newest-first, optionally filtered by category
	// (empty string means all categories).
	List(ctx context.Context, category string) ([]*entity.Product, error)

	// Create persists a new product. Used by seeding and admin tooling.
	Create(ctx context.Context, product *entity.Product) error
}

package usecase

import (
	"context"

	"kicks/internal/domain/entity"

	"github.com/google/uuid"
)

// ProductUsecase defines the interface for catalog reads.
type ProductUsecase interface {
	// ListProducts returns the catalog newest-first, optionally filtered by category.
	ListProducts(ctx context.Context, category string) ([]*entity.Product, error)

	// GetProduct returns a single product by id.
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
}

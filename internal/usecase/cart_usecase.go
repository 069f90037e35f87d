package usecase

import (
	"context"

	"kicks/internal/domain/entity"

	"github.com/google/uuid"
)

// AddCartItemInput defines the data required to put a product into a cart.
type AddCartItemInput struct {
	ProductID uuid.UUID
	Size      string // Empty for products without a size dimension.
	Quantity  int    // Must be >= 1.
}

// CartUsecase defines the interface for cart operations.
// Every operation acts on behalf of a resolved principal; rows are exclusively
// owned by their principal and cross-principal mutation is never permitted.
type CartUsecase interface {
	// AddItem upserts-by-increment: an existing live row for the principal's
	// (product, size) gains input.Quantity, otherwise a new row is created.
	AddItem(ctx context.Context, p entity.Principal, input AddCartItemInput) (*entity.CartItem, error)

	// SetQuantity sets an absolute quantity. Zero or less deletes the row and
	// returns nil. Idempotent on repeated identical calls.
	SetQuantity(ctx context.Context, p entity.Principal, itemID uuid.UUID, quantity int) (*entity.CartItem, error)

	// RemoveItem deletes the row unconditionally; already-absent rows are a no-op.
	RemoveItem(ctx context.Context, p entity.Principal, itemID uuid.UUID) error

	// ListCart returns the principal's live rows joined with product data,
	// newest-first. Rows whose product disappeared are filtered out, and an
	// opportunistic sweep of expired legacy rows runs first, best-effort.
	ListCart(ctx context.Context, p entity.Principal) ([]*entity.CartItem, error)

	// MergeCarts transfers every row under the prior anonymous id to the
	// authenticated principal, consolidating duplicate (product, size) rows by
	// summing quantities. Returns the number of rows the target gained or
	// absorbed. Runs in a single transaction.
	MergeCarts(ctx context.Context, anonymousID string, target entity.Principal) (int, error)

	// SweepExpired deletes rows whose legacy expiry has passed. Best-effort
	// cleanup; the read path filters expired rows regardless.
	SweepExpired(ctx context.Context) (int64, error)
}

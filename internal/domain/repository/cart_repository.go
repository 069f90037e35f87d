package repository

import (
	"context"
	"errors"
	"time"

	"kicks/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCartItemNotFound is returned when a cart row is absent.
var ErrCartItemNotFound = errors.New("cart item not found")

// ErrDuplicateCartItem is returned when an insert hits the live
// (user, product, size) uniqueness constraint. Callers treat it as a lost
// race and retry as an increment.
var ErrDuplicateCartItem = errors.New("cart item already exists for this product and size")

// CartRepository defines the standard operations for cart persistence.
//
// The (user_id, product_id, size) triple is unique among live rows, enforced
// by the store. Increments are conditional updates anchored on the row id so
// concurrent adds for the same triple never lose updates.
type CartRepository interface {
	// FindByID retrieves a single cart row by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CartItem, error)

	// FindByTriple retrieves the live row for (userID, productID, size), if any.
	FindByTriple(ctx context.Context, userID string, productID uuid.UUID, size string) (*entity.CartItem, error)

	// Create persists a new cart row. Returns ErrDuplicateCartItem when a live
	// row for the same triple already exists.
	Create(ctx context.Context, item *entity.CartItem) error

	// IncrementQuantity atomically adds delta to the row's quantity.
	IncrementQuantity(ctx context.Context, id uuid.UUID, delta int) error

	// UpdateQuantity sets the row's quantity to an absolute value (>= 1).
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error

	// UpdateOwner re-keys the row to a different principal id. Used by
	// merge-on-login for triples the new owner does not already hold.
	UpdateOwner(ctx context.Context, id uuid.UUID, userID string) error

	// Delete removes the row unconditionally. Absent rows are a no-op, not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByIDs removes the given rows. Used by checkout finalization.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error

	// ListByUser retrieves all live rows for the principal id joined with their
	// products, newest-first. When scope is non-nil only rows whose session id
	// is null (legacy data) or equal to the scope token are returned.
	ListByUser(ctx context.Context, userID string, scope *entity.SessionScope) ([]*entity.CartItem, error)

	// DeleteExpired removes every row whose expiry timestamp is in the past.
	// Returns the number of rows removed. Best-effort cleanup, not a
	// correctness mechanism.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

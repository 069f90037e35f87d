package entity

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one live (principal, product, size) pending-purchase row.
// At most one such row exists at a time; a second add for the same triple
// increments Quantity instead of inserting.
type CartItem struct {
	ID        uuid.UUID
	UserID    string    // Principal id owning the row (authenticated or anonymous).
	ProductID uuid.UUID
	Quantity  int    // Always >= 1 while the row is live.
	Size      string // Empty means the product has no size dimension.

	// Legacy session scoping. Populated only by old clients; new writes leave both nil.
	SessionID *string
	ExpiresAt *time.Time

	CreatedAt time.Time

	// Product is the joined catalog row, populated by listing reads.
	// Nil when the referenced product no longer exists.
	Product *Product
}

// Subtotal is the line amount at the product's current price.
// Order lines freeze their own copy of the price; this is for cart display only.
func (c *CartItem) Subtotal() int64 {
	if c.Product == nil {
		return 0
	}

	return c.Product.Price * int64(c.Quantity)
}

// VisibleTo reports whether the row belongs to the principal and, when the
// principal carries a session scope, whether the row's scope matches.
// Rows with a nil scope predate session scoping and stay visible (compatibility
// with legacy data); rows under a different token belong to another tab.
func (c *CartItem) VisibleTo(p Principal, now time.Time) bool {
	if c.UserID != p.ID {
		return false
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	if p.Session == nil || c.SessionID == nil {
		return true
	}

	return *c.SessionID == p.Session.Token
}

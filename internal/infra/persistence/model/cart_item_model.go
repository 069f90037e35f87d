package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItemModel mirrors the 'cart_items' table. The owner column holds either an
// authenticated user ID or a durable anonymous ID, so it is stored as text rather
// than a foreign key into users.
//
// A partial unique index on (user_id, product_id, size) keeps one row per triple;
// concurrent adds for the same triple surface as unique constraint violations and
// are folded into quantity increments by the repository caller.
type CartItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_cart_items_owner_product_size"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_owner_product_size"`
	Quantity  int       `gorm:"not null"`
	Size      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_cart_items_owner_product_size"`
	SessionID *string   `gorm:"type:varchar(128)"`
	ExpiresAt *time.Time `gorm:"index"`
	CreatedAt time.Time

	Product *ProductModel `gorm:"foreignKey:ProductID"`
}

// TableName explicitly sets the table name for GORM.
func (CartItemModel) TableName() string {
	return "cart_items"
}

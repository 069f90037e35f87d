package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderModel mirrors the 'orders' table. OrderNo is the merchant-side identifier
// exchanged with the payment gateway and is unique across all orders.
type OrderModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID     string    `gorm:"type:varchar(64);not null;index"`
	OrderNo    string    `gorm:"type:varchar(64);unique;not null"`
	Amount     int64     `gorm:"not null"`
	Status     string    `gorm:"type:varchar(20);not null"`
	PaymentKey *string   `gorm:"type:varchar(255)"`
	CreatedAt  time.Time

	Lines []*OrderLineModel `gorm:"foreignKey:OrderID"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel mirrors the 'order_items' table. CartItemID is a nullable
// back-reference to the cart row the line was built from; NULL marks a buy-now
// line that never lived in the cart.
type OrderLineModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OrderID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID  `gorm:"type:uuid;not null"`
	Quantity   int        `gorm:"not null"`
	Size       string     `gorm:"type:varchar(20);not null"`
	UnitPrice  int64      `gorm:"not null"`
	CartItemID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (OrderLineModel) TableName() string {
	return "order_items"
}

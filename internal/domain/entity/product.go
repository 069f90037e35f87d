package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product is one sneaker listing in the catalog.
type Product struct {
	ID          uuid.UUID
	Name        string
	Brand       string
	Price       int64 // Unit price in KRW. Whole-currency amounts only.
	ImageURL    string
	Category    string
	Description string
	CreatedAt   time.Time
}

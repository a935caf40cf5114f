package domain

import (
	"context"
	"time"
)

var ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}

// Product is the catalog's view of a stock item. The catalog owns every
// column except Quantity, which is mutated only through the InventoryLedger.
type Product struct {
	ID         int64
	Name       string
	PriceCents int64
	Quantity   int32
	CreatedAt  time.Time
}

// ProductStore provides read access to the catalog.
type ProductStore interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
}

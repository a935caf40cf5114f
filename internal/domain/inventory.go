package domain

import (
	"context"
	"errors"
	"fmt"
)

// StockError reports a reservation that exceeds availability. It carries
// the quantity actually available so callers can resubmit at a lower
// amount.
type StockError struct {
	ProductID int64
	Requested int32
	Available int32
}

// Error implements the error interface.
func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// IsStockError returns true if err is a StockError.
func IsStockError(err error) bool {
	var se *StockError
	return errors.As(err, &se)
}

// InventoryLedger owns all mutation of product stock. Reserve must be a
// single atomic conditional decrement: two concurrent reservations
// against the same product can never both succeed past availability.
type InventoryLedger interface {
	// Reserve decrements the product's quantity if at least quantity
	// units are available; otherwise returns *StockError with no side
	// effects. A missing product yields ErrProductNotFound.
	Reserve(ctx context.Context, productID int64, quantity int32) error

	// ReserveAll reserves every line. On failure the reservations
	// already applied in this call are released before the failing
	// line's error is returned; inside RunInTx the rollback makes that
	// compensation a no-op.
	ReserveAll(ctx context.Context, lines []OrderLine) error

	// Release increments the product's quantity unconditionally.
	Release(ctx context.Context, productID int64, quantity int32) error

	// ReleaseAll releases every line.
	ReleaseAll(ctx context.Context, lines []OrderLine) error
}

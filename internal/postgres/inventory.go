package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/stroymart/backend/internal/domain"
)

// Reserve performs the conditional decrement in a single statement. The
// row lock taken by the UPDATE serializes concurrent reservations for
// the same product, and the predicate re-checks availability under that
// lock, so stock can never go negative.
func (s *Store) Reserve(ctx context.Context, productID int64, quantity int32) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE products
		 SET quantity = quantity - $2
		 WHERE id = $1 AND quantity >= $2`, productID, quantity)
	if err != nil {
		return domain.Internal(err, "inventory.reserve", "failed to reserve stock")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No row updated: the product is missing or under-stocked. Read the
	// current quantity to report the available amount.
	var available int32
	err = s.db.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1`, productID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrProductNotFound
		}
		return domain.Internal(err, "inventory.reserve", "failed to read stock level")
	}
	return &domain.StockError{ProductID: productID, Requested: quantity, Available: available}
}

// ReserveAll reserves every line, releasing this call's prior
// reservations if one fails. Inside RunInTx the rollback discards the
// compensation along with everything else.
func (s *Store) ReserveAll(ctx context.Context, lines []domain.OrderLine) error {
	for i, ln := range lines {
		if err := s.Reserve(ctx, ln.ProductID, ln.Quantity); err != nil {
			for _, applied := range lines[:i] {
				_ = s.Release(ctx, applied.ProductID, applied.Quantity)
			}
			return err
		}
	}
	return nil
}

// Release returns stock to a product. Unconditional; it only fails on
// infrastructure errors or a vanished product.
func (s *Store) Release(ctx context.Context, productID int64, quantity int32) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE products
		 SET quantity = quantity + $2
		 WHERE id = $1`, productID, quantity)
	if err != nil {
		return domain.Internal(err, "inventory.release", "failed to release stock")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// ReleaseAll releases every line.
func (s *Store) ReleaseAll(ctx context.Context, lines []domain.OrderLine) error {
	for _, ln := range lines {
		if err := s.Release(ctx, ln.ProductID, ln.Quantity); err != nil {
			return err
		}
	}
	return nil
}

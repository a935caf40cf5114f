package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/stroymart/backend/internal/domain"
)

// GetProduct reads a catalog product.
func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRow(ctx,
		`SELECT id, name, price_cents, quantity, created_at
		 FROM products
		 WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.PriceCents, &p.Quantity, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.get", "failed to get product")
	}
	return &p, nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/stroymart/backend/internal/domain"
)

// GetOpenCart returns the customer's cart. The UNIQUE(customer_id)
// constraint guarantees at most one row.
func (s *Store) GetOpenCart(ctx context.Context, customerID int64) (*domain.Cart, error) {
	var c domain.Cart
	err := s.db.QueryRow(ctx,
		`SELECT id, customer_id, created_at, updated_at
		 FROM carts
		 WHERE customer_id = $1`, customerID,
	).Scan(&c.ID, &c.CustomerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, domain.Internal(err, "cart.get", "failed to get cart")
	}
	return &c, nil
}

// CreateCart creates an empty cart for the customer.
func (s *Store) CreateCart(ctx context.Context, customerID int64) (*domain.Cart, error) {
	var c domain.Cart
	err := s.db.QueryRow(ctx,
		`INSERT INTO carts (customer_id)
		 VALUES ($1)
		 RETURNING id, customer_id, created_at, updated_at`, customerID,
	).Scan(&c.ID, &c.CustomerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, domain.Internal(err, "cart.create", "failed to create cart")
	}
	return &c, nil
}

func (s *Store) GetCartLine(ctx context.Context, cartID, productID int64) (*domain.CartLine, error) {
	var ln domain.CartLine
	err := s.db.QueryRow(ctx,
		`SELECT cart_id, product_id, quantity
		 FROM cart_items
		 WHERE cart_id = $1 AND product_id = $2`, cartID, productID,
	).Scan(&ln.CartID, &ln.ProductID, &ln.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, domain.Internal(err, "cart.get_line", "failed to get cart item")
	}
	return &ln, nil
}

func (s *Store) ListCartLines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	rows, err := s.db.Query(ctx,
		`SELECT cart_id, product_id, quantity
		 FROM cart_items
		 WHERE cart_id = $1
		 ORDER BY product_id`, cartID)
	if err != nil {
		return nil, domain.Internal(err, "cart.list_lines", "failed to list cart items")
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var ln domain.CartLine
		if err := rows.Scan(&ln.CartID, &ln.ProductID, &ln.Quantity); err != nil {
			return nil, domain.Internal(err, "cart.list_lines", "failed to scan cart item")
		}
		lines = append(lines, ln)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "cart.list_lines", "failed to read cart items")
	}
	return lines, nil
}

// UpsertCartLine inserts the line or merges quantities for a product
// already in the cart.
func (s *Store) UpsertCartLine(ctx context.Context, cartID, productID int64, quantity int32) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (cart_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cartID, productID, quantity)
	if err != nil {
		return domain.Internal(err, "cart.upsert_line", "failed to save cart item")
	}

	_, err = s.db.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	if err != nil {
		return domain.Internal(err, "cart.upsert_line", "failed to touch cart")
	}
	return nil
}

func (s *Store) DeleteCartLine(ctx context.Context, cartID, productID int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return domain.Internal(err, "cart.delete_line", "failed to delete cart item")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (s *Store) ClearCartLines(ctx context.Context, cartID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return domain.Internal(err, "cart.clear", "failed to clear cart")
	}
	return nil
}

// DeleteCart removes the cart row; cart_items go with it via ON DELETE
// CASCADE.
func (s *Store) DeleteCart(ctx context.Context, cartID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return domain.Internal(err, "cart.delete", "failed to delete cart")
	}
	return nil
}

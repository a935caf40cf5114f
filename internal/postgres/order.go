package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/stroymart/backend/internal/domain"
)

// CreateOrder inserts the order and its line snapshots. Callers run this
// inside RunInTx so the order and its reservation commit together.
func (s *Store) CreateOrder(ctx context.Context, order *domain.Order, lines []domain.OrderLine) (*domain.Order, error) {
	stored := *order
	err := s.db.QueryRow(ctx,
		`INSERT INTO orders (customer_id, status, total_cents, delivery_address, delivery_phone, delivery_date, delivery_time, comment)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		order.CustomerID, order.Status, order.TotalCents,
		order.Delivery.Address, order.Delivery.Phone, order.Delivery.Date, order.Delivery.Time,
		order.Delivery.Comment,
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, domain.Internal(err, "order.create", "failed to create order")
	}

	for _, ln := range lines {
		_, err := s.db.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, unit_price_cents, quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			stored.ID, ln.ProductID, ln.ProductName, ln.UnitPriceCents, ln.Quantity)
		if err != nil {
			return nil, domain.Internal(err, "order.create", "failed to create order item")
		}
	}
	return &stored, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var o domain.Order
	err := s.db.QueryRow(ctx,
		`SELECT id, customer_id, status, total_cents, delivery_address, delivery_phone, delivery_date, delivery_time, comment, created_at
		 FROM orders
		 WHERE id = $1`, orderID,
	).Scan(&o.ID, &o.CustomerID, &o.Status, &o.TotalCents,
		&o.Delivery.Address, &o.Delivery.Phone, &o.Delivery.Date, &o.Delivery.Time,
		&o.Delivery.Comment, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to get order")
	}
	return &o, nil
}

func (s *Store) ListOrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := s.db.Query(ctx,
		`SELECT order_id, product_id, product_name, unit_price_cents, quantity
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY product_id`, orderID)
	if err != nil {
		return nil, domain.Internal(err, "order.list_lines", "failed to list order items")
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var ln domain.OrderLine
		if err := rows.Scan(&ln.OrderID, &ln.ProductID, &ln.ProductName, &ln.UnitPriceCents, &ln.Quantity); err != nil {
			return nil, domain.Internal(err, "order.list_lines", "failed to scan order item")
		}
		lines = append(lines, ln)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list_lines", "failed to read order items")
	}
	return lines, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return domain.Internal(err, "order.update_status", "failed to update order status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// buildOrderWhere translates an OrderFilter into a WHERE clause with
// positional parameters. Keeping all fragment assembly here keeps
// parameter indexes correct by construction for both listing and
// counting.
func buildOrderWhere(f domain.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	where, args := buildOrderWhere(filter)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(
		`SELECT id, customer_id, status, total_cents, delivery_address, delivery_phone, delivery_date, delivery_time, comment, created_at
		 FROM orders
		 %s
		 ORDER BY created_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.TotalCents,
			&o.Delivery.Address, &o.Delivery.Phone, &o.Delivery.Date, &o.Delivery.Time,
			&o.Delivery.Comment, &o.CreatedAt); err != nil {
			return nil, domain.Internal(err, "order.list", "failed to scan order")
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list", "failed to read orders")
	}
	return orders, nil
}

func (s *Store) CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	where, args := buildOrderWhere(filter)
	var n int64
	err := s.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM orders %s`, where), args...).Scan(&n)
	if err != nil {
		return 0, domain.Internal(err, "order.count", "failed to count orders")
	}
	return n, nil
}

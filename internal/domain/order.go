package domain

import (
	"context"
	"time"
)

// Order-related domain errors.
var (
	ErrOrderNotFound       = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrEmptyCart           = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrOrderNotCancellable = &Error{Code: ECONFLICT, Message: "Only new orders can be cancelled"}
)

// OrderStatus is the lifecycle state of a committed order.
// new -> processing -> fulfilled, new -> cancelled; fulfilled and
// cancelled are terminal.
type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusProcessing OrderStatus = "processing"
	StatusFulfilled  OrderStatus = "fulfilled"
	StatusCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus validates an externally supplied status value.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusNew, StatusProcessing, StatusFulfilled, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", Errorf(EINVALID, "order.status", "invalid order status: %q", s)
}

// HoldsStock reports whether an order in this status still holds an
// inventory reservation. Fulfilled orders have shipped; cancelled orders
// were already released.
func (s OrderStatus) HoldsStock() bool {
	return s == StatusNew || s == StatusProcessing
}

// DeliveryInfo is the delivery detail captured at checkout.
type DeliveryInfo struct {
	Address string `json:"deliveryAddress" validate:"required"`
	Phone   string `json:"deliveryPhone" validate:"required"`
	Date    string `json:"deliveryDate" validate:"required"`
	Time    string `json:"deliveryTime" validate:"required"`
	Comment string `json:"comment"`
}

// Order is a committed order. Everything except Status is immutable once
// the cart has been promoted.
type Order struct {
	ID         int64
	CustomerID int64
	Status     OrderStatus
	TotalCents int64
	Delivery   DeliveryInfo
	CreatedAt  time.Time
}

// OrderLine is a frozen snapshot of a cart line at checkout time. Name
// and unit price never change after commit, whatever the catalog does.
type OrderLine struct {
	OrderID        int64
	ProductID      int64
	ProductName    string
	UnitPriceCents int64
	Quantity       int32
}

// OrderDetail aggregates an order with its lines.
type OrderDetail struct {
	Order Order
	Lines []OrderLine
}

// OrderFilter narrows order listings. Nil fields match everything.
type OrderFilter struct {
	CustomerID *int64
	Status     *OrderStatus
	Page       int32
	Limit      int32
}

// Page describes the pagination of a listing result.
type Page struct {
	Current    int32
	Total      int32
	TotalItems int64
	PerPage    int32
}

// OrderService governs the cart-to-order lifecycle.
type OrderService interface {
	// Checkout promotes the customer's cart into a committed order,
	// reserving stock for every line in one unit of work.
	Checkout(ctx context.Context, customerID int64, delivery DeliveryInfo) (*OrderDetail, error)

	// Cancel reverses a checkout: releases stock and marks the order
	// cancelled. Only orders in status new can be cancelled.
	Cancel(ctx context.Context, orderID, customerID int64) error

	// AdvanceStatus is the employee-driven status rewrite. It does not
	// gate on the current status; a move to cancelled releases any
	// reservation the order still holds.
	AdvanceStatus(ctx context.Context, orderID int64, target OrderStatus) (*Order, error)

	// GetOrder returns an order owned by the customer.
	GetOrder(ctx context.Context, orderID, customerID int64) (*OrderDetail, error)

	// GetOrderAny returns any order regardless of owner (employee view).
	GetOrderAny(ctx context.Context, orderID int64) (*OrderDetail, error)

	// ListOrders returns orders matching the filter, newest first.
	ListOrders(ctx context.Context, filter OrderFilter) ([]OrderDetail, *Page, error)
}

// OrderStore persists committed orders.
type OrderStore interface {
	// CreateOrder inserts the order and its lines, returning the stored
	// order with id and creation time set.
	CreateOrder(ctx context.Context, order *Order, lines []OrderLine) (*Order, error)

	// GetOrder returns an order by id or ErrOrderNotFound.
	GetOrder(ctx context.Context, orderID int64) (*Order, error)

	// ListOrderLines returns the order's lines ordered by product id.
	ListOrderLines(ctx context.Context, orderID int64) ([]OrderLine, error)

	// UpdateOrderStatus rewrites the status column only.
	UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) error

	// ListOrders returns orders matching the filter, newest first.
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)

	// CountOrders counts orders matching the filter, ignoring pagination.
	CountOrders(ctx context.Context, filter OrderFilter) (int64, error)
}

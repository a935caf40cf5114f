package domain

import (
	"context"
	"time"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
)

// Cart is a customer's open cart. At most one exists per customer; it is
// created lazily on the first AddItem and deleted when checkout promotes
// it into an order.
type Cart struct {
	ID         int64
	CustomerID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartLine is one product entry in a cart. Repeated adds for the same
// product merge by summing the quantity.
type CartLine struct {
	CartID    int64
	ProductID int64
	Quantity  int32
}

// CartSummary aggregates the cart's lines with current catalog prices.
// TotalCents here uses the price at read time; the frozen order total is
// computed at checkout.
type CartSummary struct {
	Items      []CartSummaryItem
	TotalItems int32
	TotalCents int64
}

// CartSummaryItem is a cart line joined with product name and price.
type CartSummaryItem struct {
	ProductID  int64
	Name       string
	PriceCents int64
	Quantity   int32
	LineCents  int64
}

// CartService provides business logic for shopping cart operations.
type CartService interface {
	// Summary returns the cart's lines with current prices and totals.
	// A customer with no open cart gets an empty summary, not an error.
	Summary(ctx context.Context, customerID int64) (*CartSummary, error)

	// AddItem adds a product to the cart, creating the cart if needed.
	// The stock check here is advisory; the authoritative reservation
	// happens at checkout.
	AddItem(ctx context.Context, customerID, productID int64, quantity int32) error

	// RemoveItem removes a product line from the cart.
	RemoveItem(ctx context.Context, customerID, productID int64) error

	// Clear removes all lines from the cart. Idempotent.
	Clear(ctx context.Context, customerID int64) error
}

// CartStore persists carts and their lines.
type CartStore interface {
	// GetOpenCart returns the customer's cart or ErrCartNotFound.
	GetOpenCart(ctx context.Context, customerID int64) (*Cart, error)

	// CreateCart creates an empty cart for the customer.
	CreateCart(ctx context.Context, customerID int64) (*Cart, error)

	// GetCartLine returns a single line or ErrCartItemNotFound.
	GetCartLine(ctx context.Context, cartID, productID int64) (*CartLine, error)

	// ListCartLines returns all lines of a cart ordered by product id.
	ListCartLines(ctx context.Context, cartID int64) ([]CartLine, error)

	// UpsertCartLine inserts a line or adds quantity to an existing one.
	UpsertCartLine(ctx context.Context, cartID, productID int64, quantity int32) error

	// DeleteCartLine removes a line, ErrCartItemNotFound if absent.
	DeleteCartLine(ctx context.Context, cartID, productID int64) error

	// ClearCartLines removes all lines of a cart.
	ClearCartLines(ctx context.Context, cartID int64) error

	// DeleteCart removes the cart and its lines.
	DeleteCart(ctx context.Context, cartID int64) error
}

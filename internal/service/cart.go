package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stroymart/backend/internal/domain"
)

// CartService implements domain.CartService.
type CartService struct {
	store  domain.Store
	logger *slog.Logger
}

// Compile-time check that CartService implements domain.CartService.
var _ domain.CartService = (*CartService)(nil)

// NewCartService creates a new CartService instance.
func NewCartService(store domain.Store, logger *slog.Logger) *CartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartService{store: store, logger: logger}
}

// Summary returns the cart joined with current catalog names and prices.
// The total here follows the catalog; it is not the frozen total an
// order gets at checkout.
func (s *CartService) Summary(ctx context.Context, customerID int64) (*domain.CartSummary, error) {
	summary := &domain.CartSummary{Items: []domain.CartSummaryItem{}}

	cart, err := s.store.GetOpenCart(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return summary, nil
		}
		return nil, err
	}

	lines, err := s.store.ListCartLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	for _, ln := range lines {
		product, err := s.store.GetProduct(ctx, ln.ProductID)
		if err != nil {
			return nil, err
		}
		lineCents := product.PriceCents * int64(ln.Quantity)
		summary.Items = append(summary.Items, domain.CartSummaryItem{
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   ln.Quantity,
			LineCents:  lineCents,
		})
		summary.TotalItems += ln.Quantity
		summary.TotalCents += lineCents
	}
	return summary, nil
}

// AddItem adds a product to the customer's cart, creating the cart on
// the first add. The availability check is advisory: it rejects adds
// that are already futile, but stock can still change before checkout,
// where the authoritative reservation happens.
func (s *CartService) AddItem(ctx context.Context, customerID, productID int64, quantity int32) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	var (
		cart     *domain.Cart
		existing int32
	)
	cart, err = s.store.GetOpenCart(ctx, customerID)
	switch {
	case err == nil:
		line, err := s.store.GetCartLine(ctx, cart.ID, productID)
		if err != nil && !errors.Is(err, domain.ErrCartItemNotFound) {
			return err
		}
		if line != nil {
			existing = line.Quantity
		}
	case errors.Is(err, domain.ErrCartNotFound):
		cart = nil
	default:
		return err
	}

	if existing+quantity > product.Quantity {
		return &domain.StockError{
			ProductID: productID,
			Requested: existing + quantity,
			Available: product.Quantity,
		}
	}

	if cart == nil {
		cart, err = s.store.CreateCart(ctx, customerID)
		if err != nil {
			return err
		}
	}

	if err := s.store.UpsertCartLine(ctx, cart.ID, productID, quantity); err != nil {
		return err
	}

	s.logger.Debug("cart item added",
		"customer_id", customerID,
		"product_id", productID,
		"quantity", quantity,
	)
	return nil
}

// RemoveItem deletes a product line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, customerID, productID int64) error {
	cart, err := s.store.GetOpenCart(ctx, customerID)
	if err != nil {
		return err
	}
	return s.store.DeleteCartLine(ctx, cart.ID, productID)
}

// Clear removes every line from the cart. A missing or already empty
// cart is not an error.
func (s *CartService) Clear(ctx context.Context, customerID int64) error {
	cart, err := s.store.GetOpenCart(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil
		}
		return err
	}
	return s.store.ClearCartLines(ctx, cart.ID)
}

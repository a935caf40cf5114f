package service

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/stroymart/backend/internal/domain"
)

// Listing defaults applied when the caller leaves pagination unset.
const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// OrderService implements domain.OrderService: the state machine that
// promotes carts into orders and walks orders through their lifecycle.
type OrderService struct {
	store    domain.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// Compile-time check that OrderService implements domain.OrderService.
var _ domain.OrderService = (*OrderService)(nil)

// NewOrderService creates a new OrderService instance.
func NewOrderService(store domain.Store, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Checkout promotes the customer's cart into a committed order. The
// reservation, the order insert with its frozen price snapshot, and the
// cart deletion happen in one unit of work: any failure leaves the cart
// and every product's stock exactly as they were.
func (s *OrderService) Checkout(ctx context.Context, customerID int64, delivery domain.DeliveryInfo) (*domain.OrderDetail, error) {
	if err := s.validate.Struct(delivery); err != nil {
		return nil, domain.Invalid("order.checkout", "delivery address, phone, date and time are required")
	}

	var detail *domain.OrderDetail
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx domain.Store) error {
		cart, err := tx.GetOpenCart(ctx, customerID)
		if err != nil {
			return err
		}

		cartLines, err := tx.ListCartLines(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(cartLines) == 0 {
			return domain.ErrEmptyCart
		}

		// Snapshot name and price per line; the order keeps these even
		// if the catalog changes later.
		var total int64
		lines := make([]domain.OrderLine, len(cartLines))
		for i, ln := range cartLines {
			product, err := tx.GetProduct(ctx, ln.ProductID)
			if err != nil {
				return err
			}
			lines[i] = domain.OrderLine{
				ProductID:      product.ID,
				ProductName:    product.Name,
				UnitPriceCents: product.PriceCents,
				Quantity:       ln.Quantity,
			}
			total += product.PriceCents * int64(ln.Quantity)
		}

		if err := tx.ReserveAll(ctx, lines); err != nil {
			return err
		}

		order, err := tx.CreateOrder(ctx, &domain.Order{
			CustomerID: customerID,
			Status:     domain.StatusNew,
			TotalCents: total,
			Delivery:   delivery,
		}, lines)
		if err != nil {
			return err
		}

		if err := tx.DeleteCart(ctx, cart.ID); err != nil {
			return err
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		detail = &domain.OrderDetail{Order: *order, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		"order_id", detail.Order.ID,
		"customer_id", customerID,
		"total_cents", detail.Order.TotalCents,
		"lines", len(detail.Lines),
	)
	return detail, nil
}

// Cancel reverses a checkout for an order the customer owns. Only
// status new qualifies; the release and the status flip commit together.
func (s *OrderService) Cancel(ctx context.Context, orderID, customerID int64) error {
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx domain.Store) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		// An order belonging to someone else looks exactly like a
		// missing one to the caller.
		if order.CustomerID != customerID {
			return domain.ErrOrderNotFound
		}
		if order.Status != domain.StatusNew {
			return domain.ErrOrderNotCancellable
		}

		lines, err := tx.ListOrderLines(ctx, orderID)
		if err != nil {
			return err
		}
		if err := tx.ReleaseAll(ctx, lines); err != nil {
			return err
		}
		return tx.UpdateOrderStatus(ctx, orderID, domain.StatusCancelled)
	})
	if err != nil {
		return err
	}

	s.logger.Info("order cancelled", "order_id", orderID, "customer_id", customerID)
	return nil
}

// AdvanceStatus is the employee-driven status rewrite. It deliberately
// does not gate on the current status. A move to cancelled releases the
// reservation the order still holds (states new and processing); any
// other target leaves stock alone, and re-cancelling never releases
// twice.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID int64, target domain.OrderStatus) (*domain.Order, error) {
	if _, err := domain.ParseOrderStatus(string(target)); err != nil {
		return nil, err
	}

	var updated *domain.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx domain.Store) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		if target == domain.StatusCancelled && order.Status.HoldsStock() {
			lines, err := tx.ListOrderLines(ctx, orderID)
			if err != nil {
				return err
			}
			if err := tx.ReleaseAll(ctx, lines); err != nil {
				return err
			}
		}

		if err := tx.UpdateOrderStatus(ctx, orderID, target); err != nil {
			return err
		}
		order.Status = target
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status updated", "order_id", orderID, "status", target)
	return updated, nil
}

// GetOrder returns an order owned by the customer, with lines.
func (s *OrderService) GetOrder(ctx context.Context, orderID, customerID int64) (*domain.OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, domain.ErrOrderNotFound
	}
	return s.detail(ctx, order)
}

// GetOrderAny returns any order with lines; employee view.
func (s *OrderService) GetOrderAny(ctx context.Context, orderID int64) (*domain.OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

func (s *OrderService) detail(ctx context.Context, order *domain.Order) (*domain.OrderDetail, error) {
	lines, err := s.store.ListOrderLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &domain.OrderDetail{Order: *order, Lines: lines}, nil
}

// ListOrders returns orders matching the filter, newest first, with
// pagination metadata.
func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderDetail, *domain.Page, error) {
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	total, err := s.store.CountOrders(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	orders, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	details := make([]domain.OrderDetail, len(orders))
	for i, o := range orders {
		lines, err := s.store.ListOrderLines(ctx, o.ID)
		if err != nil {
			return nil, nil, err
		}
		details[i] = domain.OrderDetail{Order: o, Lines: lines}
	}

	totalPages := int32((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	page := &domain.Page{
		Current:    filter.Page,
		Total:      totalPages,
		TotalItems: total,
		PerPage:    filter.Limit,
	}
	return details, page, nil
}

// Package memory provides an in-memory domain.Store used by tests. A
// single mutex serializes units of work and a deep snapshot restores
// state when one fails, preserving the atomicity contract of the
// postgres implementation.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/stroymart/backend/internal/domain"
)

// Store implements domain.Store over plain maps.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

type state struct {
	products   map[int64]domain.Product
	carts      map[int64]domain.Cart            // cart id -> cart
	cartLines  map[int64]map[int64]int32        // cart id -> product id -> quantity
	orders     map[int64]domain.Order           // order id -> order
	orderLines map[int64][]domain.OrderLine     // order id -> lines
	nextID     int64
}

// Compile-time check that Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		mu: &sync.Mutex{},
		st: &state{
			products:   map[int64]domain.Product{},
			carts:      map[int64]domain.Cart{},
			cartLines:  map[int64]map[int64]int32{},
			orders:     map[int64]domain.Order{},
			orderLines: map[int64][]domain.OrderLine{},
		},
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *state) clone() *state {
	c := &state{
		products:   maps.Clone(s.products),
		carts:      maps.Clone(s.carts),
		cartLines:  make(map[int64]map[int64]int32, len(s.cartLines)),
		orders:     maps.Clone(s.orders),
		orderLines: make(map[int64][]domain.OrderLine, len(s.orderLines)),
		nextID:     s.nextID,
	}
	for id, lines := range s.cartLines {
		c.cartLines[id] = maps.Clone(lines)
	}
	for id, lines := range s.orderLines {
		c.orderLines[id] = slices.Clone(lines)
	}
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// RunInTx runs fn under the store lock and restores the pre-transaction
// snapshot if fn fails or panics. The restore copies into the shared
// state object so nested units of work see it too.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx domain.Store) error) (err error) {
	defer s.lock()()

	snapshot := s.st.clone()
	defer func() {
		if r := recover(); r != nil {
			*s.st = *snapshot
			panic(r)
		}
		if err != nil {
			*s.st = *snapshot
		}
	}()

	return fn(ctx, &Store{mu: s.mu, st: s.st, inTx: true})
}

// SeedProduct inserts a catalog product and returns it. Test helper;
// production catalog writes happen outside this service.
func (s *Store) SeedProduct(name string, priceCents int64, quantity int32) domain.Product {
	defer s.lock()()

	p := domain.Product{
		ID:         s.st.id(),
		Name:       name,
		PriceCents: priceCents,
		Quantity:   quantity,
		CreatedAt:  time.Now(),
	}
	s.st.products[p.ID] = p
	return p
}

// =============================================================================
// ProductStore
// =============================================================================

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	defer s.lock()()

	p, ok := s.st.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

// =============================================================================
// InventoryLedger
// =============================================================================

func (s *Store) Reserve(ctx context.Context, productID int64, quantity int32) error {
	defer s.lock()()

	p, ok := s.st.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if p.Quantity < quantity {
		return &domain.StockError{ProductID: productID, Requested: quantity, Available: p.Quantity}
	}
	p.Quantity -= quantity
	s.st.products[productID] = p
	return nil
}

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

func (s *Store) Release(ctx context.Context, productID int64, quantity int32) error {
	defer s.lock()()

	p, ok := s.st.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Quantity += quantity
	s.st.products[productID] = p
	return nil
}

func (s *Store) ReleaseAll(ctx context.Context, lines []domain.OrderLine) error {
	for _, ln := range lines {
		if err := s.Release(ctx, ln.ProductID, ln.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// CartStore
// =============================================================================

func (s *Store) GetOpenCart(ctx context.Context, customerID int64) (*domain.Cart, error) {
	defer s.lock()()

	for _, c := range s.st.carts {
		if c.CustomerID == customerID {
			return &c, nil
		}
	}
	return nil, domain.ErrCartNotFound
}

func (s *Store) CreateCart(ctx context.Context, customerID int64) (*domain.Cart, error) {
	defer s.lock()()

	now := time.Now()
	c := domain.Cart{ID: s.st.id(), CustomerID: customerID, CreatedAt: now, UpdatedAt: now}
	s.st.carts[c.ID] = c
	s.st.cartLines[c.ID] = map[int64]int32{}
	return &c, nil
}

func (s *Store) GetCartLine(ctx context.Context, cartID, productID int64) (*domain.CartLine, error) {
	defer s.lock()()

	qty, ok := s.st.cartLines[cartID][productID]
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}
	return &domain.CartLine{CartID: cartID, ProductID: productID, Quantity: qty}, nil
}

func (s *Store) ListCartLines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	defer s.lock()()

	byProduct := s.st.cartLines[cartID]
	lines := make([]domain.CartLine, 0, len(byProduct))
	for _, productID := range slices.Sorted(maps.Keys(byProduct)) {
		lines = append(lines, domain.CartLine{CartID: cartID, ProductID: productID, Quantity: byProduct[productID]})
	}
	return lines, nil
}

func (s *Store) UpsertCartLine(ctx context.Context, cartID, productID int64, quantity int32) error {
	defer s.lock()()

	byProduct, ok := s.st.cartLines[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	byProduct[productID] += quantity

	cart := s.st.carts[cartID]
	cart.UpdatedAt = time.Now()
	s.st.carts[cartID] = cart
	return nil
}

func (s *Store) DeleteCartLine(ctx context.Context, cartID, productID int64) error {
	defer s.lock()()

	byProduct, ok := s.st.cartLines[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if _, ok := byProduct[productID]; !ok {
		return domain.ErrCartItemNotFound
	}
	delete(byProduct, productID)
	return nil
}

func (s *Store) ClearCartLines(ctx context.Context, cartID int64) error {
	defer s.lock()()

	if _, ok := s.st.cartLines[cartID]; !ok {
		return domain.ErrCartNotFound
	}
	s.st.cartLines[cartID] = map[int64]int32{}
	return nil
}

func (s *Store) DeleteCart(ctx context.Context, cartID int64) error {
	defer s.lock()()

	delete(s.st.carts, cartID)
	delete(s.st.cartLines, cartID)
	return nil
}

// =============================================================================
// OrderStore
// =============================================================================

func (s *Store) CreateOrder(ctx context.Context, order *domain.Order, lines []domain.OrderLine) (*domain.Order, error) {
	defer s.lock()()

	stored := *order
	stored.ID = s.st.id()
	stored.CreatedAt = time.Now()
	s.st.orders[stored.ID] = stored

	storedLines := make([]domain.OrderLine, len(lines))
	for i, ln := range lines {
		ln.OrderID = stored.ID
		storedLines[i] = ln
	}
	s.st.orderLines[stored.ID] = storedLines
	return &stored, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	defer s.lock()()

	o, ok := s.st.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (s *Store) ListOrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	defer s.lock()()

	return slices.Clone(s.st.orderLines[orderID]), nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	defer s.lock()()

	o, ok := s.st.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	s.st.orders[orderID] = o
	return nil
}

func (s *Store) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	defer s.lock()()

	var orders []domain.Order
	for _, o := range s.st.orders {
		if matchesFilter(o, filter) {
			orders = append(orders, o)
		}
	}
	slices.SortFunc(orders, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})

	offset := int(filter.Page-1) * int(filter.Limit)
	if offset < 0 || offset >= len(orders) {
		return nil, nil
	}
	end := min(offset+int(filter.Limit), len(orders))
	return orders[offset:end], nil
}

func (s *Store) CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	defer s.lock()()

	var n int64
	for _, o := range s.st.orders {
		if matchesFilter(o, filter) {
			n++
		}
	}
	return n, nil
}

func matchesFilter(o domain.Order, f domain.OrderFilter) bool {
	if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
		return false
	}
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	return true
}

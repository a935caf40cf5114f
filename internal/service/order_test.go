package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stroymart/backend/internal/domain"
	"github.com/stroymart/backend/internal/memory"
)

var testDelivery = domain.DeliveryInfo{
	Address: "12 Stroiteley st.",
	Phone:   "+7 900 000-00-00",
	Date:    "2026-09-15",
	Time:    "10:00-14:00",
}

func TestOrderService_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes cart into order and decrements stock", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		brick := store.SeedProduct("Red brick", 5000, 50)
		carts := NewCartService(store, nil)
		orders := NewOrderService(store, nil)

		require.NoError(t, carts.AddItem(ctx, 1, cement.ID, 2))
		require.NoError(t, carts.AddItem(ctx, 1, brick.ID, 10))

		detail, err := orders.Checkout(ctx, 1, testDelivery)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNew, detail.Order.Status)
		assert.Equal(t, int64(2*45000+10*5000), detail.Order.TotalCents)
		require.Len(t, detail.Lines, 2)

		// Stock decremented
		p, err := store.GetProduct(ctx, cement.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(98), p.Quantity)
		p, err = store.GetProduct(ctx, brick.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(40), p.Quantity)

		// Cart is gone
		summary, err := carts.Summary(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, summary.Items)
	})

	t.Run("order total is frozen against later price changes", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		carts := NewCartService(store, nil)
		orders := NewOrderService(store, nil)

		require.NoError(t, carts.AddItem(ctx, 1, cement.ID, 2))
		detail, err := orders.Checkout(ctx, 1, testDelivery)
		require.NoError(t, err)

		// A later catalog price has no effect on the committed order
		store.SeedProduct("Cement M500 v2", 99000, 10)
		got, err := orders.GetOrder(ctx, detail.Order.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(90000), got.Order.TotalCents)
		assert.Equal(t, int64(45000), got.Lines[0].UnitPriceCents)
		assert.Equal(t, "Cement M500", got.Lines[0].ProductName)
	})

	t.Run("empty cart fails without mutation", func(t *testing.T) {
		store := memory.NewStore()
		carts := NewCartService(store, nil)
		orders := NewOrderService(store, nil)
		cement := store.SeedProduct("Cement M500", 45000, 100)

		require.NoError(t, carts.AddItem(ctx, 1, cement.ID, 1))
		require.NoError(t, carts.Clear(ctx, 1))

		_, err := orders.Checkout(ctx, 1, testDelivery)
		assert.ErrorIs(t, err, domain.ErrEmptyCart)

		p, err := store.GetProduct(ctx, cement.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(100), p.Quantity)
	})

	t.Run("no cart at all fails", func(t *testing.T) {
		store := memory.NewStore()
		orders := NewOrderService(store, nil)

		_, err := orders.Checkout(ctx, 1, testDelivery)
		assert.ErrorIs(t, err, domain.ErrCartNotFound)
	})

	t.Run("missing delivery fields fail validation", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		carts := NewCartService(store, nil)
		orders := NewOrderService(store, nil)

		require.NoError(t, carts.AddItem(ctx, 1, cement.ID, 1))

		tests := []struct {
			name     string
			delivery domain.DeliveryInfo
		}{
			{"no address", domain.DeliveryInfo{Phone: "+7", Date: "2026-09-15", Time: "10:00"}},
			{"no phone", domain.DeliveryInfo{Address: "a", Date: "2026-09-15", Time: "10:00"}},
			{"no date", domain.DeliveryInfo{Address: "a", Phone: "+7", Time: "10:00"}},
			{"no time", domain.DeliveryInfo{Address: "a", Phone: "+7", Date: "2026-09-15"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := orders.Checkout(ctx, 1, tt.delivery)
				assert.True(t, domain.IsCode(err, domain.EINVALID))
			})
		}

		// Comment stays optional
		d := testDelivery
		d.Comment = ""
		_, err := orders.Checkout(ctx, 1, d)
		assert.NoError(t, err)
	})

	t.Run("insufficient stock rolls back the whole checkout", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		tile := store.SeedProduct("Floor tile", 89000, 10)
		carts := NewCartService(store, nil)
		orders := NewOrderService(store, nil)

		require.NoError(t, carts.AddItem(ctx, 1, cement.ID, 2))
		require.NoError(t, carts.AddItem(ctx, 1, tile.ID, 5))

		// Someone else takes the tiles between add and checkout
		require.NoError(t, store.Reserve(ctx, tile.ID, 8))

		_, err := orders.Checkout(ctx, 1, testDelivery)
		var stockErr *domain.StockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, tile.ID, stockErr.ProductID)
		assert.Equal(t, int32(2), stockErr.Available)

		// Nothing moved: cement untouched, cart intact
		p, err := store.GetProduct(ctx, cement.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(100), p.Quantity)

		summary, err := carts.Summary(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, summary.Items, 2)
	})

	t.Run("two concurrent checkouts over the last unit", func(t *testing.T) {
		store := memory.NewStore()
		tile := store.SeedProduct("Floor tile", 89000, 1)
		carts := NewCartService(store, nil)
		orders := NewOrderService(store, nil)

		require.NoError(t, carts.AddItem(ctx, 1, tile.ID, 1))
		require.NoError(t, carts.AddItem(ctx, 2, tile.ID, 1))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, customerID := range []int64{1, 2} {
			wg.Add(1)
			go func(i int, customerID int64) {
				defer wg.Done()
				_, errs[i] = orders.Checkout(ctx, customerID, testDelivery)
			}(i, customerID)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.True(t, domain.IsStockError(err))
			}
		}
		assert.Equal(t, 1, succeeded)

		p, err := store.GetProduct(ctx, tile.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(0), p.Quantity)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	checkout := func(t *testing.T, store *memory.Store, customerID int64, productID int64, qty int32) *domain.OrderDetail {
		t.Helper()
		carts := NewCartService(store, nil)
		orders := NewOrderService(store, nil)
		require.NoError(t, carts.AddItem(ctx, customerID, productID, qty))
		detail, err := orders.Checkout(ctx, customerID, testDelivery)
		require.NoError(t, err)
		return detail
	}

	t.Run("restores stock and marks cancelled", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		orders := NewOrderService(store, nil)

		detail := checkout(t, store, 1, cement.ID, 7)

		require.NoError(t, orders.Cancel(ctx, detail.Order.ID, 1))

		p, err := store.GetProduct(ctx, cement.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(100), p.Quantity)

		got, err := orders.GetOrder(ctx, detail.Order.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, got.Order.Status)
	})

	t.Run("only new orders can be cancelled", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		orders := NewOrderService(store, nil)

		detail := checkout(t, store, 1, cement.ID, 7)
		_, err := orders.AdvanceStatus(ctx, detail.Order.ID, domain.StatusProcessing)
		require.NoError(t, err)

		err = orders.Cancel(ctx, detail.Order.ID, 1)
		assert.ErrorIs(t, err, domain.ErrOrderNotCancellable)

		// No mutation: stock still reserved, status unchanged
		p, err := store.GetProduct(ctx, cement.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(93), p.Quantity)

		got, err := orders.GetOrder(ctx, detail.Order.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusProcessing, got.Order.Status)
	})

	t.Run("someone else's order looks missing", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		orders := NewOrderService(store, nil)

		detail := checkout(t, store, 1, cement.ID, 1)

		err := orders.Cancel(ctx, detail.Order.ID, 2)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("unknown order", func(t *testing.T) {
		store := memory.NewStore()
		orders := NewOrderService(store, nil)

		err := orders.Cancel(ctx, 99, 1)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestOrderService_AdvanceStatus(t *testing.T) {
	ctx := context.Background()

	seedOrder := func(t *testing.T, store *memory.Store, productID int64, qty int32) *domain.OrderDetail {
		t.Helper()
		carts := NewCartService(store, nil)
		orders := NewOrderService(store, nil)
		require.NoError(t, carts.AddItem(ctx, 1, productID, qty))
		detail, err := orders.Checkout(ctx, 1, testDelivery)
		require.NoError(t, err)
		return detail
	}

	t.Run("walks the lifecycle without touching stock", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		orders := NewOrderService(store, nil)
		detail := seedOrder(t, store, cement.ID, 5)

		for _, status := range []domain.OrderStatus{domain.StatusProcessing, domain.StatusFulfilled} {
			updated, err := orders.AdvanceStatus(ctx, detail.Order.ID, status)
			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)

			p, err := store.GetProduct(ctx, cement.ID)
			require.NoError(t, err)
			assert.Equal(t, int32(95), p.Quantity)
		}
	})

	t.Run("cancelling releases held stock", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		orders := NewOrderService(store, nil)
		detail := seedOrder(t, store, cement.ID, 5)

		_, err := orders.AdvanceStatus(ctx, detail.Order.ID, domain.StatusProcessing)
		require.NoError(t, err)

		_, err = orders.AdvanceStatus(ctx, detail.Order.ID, domain.StatusCancelled)
		require.NoError(t, err)

		p, err := store.GetProduct(ctx, cement.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(100), p.Quantity)
	})

	t.Run("re-cancelling never releases twice", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		orders := NewOrderService(store, nil)
		detail := seedOrder(t, store, cement.ID, 5)

		_, err := orders.AdvanceStatus(ctx, detail.Order.ID, domain.StatusCancelled)
		require.NoError(t, err)
		_, err = orders.AdvanceStatus(ctx, detail.Order.ID, domain.StatusCancelled)
		require.NoError(t, err)

		p, err := store.GetProduct(ctx, cement.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(100), p.Quantity)
	})

	t.Run("cancelling a fulfilled order leaves stock alone", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		orders := NewOrderService(store, nil)
		detail := seedOrder(t, store, cement.ID, 5)

		_, err := orders.AdvanceStatus(ctx, detail.Order.ID, domain.StatusFulfilled)
		require.NoError(t, err)
		_, err = orders.AdvanceStatus(ctx, detail.Order.ID, domain.StatusCancelled)
		require.NoError(t, err)

		p, err := store.GetProduct(ctx, cement.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(95), p.Quantity)
	})

	t.Run("invalid status", func(t *testing.T) {
		store := memory.NewStore()
		cement := store.SeedProduct("Cement M500", 45000, 100)
		orders := NewOrderService(store, nil)
		detail := seedOrder(t, store, cement.ID, 1)

		_, err := orders.AdvanceStatus(ctx, detail.Order.ID, "shipped")
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})

	t.Run("unknown order", func(t *testing.T) {
		store := memory.NewStore()
		orders := NewOrderService(store, nil)

		_, err := orders.AdvanceStatus(ctx, 99, domain.StatusProcessing)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestOrderService_ListOrders(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, store *memory.Store, n int) {
		t.Helper()
		cement := store.SeedProduct("Cement M500", 45000, 1000)
		carts := NewCartService(store, nil)
		orders := NewOrderService(store, nil)
		for i := 0; i < n; i++ {
			customerID := int64(i%2 + 1)
			require.NoError(t, carts.AddItem(ctx, customerID, cement.ID, 1))
			_, err := orders.Checkout(ctx, customerID, testDelivery)
			require.NoError(t, err)
		}
	}

	t.Run("paginates with defaults", func(t *testing.T) {
		store := memory.NewStore()
		seed(t, store, 12)
		orders := NewOrderService(store, nil)

		details, page, err := orders.ListOrders(ctx, domain.OrderFilter{})
		require.NoError(t, err)
		assert.Len(t, details, 10)
		assert.Equal(t, int32(1), page.Current)
		assert.Equal(t, int32(2), page.Total)
		assert.Equal(t, int64(12), page.TotalItems)
		assert.Equal(t, int32(10), page.PerPage)

		details, page, err = orders.ListOrders(ctx, domain.OrderFilter{Page: 2})
		require.NoError(t, err)
		assert.Len(t, details, 2)
		assert.Equal(t, int32(2), page.Current)
	})

	t.Run("filters by customer", func(t *testing.T) {
		store := memory.NewStore()
		seed(t, store, 6)
		orders := NewOrderService(store, nil)

		customerID := int64(1)
		details, page, err := orders.ListOrders(ctx, domain.OrderFilter{CustomerID: &customerID})
		require.NoError(t, err)
		assert.Len(t, details, 3)
		assert.Equal(t, int64(3), page.TotalItems)
		for _, d := range details {
			assert.Equal(t, customerID, d.Order.CustomerID)
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		store := memory.NewStore()
		seed(t, store, 4)
		orders := NewOrderService(store, nil)

		all, _, err := orders.ListOrders(ctx, domain.OrderFilter{})
		require.NoError(t, err)
		_, err = orders.AdvanceStatus(ctx, all[0].Order.ID, domain.StatusFulfilled)
		require.NoError(t, err)

		status := domain.StatusFulfilled
		details, page, err := orders.ListOrders(ctx, domain.OrderFilter{Status: &status})
		require.NoError(t, err)
		assert.Len(t, details, 1)
		assert.Equal(t, int64(1), page.TotalItems)
	})

	t.Run("caps limit", func(t *testing.T) {
		store := memory.NewStore()
		seed(t, store, 2)
		orders := NewOrderService(store, nil)

		_, page, err := orders.ListOrders(ctx, domain.OrderFilter{Limit: 10000})
		require.NoError(t, err)
		assert.Equal(t, int32(100), page.PerPage)
	})
}

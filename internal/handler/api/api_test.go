package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stroymart/backend/internal/handler/api"
	"github.com/stroymart/backend/internal/memory"
	"github.com/stroymart/backend/internal/middleware"
	"github.com/stroymart/backend/internal/router"
	"github.com/stroymart/backend/internal/routes"
	"github.com/stroymart/backend/internal/service"
)

func newTestServer(t *testing.T) (*router.Router, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := router.New(middleware.Identity)
	routes.RegisterAPIRoutes(r, routes.APIDeps{
		CartHandler:  api.NewCartHandler(service.NewCartService(store, logger), logger),
		OrderHandler: api.NewOrderHandler(service.NewOrderService(store, logger), logger),
	})
	return r, store
}

func doJSON(t *testing.T, r http.Handler, method, path string, headers map[string]string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func asCustomer(id int64) map[string]string {
	return map[string]string{middleware.CustomerIDHeader: fmt.Sprintf("%d", id)}
}

func asEmployee() map[string]string {
	return map[string]string{middleware.RoleHeader: middleware.RoleEmployee}
}

var delivery = map[string]string{
	"deliveryAddress": "12 Stroiteley st.",
	"deliveryPhone":   "+7 900 000-00-00",
	"deliveryDate":    "2026-09-15",
	"deliveryTime":    "10:00-14:00",
}

func TestCartEndpoints(t *testing.T) {
	t.Run("full cart flow", func(t *testing.T) {
		r, store := newTestServer(t)
		p := store.SeedProduct("Cement M500", 45000, 100)

		// Empty cart first
		w := doJSON(t, r, http.MethodGet, "/api/cart", asCustomer(1), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var cart struct {
			Items      []json.RawMessage `json:"items"`
			TotalCents int64             `json:"totalCents"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
		assert.Empty(t, cart.Items)

		// Add two units, then one more merged
		w = doJSON(t, r, http.MethodPost, "/api/cart/items", asCustomer(1),
			map[string]any{"productId": p.ID, "quantity": 2})
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, r, http.MethodPost, "/api/cart/items", asCustomer(1),
			map[string]any{"productId": p.ID})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, http.MethodGet, "/api/cart", asCustomer(1), nil)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
		require.Len(t, cart.Items, 1)
		assert.Equal(t, int64(3*45000), cart.TotalCents)

		// Remove the line
		w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", p.ID), asCustomer(1), nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("insufficient stock returns 409 with availability", func(t *testing.T) {
		r, store := newTestServer(t)
		p := store.SeedProduct("Floor tile", 89000, 2)

		w := doJSON(t, r, http.MethodPost, "/api/cart/items", asCustomer(1),
			map[string]any{"productId": p.ID, "quantity": 5})
		require.Equal(t, http.StatusConflict, w.Code)

		var resp struct {
			Error     string `json:"error"`
			Available int32  `json:"available"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int32(2), resp.Available)
	})

	t.Run("requires a customer identity", func(t *testing.T) {
		r, _ := newTestServer(t)
		w := doJSON(t, r, http.MethodGet, "/api/cart", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOrderEndpoints(t *testing.T) {
	checkout := func(t *testing.T, r http.Handler, customerID int64) int64 {
		t.Helper()
		w := doJSON(t, r, http.MethodPost, "/api/orders", asCustomer(customerID), delivery)
		require.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			OrderID int64 `json:"orderId"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.OrderID
	}

	t.Run("checkout and fetch own order", func(t *testing.T) {
		r, store := newTestServer(t)
		p := store.SeedProduct("Cement M500", 45000, 100)

		w := doJSON(t, r, http.MethodPost, "/api/cart/items", asCustomer(1),
			map[string]any{"productId": p.ID, "quantity": 2})
		require.Equal(t, http.StatusOK, w.Code)

		orderID := checkout(t, r, 1)

		w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/orders/my/%d", orderID), asCustomer(1), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var order struct {
			Status     string `json:"status"`
			TotalCents int64  `json:"totalCents"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
		assert.Equal(t, "new", order.Status)
		assert.Equal(t, int64(90000), order.TotalCents)

		// Another customer cannot see it
		w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/orders/my/%d", orderID), asCustomer(2), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("checkout with empty cart returns 400", func(t *testing.T) {
		r, store := newTestServer(t)
		p := store.SeedProduct("Cement M500", 45000, 100)
		doJSON(t, r, http.MethodPost, "/api/cart/items", asCustomer(1),
			map[string]any{"productId": p.ID})
		doJSON(t, r, http.MethodDelete, "/api/cart", asCustomer(1), nil)

		w := doJSON(t, r, http.MethodPost, "/api/orders", asCustomer(1), delivery)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("checkout with no cart returns 404", func(t *testing.T) {
		r, _ := newTestServer(t)
		w := doJSON(t, r, http.MethodPost, "/api/orders", asCustomer(1), delivery)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("checkout without delivery fields returns 400", func(t *testing.T) {
		r, store := newTestServer(t)
		p := store.SeedProduct("Cement M500", 45000, 100)
		doJSON(t, r, http.MethodPost, "/api/cart/items", asCustomer(1),
			map[string]any{"productId": p.ID})

		w := doJSON(t, r, http.MethodPost, "/api/orders", asCustomer(1),
			map[string]string{"deliveryAddress": "12 Stroiteley st."})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cancel own order", func(t *testing.T) {
		r, store := newTestServer(t)
		p := store.SeedProduct("Cement M500", 45000, 100)
		doJSON(t, r, http.MethodPost, "/api/cart/items", asCustomer(1),
			map[string]any{"productId": p.ID, "quantity": 4})
		orderID := checkout(t, r, 1)

		w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/orders/my/%d/cancel", orderID), asCustomer(1), nil)
		require.Equal(t, http.StatusOK, w.Code)

		got, err := store.GetProduct(t.Context(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(100), got.Quantity)
	})

	t.Run("employee listing and status update", func(t *testing.T) {
		r, store := newTestServer(t)
		p := store.SeedProduct("Cement M500", 45000, 100)
		doJSON(t, r, http.MethodPost, "/api/cart/items", asCustomer(1),
			map[string]any{"productId": p.ID})
		orderID := checkout(t, r, 1)

		// Customers are kept out of management routes
		w := doJSON(t, r, http.MethodGet, "/api/orders", asCustomer(1), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, r, http.MethodGet, "/api/orders?status=new", asEmployee(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list struct {
			Orders []json.RawMessage `json:"orders"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list.Orders, 1)

		w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", orderID), asEmployee(),
			map[string]string{"status": "processing"})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", orderID), asEmployee(),
			map[string]string{"status": "shipped"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

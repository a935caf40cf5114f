package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stroymart/backend/internal/domain"
	"github.com/stroymart/backend/internal/middleware"
)

// OrderHandler exposes checkout and the order lifecycle over JSON
type OrderHandler struct {
	orders domain.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders domain.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{orders: orders, logger: logger}
}

type orderLineResponse struct {
	ProductID      int64  `json:"productId"`
	ProductName    string `json:"productName"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int32  `json:"quantity"`
}

type orderResponse struct {
	ID         int64               `json:"id"`
	CustomerID int64               `json:"customerId"`
	Status     string              `json:"status"`
	TotalCents int64               `json:"totalCents"`
	Delivery   domain.DeliveryInfo `json:"delivery"`
	CreatedAt  time.Time           `json:"createdAt"`
	Items      []orderLineResponse `json:"items,omitempty"`
}

type pageResponse struct {
	Current    int32 `json:"current"`
	Total      int32 `json:"total"`
	TotalItems int64 `json:"totalItems"`
	PerPage    int32 `json:"perPage"`
}

func toOrderResponse(d domain.OrderDetail) orderResponse {
	resp := orderResponse{
		ID:         d.Order.ID,
		CustomerID: d.Order.CustomerID,
		Status:     string(d.Order.Status),
		TotalCents: d.Order.TotalCents,
		Delivery:   d.Order.Delivery,
		CreatedAt:  d.Order.CreatedAt,
		Items:      make([]orderLineResponse, len(d.Lines)),
	}
	for i, ln := range d.Lines {
		resp.Items[i] = orderLineResponse{
			ProductID:      ln.ProductID,
			ProductName:    ln.ProductName,
			UnitPriceCents: ln.UnitPriceCents,
			Quantity:       ln.Quantity,
		}
	}
	return resp
}

// Checkout handles POST /api/orders
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID, _ := middleware.CustomerID(r.Context())

	var delivery domain.DeliveryInfo
	if err := decodeJSON(r, &delivery); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	detail, err := h.orders.Checkout(r.Context(), customerID, delivery)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created",
		"orderId": detail.Order.ID,
		"order":   toOrderResponse(*detail),
	})
}

// ListMine handles GET /api/orders/my
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	customerID, _ := middleware.CustomerID(r.Context())

	filter := domain.OrderFilter{CustomerID: &customerID}
	filter.Page, filter.Limit = parsePagination(r)

	h.list(w, r, filter)
}

// List handles GET /api/orders with optional status and clientId filters
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.OrderFilter
	filter.Page, filter.Limit = parsePagination(r)

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			respondError(w, h.logger, r, err)
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("clientId"); raw != "" {
		clientID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || clientID <= 0 {
			respondError(w, h.logger, r, domain.Invalid("order.list", "invalid clientId"))
			return
		}
		filter.CustomerID = &clientID
	}

	h.list(w, r, filter)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, filter domain.OrderFilter) {
	details, page, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	orders := make([]orderResponse, len(details))
	for i, d := range details {
		orders[i] = toOrderResponse(d)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"pagination": pageResponse{
			Current:    page.Current,
			Total:      page.Total,
			TotalItems: page.TotalItems,
			PerPage:    page.PerPage,
		},
	})
}

// GetMine handles GET /api/orders/my/{orderID}
func (h *OrderHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	customerID, _ := middleware.CustomerID(r.Context())

	orderID, ok := parseOrderID(w, h.logger, r)
	if !ok {
		return
	}

	detail, err := h.orders.GetOrder(r.Context(), orderID, customerID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(*detail))
}

// Get handles GET /api/orders/{orderID} for employees
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, h.logger, r)
	if !ok {
		return
	}

	detail, err := h.orders.GetOrderAny(r.Context(), orderID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(*detail))
}

// CancelMine handles PUT /api/orders/my/{orderID}/cancel
func (h *OrderHandler) CancelMine(w http.ResponseWriter, r *http.Request) {
	customerID, _ := middleware.CustomerID(r.Context())

	orderID, ok := parseOrderID(w, h.logger, r)
	if !ok {
		return
	}

	if err := h.orders.Cancel(r.Context(), orderID, customerID); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order cancelled"})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/orders/{orderID}/status for employees
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, h.logger, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	order, err := h.orders.AdvanceStatus(r.Context(), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Order status updated",
		"order":   toOrderResponse(domain.OrderDetail{Order: *order}),
	})
}

func parseOrderID(w http.ResponseWriter, logger *slog.Logger, r *http.Request) (int64, bool) {
	orderID, err := strconv.ParseInt(r.PathValue("orderID"), 10, 64)
	if err != nil || orderID <= 0 {
		respondError(w, logger, r, domain.Invalid("order.get", "invalid order id"))
		return 0, false
	}
	return orderID, true
}

func parsePagination(r *http.Request) (page, limit int32) {
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 {
			page = int32(v)
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 {
			limit = int32(v)
		}
	}
	return page, limit
}

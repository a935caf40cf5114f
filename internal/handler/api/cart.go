package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/stroymart/backend/internal/domain"
	"github.com/stroymart/backend/internal/middleware"
)

// CartHandler exposes the customer's cart over JSON
type CartHandler struct {
	carts  domain.CartService
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts domain.CartService, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{carts: carts, logger: logger}
}

type cartItemResponse struct {
	ProductID  int64  `json:"productId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int32  `json:"quantity"`
	LineCents  int64  `json:"lineCents"`
}

type cartResponse struct {
	Items      []cartItemResponse `json:"items"`
	TotalItems int32              `json:"totalItems"`
	TotalCents int64              `json:"totalCents"`
}

// Get handles GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, _ := middleware.CustomerID(r.Context())

	summary, err := h.carts.Summary(r.Context(), customerID)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	resp := cartResponse{
		Items:      make([]cartItemResponse, len(summary.Items)),
		TotalItems: summary.TotalItems,
		TotalCents: summary.TotalCents,
	}
	for i, it := range summary.Items {
		resp.Items[i] = cartItemResponse{
			ProductID:  it.ProductID,
			Name:       it.Name,
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
			LineCents:  it.LineCents,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customerID, _ := middleware.CustomerID(r.Context())

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	if req.ProductID <= 0 {
		respondError(w, h.logger, r, domain.Invalid("cart.add", "productId is required"))
		return
	}
	// Omitted quantity means one unit
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.carts.AddItem(r.Context(), customerID, req.ProductID, req.Quantity); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item added to cart"})
}

// RemoveItem handles DELETE /api/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customerID, _ := middleware.CustomerID(r.Context())

	productID, err := strconv.ParseInt(r.PathValue("productID"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, h.logger, r, domain.Invalid("cart.remove", "invalid product id"))
		return
	}

	if err := h.carts.RemoveItem(r.Context(), customerID, productID); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	customerID, _ := middleware.CustomerID(r.Context())

	if err := h.carts.Clear(r.Context(), customerID); err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

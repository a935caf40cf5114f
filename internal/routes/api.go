package routes

import (
	"github.com/stroymart/backend/internal/middleware"
	"github.com/stroymart/backend/internal/router"
)

// RegisterAPIRoutes wires the cart and order endpoints. Customer routes
// require an injected customer id; management routes require the
// employee role. Route order matters only for readability; the mux
// matches literal segments like "my" before the {orderID} wildcard.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	// Cart (customer)
	customer := r.Group(middleware.RequireCustomer)
	customer.Get("/api/cart", deps.CartHandler.Get)
	customer.Post("/api/cart/items", deps.CartHandler.AddItem)
	customer.Delete("/api/cart/items/{productID}", deps.CartHandler.RemoveItem)
	customer.Delete("/api/cart", deps.CartHandler.Clear)

	// Orders (customer)
	customer.Post("/api/orders", deps.OrderHandler.Checkout)
	customer.Get("/api/orders/my", deps.OrderHandler.ListMine)
	customer.Get("/api/orders/my/{orderID}", deps.OrderHandler.GetMine)
	customer.Put("/api/orders/my/{orderID}/cancel", deps.OrderHandler.CancelMine)

	// Orders (employee)
	employee := r.Group(middleware.RequireEmployee)
	employee.Get("/api/orders", deps.OrderHandler.List)
	employee.Get("/api/orders/{orderID}", deps.OrderHandler.Get)
	employee.Put("/api/orders/{orderID}/status", deps.OrderHandler.UpdateStatus)
}

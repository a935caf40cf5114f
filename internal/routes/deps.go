package routes

import (
	"github.com/stroymart/backend/internal/handler/api"
)

// APIDeps contains dependencies for the JSON API routes
type APIDeps struct {
	CartHandler  *api.CartHandler
	OrderHandler *api.OrderHandler
}

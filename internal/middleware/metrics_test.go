package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/api/cart", "/api/cart"},
		{"/api/cart/items/17", "/api/cart/items/:id"},
		{"/api/orders", "/api/orders"},
		{"/api/orders/123", "/api/orders/:id"},
		{"/api/orders/123/status", "/api/orders/:id/status"},
		{"/api/orders/my", "/api/orders/my"},
		{"/api/orders/my/123", "/api/orders/my/:id"},
		{"/api/orders/my/123/cancel", "/api/orders/my/:id/cancel"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.path), "path %s", tt.path)
	}
}

package middleware

import (
	"context"
	"net/http"
	"strconv"
)

// contextKey is a private type for context keys defined in this package
type contextKey string

const (
	// CustomerIDHeader carries the authenticated customer's numeric id,
	// set by the gateway in front of this service.
	CustomerIDHeader = "X-Customer-ID"

	// RoleHeader carries the caller's role ("customer" or "employee").
	RoleHeader = "X-Customer-Role"

	// RoleEmployee marks staff callers allowed on management routes.
	RoleEmployee = "employee"

	customerIDContextKey contextKey = "customer_id"
	roleContextKey       contextKey = "role"
)

// Identity reads the caller's identity headers into the request context.
// Routes that need an identity enforce it with RequireCustomer or
// RequireEmployee; this middleware only records what was presented.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if raw := r.Header.Get(CustomerIDHeader); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				ctx = context.WithValue(ctx, customerIDContextKey, id)
			}
		}
		if role := r.Header.Get(RoleHeader); role != "" {
			ctx = context.WithValue(ctx, roleContextKey, role)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CustomerID retrieves the caller's customer id from the context
func CustomerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(customerIDContextKey).(int64)
	return id, ok
}

// Role retrieves the caller's role from the context
func Role(ctx context.Context) string {
	if role, ok := ctx.Value(roleContextKey).(string); ok {
		return role
	}
	return ""
}

// RequireCustomer rejects requests that did not present a customer id
func RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CustomerID(r.Context()); !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireEmployee rejects requests whose role is not employee
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Role(r.Context()) != RoleEmployee {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

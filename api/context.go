package api

import (
	"context"
	"time"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

type contextKey int

const addressKey contextKey = iota

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

// WithAuthenticatedAddress returns a copy of ctx carrying the caller's address.
func WithAuthenticatedAddress(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, addressKey, address)
}

// AuthenticatedAddress returns the address set by the authentication
// middleware, or "" for anonymous requests.
func AuthenticatedAddress(ctx context.Context) string {
	address, _ := ctx.Value(addressKey).(string)
	return address
}

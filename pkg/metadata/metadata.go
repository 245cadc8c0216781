// Package metadata carries caller identity and mutation tokens between the
// gateway's inbound requests and its downstream calls.
package metadata

import (
	"context"
	"strings"
)

// Header names shared by the gateway and the downstream services.
const (
	HeaderUserName       = "X-User-Name"
	HeaderIdempotencyKey = "X-Idempotency-Key"
	HeaderRequestID      = "X-Request-ID"
)

type usernameKey struct{}

type idempotencyKey struct{}

// WithUsername returns a copy of ctx carrying the caller's username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey{}, strings.TrimSpace(username))
}

// Username returns the caller's username, or "" when absent.
func Username(ctx context.Context) string {
	if v, ok := ctx.Value(usernameKey{}).(string); ok {
		return v
	}
	return ""
}

// WithIdempotencyKey attaches a mutation token to ctx. Downstream clients
// forward it so that a redelivered update is applied at most once.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKey returns the mutation token stored in ctx.
func IdempotencyKey(ctx context.Context) string {
	if v, ok := ctx.Value(idempotencyKey{}).(string); ok {
		return v
	}
	return ""
}

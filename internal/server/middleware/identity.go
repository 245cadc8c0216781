// Package middleware provides the gateway's HTTP middleware.
package middleware

import (
	"context"

	"HotelGateway/pkg/metadata"

	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

// Identity copies the caller identity from the X-User-Name header into the
// request context. Requests without it pass through; the usecases reject them.
func Identity() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if tr, ok := transport.FromServerContext(ctx); ok {
				if username := tr.RequestHeader().Get(metadata.HeaderUserName); username != "" {
					ctx = metadata.WithUsername(ctx, username)
				}
			}
			return handler(ctx, req)
		}
	}
}

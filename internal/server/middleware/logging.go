package middleware

import (
	"context"
	"strings"
	"time"

	pkglog "HotelGateway/pkg/log"
	"HotelGateway/pkg/metadata"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// SlowRequestThreshold is the duration above which a request is logged as slow.
const SlowRequestThreshold = 3 * time.Second

// Logging returns a middleware that logs every request with its status and
// duration. It assigns a request ID, taken from X-Request-ID when present.
//
// Example output:
//
//	🟢 POST /api/v1/reservations - 200 (542ms) | RequestID: mgrn0zfqda
//	🐌 [mgrn0zfqda] Slow request detected | POST /api/v1/reservations | 3438ms
func Logging(logger *pkglog.LogHelper) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			startTime := time.Now()

			var (
				method    string
				path      string
				ip        string
				userAgent string
				requestID string
			)

			if tr, ok := transport.FromServerContext(ctx); ok {
				method = tr.Operation()
				path = tr.Operation()
				requestID = tr.RequestHeader().Get(metadata.HeaderRequestID)

				if ht, ok := tr.(http.Transporter); ok {
					httpReq := ht.Request()
					method = httpReq.Method
					path = httpReq.URL.Path
					if httpReq.URL.RawQuery != "" {
						path = path + "?" + httpReq.URL.RawQuery
					}
					ip = extractClientIP(httpReq)
					userAgent = httpReq.Header.Get("User-Agent")
				}
			}
			if requestID == "" {
				requestID = pkglog.GenerateRequestID()
			}

			ctx = pkglog.WithRequestContext(ctx, requestID, metadata.Username(ctx))
			if tr, ok := transport.FromServerContext(ctx); ok {
				tr.ReplyHeader().Set(metadata.HeaderRequestID, requestID)
			}

			reply, err := handler(ctx, req)

			duration := time.Since(startTime).Milliseconds()
			logger.RequestWithContext(ctx, method, path, extractHTTPStatus(err), duration,
				"ip", ip,
				"user_agent", userAgent,
			)
			if duration > SlowRequestThreshold.Milliseconds() {
				logger.SlowRequest(ctx, method, path, duration, SlowRequestThreshold.Milliseconds())
			}

			return reply, err
		}
	}
}

// extractClientIP prefers X-Real-IP, then the first X-Forwarded-For entry,
// then RemoteAddr.
func extractClientIP(req *http.Request) string {
	if ip := req.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	return req.RemoteAddr
}

func extractHTTPStatus(err error) int {
	if err == nil {
		return 200
	}
	return int(errors.FromError(err).Code)
}

package log

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// LogHelper extends the Kratos log.Helper with typed helpers. Each helper
// tags the line with a "type" field that the console encoder renders.
type LogHelper struct {
	*log.Helper
}

// NewLogHelper creates a LogHelper.
func NewLogHelper(logger log.Logger) *LogHelper {
	return &LogHelper{
		Helper: log.NewHelper(logger),
	}
}

func withType(msg, logType string, kvs []interface{}) []interface{} {
	all := make([]interface{}, 0, len(kvs)+4)
	all = append(all, "msg", msg)
	all = append(all, kvs...)
	return append(all, "type", logType)
}

// Request logs a completed HTTP request.
func (h *LogHelper) Request(method, url string, status int, durationMs int64, kvs ...interface{}) {
	msg := fmt.Sprintf("%s %s - %d (%dms)", method, url, status, durationMs)
	kvs = append(kvs,
		"method", method,
		"url", url,
		"status", status,
		"duration_ms", durationMs,
	)
	h.Infow(withType(msg, "request", kvs)...)
}

// RequestWithContext logs a completed HTTP request with the request id and
// username from ctx.
func (h *LogHelper) RequestWithContext(ctx context.Context, method, url string, status int, durationMs int64, kvs ...interface{}) {
	reqCtx := GetRequestContext(ctx)
	kvs = append(kvs, "request_id", reqCtx.RequestID)
	if reqCtx.Username != "" {
		kvs = append(kvs, "username", reqCtx.Username)
	}
	h.Request(method, url, status, durationMs, kvs...)
}

// SlowRequest warns about a request slower than threshold.
func (h *LogHelper) SlowRequest(ctx context.Context, method, url string, durationMs, thresholdMs int64) {
	msg := fmt.Sprintf("slow request %s %s took %s", method, url, formatDuration(durationMs))
	h.Warnw(withType(msg, "slow_request", []interface{}{
		"request_id", GetRequestID(ctx),
		"duration_ms", durationMs,
		"threshold_ms", thresholdMs,
	})...)
}

// Saga logs a saga step.
func (h *LogHelper) Saga(ctx context.Context, msg string, kvs ...interface{}) {
	kvs = append(kvs, "request_id", GetRequestID(ctx))
	h.Infow(withType(msg, "saga", kvs)...)
}

// SagaFailure logs a failed saga step.
func (h *LogHelper) SagaFailure(ctx context.Context, msg string, err error, kvs ...interface{}) {
	kvs = append(kvs, "request_id", GetRequestID(ctx), "error", err)
	h.Errorw(withType(msg, "saga", kvs)...)
}

// Breaker logs a circuit breaker transition.
func (h *LogHelper) Breaker(name, from, to string) {
	msg := fmt.Sprintf("breaker %s: %s -> %s", name, from, to)
	kvs := []interface{}{"breaker", name, "from", from, "to", to}
	if to == "blocking" {
		h.Warnw(withType(msg, "breaker", kvs)...)
		return
	}
	h.Infow(withType(msg, "breaker", kvs)...)
}

// Queue logs loyalty queue activity at debug level.
func (h *LogHelper) Queue(msg string, kvs ...interface{}) {
	h.Debugw(withType(msg, "queue", kvs)...)
}

// Incident logs a recorded consistency incident.
func (h *LogHelper) Incident(kind string, kvs ...interface{}) {
	kvs = append(kvs, "kind", kind)
	h.Warnw(withType("saga incident recorded", "incident", kvs)...)
}

// Startup logs a startup milestone.
func (h *LogHelper) Startup(msg string, kvs ...interface{}) {
	h.Infow(withType(msg, "startup", kvs)...)
}

// formatDuration renders milliseconds as 150ms or 2.5s.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000.0)
}

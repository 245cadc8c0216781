package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	pkglog "HotelGateway/pkg/log"
	"HotelGateway/pkg/metadata"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type headerCarrier http.Header

func (hc headerCarrier) Get(key string) string { return http.Header(hc).Get(key) }

func (hc headerCarrier) Set(key, value string) { http.Header(hc).Set(key, value) }

func (hc headerCarrier) Add(key, value string) { http.Header(hc).Add(key, value) }

func (hc headerCarrier) Keys() []string {
	keys := make([]string, 0, len(hc))
	for k := range hc {
		keys = append(keys, k)
	}
	return keys
}

func (hc headerCarrier) Values(key string) []string { return http.Header(hc).Values(key) }

type testTransport struct {
	reqHeader   headerCarrier
	replyHeader headerCarrier
}

func (tr *testTransport) Kind() transport.Kind            { return transport.KindHTTP }
func (tr *testTransport) Endpoint() string                { return "" }
func (tr *testTransport) Operation() string               { return "/gateway.v1.Gateway/Me" }
func (tr *testTransport) RequestHeader() transport.Header { return tr.reqHeader }
func (tr *testTransport) ReplyHeader() transport.Header   { return tr.replyHeader }

func newServerContext(headers map[string]string) (context.Context, *testTransport) {
	tr := &testTransport{reqHeader: headerCarrier{}, replyHeader: headerCarrier{}}
	for k, v := range headers {
		tr.reqHeader.Set(k, v)
	}
	return transport.NewServerContext(context.Background(), tr), tr
}

func TestIdentity(t *testing.T) {
	ctx, _ := newServerContext(map[string]string{metadata.HeaderUserName: "Test Max"})

	var got string
	_, err := Identity()(func(ctx context.Context, _ interface{}) (interface{}, error) {
		got = metadata.Username(ctx)
		return nil, nil
	})(ctx, nil)

	require.NoError(t, err)
	assert.Equal(t, "Test Max", got)
}

func TestIdentity_NoHeader(t *testing.T) {
	ctx, _ := newServerContext(nil)

	got := "unset"
	_, _ = Identity()(func(ctx context.Context, _ interface{}) (interface{}, error) {
		got = metadata.Username(ctx)
		return nil, nil
	})(ctx, nil)

	assert.Empty(t, got)
}

func TestLogging_PropagatesRequestID(t *testing.T) {
	ctx, tr := newServerContext(map[string]string{metadata.HeaderRequestID: "req-123"})
	logger := pkglog.NewLogHelper(log.DefaultLogger)

	var inner string
	reply, err := Logging(logger)(func(ctx context.Context, req interface{}) (interface{}, error) {
		inner = pkglog.GetRequestID(ctx)
		return "ok", nil
	})(ctx, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, "req-123", inner)
	assert.Equal(t, "req-123", tr.replyHeader.Get(metadata.HeaderRequestID))
}

func TestLogging_GeneratesRequestID(t *testing.T) {
	ctx, tr := newServerContext(nil)

	_, err := Logging(pkglog.NewLogHelper(log.DefaultLogger))(func(context.Context, interface{}) (interface{}, error) {
		return nil, kerrors.ServiceUnavailable("SERVICE_UNAVAILABLE", "Payment Service unavailable")
	})(ctx, nil)

	assert.Error(t, err)
	assert.Len(t, tr.replyHeader.Get(metadata.HeaderRequestID), 10)
}

func TestExtractHTTPStatus(t *testing.T) {
	assert.Equal(t, 200, extractHTTPStatus(nil))
	assert.Equal(t, 404, extractHTTPStatus(kerrors.NotFound("X", "y")))
	assert.Equal(t, 503, extractHTTPStatus(kerrors.ServiceUnavailable("X", "y")))
	assert.Equal(t, 500, extractHTTPStatus(errors.New("boom")))
}

func TestExtractClientIP(t *testing.T) {
	req, err := http.NewRequest("GET", "/", nil)
	require.NoError(t, err)
	req.RemoteAddr = "10.0.0.9:5555"
	assert.Equal(t, "10.0.0.9:5555", extractClientIP(req))

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	assert.Equal(t, "1.2.3.4", extractClientIP(req))

	req.Header.Set("X-Real-IP", "9.9.9.9")
	assert.Equal(t, "9.9.9.9", extractClientIP(req))
}

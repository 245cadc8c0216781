package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"HotelGateway/internal/conf"
	"HotelGateway/internal/model"
	"HotelGateway/pkg/breaker"
	"HotelGateway/pkg/metadata"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

const (
	defaultDownstreamTimeout = 5 * time.Second
	maxErrorBody             = 512
)

// DownstreamClients holds one Kratos HTTP client per downstream service.
type DownstreamClients struct {
	Reservation *khttp.Client
	Payment     *khttp.Client
	Loyalty     *khttp.Client
}

// NewDownstreamClients dials nothing; Kratos HTTP clients connect lazily.
func NewDownstreamClients(c *conf.Downstream, logger log.Logger) (*DownstreamClients, func(), error) {
	if c == nil || c.Reservation == nil || c.Payment == nil || c.Loyalty == nil {
		return nil, nil, fmt.Errorf("downstream endpoints are required")
	}

	reservation, err := newClient(c.Reservation)
	if err != nil {
		return nil, nil, fmt.Errorf("reservation client: %w", err)
	}
	payment, err := newClient(c.Payment)
	if err != nil {
		_ = reservation.Close()
		return nil, nil, fmt.Errorf("payment client: %w", err)
	}
	loyalty, err := newClient(c.Loyalty)
	if err != nil {
		_ = reservation.Close()
		_ = payment.Close()
		return nil, nil, fmt.Errorf("loyalty client: %w", err)
	}

	helper := log.NewHelper(logger)
	cleanup := func() {
		helper.Info("closing downstream clients")
		_ = reservation.Close()
		_ = payment.Close()
		_ = loyalty.Close()
	}

	return &DownstreamClients{
		Reservation: reservation,
		Payment:     payment,
		Loyalty:     loyalty,
	}, cleanup, nil
}

func newClient(e *conf.Endpoint) (*khttp.Client, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultDownstreamTimeout
	}
	return khttp.NewClient(context.Background(),
		khttp.WithEndpoint(e.URL),
		khttp.WithTimeout(timeout),
		khttp.WithMiddleware(forwardHeaders()),
		khttp.WithErrorDecoder(decodeError),
		khttp.WithResponseDecoder(decodeResponse),
	)
}

// forwardHeaders copies the caller identity and mutation token from ctx to
// the outgoing request.
func forwardHeaders() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if tr, ok := transport.FromClientContext(ctx); ok {
				if username := metadata.Username(ctx); username != "" {
					tr.RequestHeader().Set(metadata.HeaderUserName, username)
				}
				if key := metadata.IdempotencyKey(ctx); key != "" {
					tr.RequestHeader().Set(metadata.HeaderIdempotencyKey, key)
				}
			}
			return handler(ctx, req)
		}
	}
}

// decodeError turns any non-2xx response into a Kratos error carrying the
// downstream status code.
func decodeError(_ context.Context, res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	return kerrors.New(res.StatusCode, "DOWNSTREAM_ERROR", strings.TrimSpace(string(body)))
}

// decodeResponse tolerates empty bodies and nil replies.
func decodeResponse(_ context.Context, res *http.Response, v interface{}) error {
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if v == nil || len(data) == 0 {
		return nil
	}
	return khttp.CodecForResponse(res).Unmarshal(data, v)
}

// downstream runs HTTP calls through the breaker named after the operation.
// A 404 counts as a successful call: the service answered.
type downstream struct {
	client   *khttp.Client
	breakers *breaker.Group
	metrics  *Metrics
}

func (d *downstream) call(ctx context.Context, op, method, path string, args, reply interface{}) error {
	notFound := false
	err := d.breakers.Get(op).Fire(ctx, func(ctx context.Context) error {
		err := d.client.Invoke(ctx, method, path, args, reply)
		if kerrors.IsNotFound(err) {
			notFound = true
			return nil
		}
		return err
	})
	d.metrics.ObserveCall(op, err)

	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if notFound {
		return fmt.Errorf("%s %s: %w", method, path, model.ErrNotFound)
	}
	return nil
}

package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"HotelGateway/internal/conf"
	"HotelGateway/internal/model"
	"HotelGateway/pkg/breaker"
	"HotelGateway/pkg/metadata"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	catalog  *CatalogRepo
	payment  *PaymentRepo
	loyalty  *LoyaltyRepo
	breakers *breaker.Group
	metrics  *Metrics
}

func newTestEnv(t *testing.T, reservation, payment, loyalty http.Handler) *testEnv {
	t.Helper()
	rs := httptest.NewServer(reservation)
	ps := httptest.NewServer(payment)
	ls := httptest.NewServer(loyalty)
	t.Cleanup(func() {
		rs.Close()
		ps.Close()
		ls.Close()
	})

	clients, cleanup, err := NewDownstreamClients(&conf.Downstream{
		Reservation: &conf.Endpoint{URL: rs.URL, Timeout: time.Second},
		Payment:     &conf.Endpoint{URL: ps.URL, Timeout: time.Second},
		Loyalty:     &conf.Endpoint{URL: ls.URL, Timeout: time.Second},
	}, log.DefaultLogger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	metrics := NewMetrics()
	breakers := NewBreakerGroup(&conf.Breaker{
		ProbeWindow:          10 * time.Second,
		BlockDuration:        5 * time.Second,
		FailureThreshold:     2,
		FailureRateThreshold: 50,
	}, metrics, NewNoopWebhookService(log.DefaultLogger), log.DefaultLogger)

	return &testEnv{
		catalog:  NewCatalogRepo(clients, breakers, metrics, NewHotelCache(&conf.HotelCache{Size: 8, TTL: time.Minute})),
		payment:  NewPaymentRepo(clients, breakers, metrics),
		loyalty:  NewLoyaltyRepo(clients, breakers, metrics),
		breakers: breakers,
		metrics:  metrics,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
}

func TestCatalogRepo_GetHotelCaches(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/hotels/h-1", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(w, http.StatusOK, model.Hotel{HotelUID: "h-1", Name: "Ararat Park Hyatt", Price: 100})
	})
	env := newTestEnv(t, mux, notFound(), notFound())
	ctx := context.Background()

	h, err := env.catalog.GetHotel(ctx, "h-1")
	require.NoError(t, err)
	assert.Equal(t, "Ararat Park Hyatt", h.Name)
	assert.Equal(t, float64(100), h.Price)

	_, err = env.catalog.GetHotel(ctx, "h-1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCatalogRepo_NotFoundIsBreakerSuccess(t *testing.T) {
	env := newTestEnv(t, notFound(), notFound(), notFound())

	for i := 0; i < 5; i++ {
		_, err := env.catalog.GetHotel(context.Background(), "missing")
		assert.ErrorIs(t, err, model.ErrNotFound)
	}
	assert.Equal(t, breaker.StateAllowing, env.breakers.Get(BreakerHotelsGet).State())
	assert.Equal(t, float64(5), testutil.ToFloat64(env.metrics.DownstreamCalls.WithLabelValues(BreakerHotelsGet, "success")))
}

func TestCatalogRepo_FailuresTripBreaker(t *testing.T) {
	var calls int32
	failing := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	env := newTestEnv(t, failing, notFound(), notFound())
	ctx := context.Background()

	_, err := env.catalog.ListHotels(ctx, 1, 10)
	require.Error(t, err)
	_, err = env.catalog.ListHotels(ctx, 1, 10)
	require.Error(t, err)
	assert.Equal(t, breaker.StateBlocking, env.breakers.Get(BreakerHotelsList).State())

	_, err = env.catalog.ListHotels(ctx, 1, 10)
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.DownstreamCalls.WithLabelValues(BreakerHotelsList, "rejected")))
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.BreakerState.WithLabelValues(BreakerHotelsList)))

	// Other operations keep their own breaker
	assert.Equal(t, breaker.StateAllowing, env.breakers.Get(BreakerHotelsGet).State())
}

func TestCatalogRepo_Reservations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/reservations", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Test Max", r.Header.Get(metadata.HeaderUserName))
		switch r.Method {
		case http.MethodPost:
			var in model.Reservation
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			writeJSON(w, http.StatusOK, in)
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []model.Reservation{{ReservationUID: "r-1", PaymentUID: "p-1"}})
		}
	})
	mux.HandleFunc("/reservations/r-1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, model.StatusCanceled, body["status"])
			writeJSON(w, http.StatusOK, model.Reservation{ReservationUID: "r-1", PaymentUID: "p-1", Status: model.StatusCanceled})
		case http.MethodGet:
			writeJSON(w, http.StatusOK, model.Reservation{ReservationUID: "r-1", Status: model.StatusPaid})
		}
	})
	env := newTestEnv(t, mux, notFound(), notFound())
	ctx := metadata.WithUsername(context.Background(), "Test Max")

	created, err := env.catalog.CreateReservation(ctx, &model.Reservation{ReservationUID: "r-1", HotelUID: "h-1", Status: model.StatusPaid})
	require.NoError(t, err)
	assert.Equal(t, "h-1", created.HotelUID)

	list, err := env.catalog.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p-1", list[0].PaymentUID)

	got, err := env.catalog.GetReservation(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, got.Status)

	canceled, err := env.catalog.SetReservationStatus(ctx, "r-1", model.StatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, "p-1", canceled.PaymentUID)

	_, err = env.catalog.SetReservationStatus(ctx, "r-2", model.StatusCanceled)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPaymentRepo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/payment", func(w http.ResponseWriter, r *http.Request) {
		var in model.Payment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusCreated, in)
	})
	mux.HandleFunc("/payment/p-1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, http.StatusOK, model.Payment{PaymentUID: "p-1", Status: model.StatusPaid, Price: 270})
	})
	env := newTestEnv(t, notFound(), mux, notFound())
	ctx := context.Background()

	p, err := env.payment.CreatePayment(ctx, &model.Payment{PaymentUID: "p-1", Status: model.StatusPaid, Price: 270})
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.PaymentUID)

	got, err := env.payment.GetPayment(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, float64(270), got.Price)

	assert.NoError(t, env.payment.SetPaymentStatus(ctx, "p-1", model.StatusCanceled))
}

func TestLoyaltyRepo(t *testing.T) {
	var seenKey atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/loyalty", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.Header.Get(metadata.HeaderUserName) == "newcomer" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, model.Loyalty{Status: model.LoyaltyGold, Discount: 10, ReservationCount: 25})
		case http.MethodPost:
			writeJSON(w, http.StatusCreated, model.Loyalty{Status: model.LoyaltyBronze, Discount: 5})
		case http.MethodPatch:
			assert.Equal(t, "Test Max", r.Header.Get(metadata.HeaderUserName))
			seenKey.Store(r.Header.Get(metadata.HeaderIdempotencyKey))
			w.WriteHeader(http.StatusOK)
		}
	})
	env := newTestEnv(t, notFound(), notFound(), mux)

	l, err := env.loyalty.GetLoyalty(metadata.WithUsername(context.Background(), "Test Max"))
	require.NoError(t, err)
	assert.Equal(t, model.LoyaltyGold, l.Status)

	ctx := metadata.WithUsername(context.Background(), "newcomer")
	l, err = env.loyalty.GetLoyalty(ctx)
	require.NoError(t, err)
	assert.Nil(t, l, "absent loyalty is not an error")

	l, err = env.loyalty.CreateLoyalty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, l.Discount)

	err = env.loyalty.UpdateCounter(context.Background(), &model.LoyaltyJob{
		Token: "tok-1", Username: "Test Max", Direction: model.DirectionInc, Attempt: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", seenKey.Load())
}

func TestHotelCache(t *testing.T) {
	c := NewHotelCache(nil)
	c.Add(&model.Hotel{HotelUID: "h-1", Price: 10})
	c.Add(nil)
	c.Add(&model.Hotel{})

	h, ok := c.Get("h-1")
	require.True(t, ok)
	h.Price = 99

	again, _ := c.Get("h-1")
	assert.Equal(t, float64(10), again.Price, "cached entries are copies")
	assert.Equal(t, 1, c.Len())

	c.Purge()
	_, ok = c.Get("h-1")
	assert.False(t, ok)
}

package biz

import (
	"context"
	"sync"
	"time"

	"HotelGateway/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockCatalogRepo is a mock implementation of CatalogRepo for testing.
type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) ListHotels(ctx context.Context, page, size int) (*model.HotelPage, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HotelPage), args.Error(1)
}

func (m *MockCatalogRepo) GetHotel(ctx context.Context, hotelUID string) (*model.Hotel, error) {
	args := m.Called(ctx, hotelUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Hotel), args.Error(1)
}

func (m *MockCatalogRepo) CreateReservation(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockCatalogRepo) ListReservations(ctx context.Context) ([]*model.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reservation), args.Error(1)
}

func (m *MockCatalogRepo) GetReservation(ctx context.Context, reservationUID string) (*model.Reservation, error) {
	args := m.Called(ctx, reservationUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockCatalogRepo) SetReservationStatus(ctx context.Context, reservationUID, status string) (*model.Reservation, error) {
	args := m.Called(ctx, reservationUID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

// MockPaymentRepo is a mock implementation of PaymentRepo for testing.
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) CreatePayment(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepo) GetPayment(ctx context.Context, paymentUID string) (*model.Payment, error) {
	args := m.Called(ctx, paymentUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepo) SetPaymentStatus(ctx context.Context, paymentUID, status string) error {
	args := m.Called(ctx, paymentUID, status)
	return args.Error(0)
}

// MockLoyaltyRepo is a mock implementation of LoyaltyRepo for testing.
type MockLoyaltyRepo struct {
	mock.Mock
}

func (m *MockLoyaltyRepo) GetLoyalty(ctx context.Context) (*model.Loyalty, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loyalty), args.Error(1)
}

func (m *MockLoyaltyRepo) CreateLoyalty(ctx context.Context) (*model.Loyalty, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loyalty), args.Error(1)
}

func (m *MockLoyaltyRepo) UpdateCounter(ctx context.Context, job *model.LoyaltyJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockLoyaltyQueue is a mock implementation of LoyaltyQueue for testing.
type MockLoyaltyQueue struct {
	mock.Mock
}

func (m *MockLoyaltyQueue) Push(ctx context.Context, job *model.LoyaltyJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockLoyaltyQueue) Pop(ctx context.Context, timeout time.Duration) (*model.LoyaltyJob, error) {
	args := m.Called(ctx, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoyaltyJob), args.Error(1)
}

func (m *MockLoyaltyQueue) Ack(ctx context.Context, job *model.LoyaltyJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockLoyaltyQueue) Retry(ctx context.Context, job, next *model.LoyaltyJob) error {
	args := m.Called(ctx, job, next)
	return args.Error(0)
}

func (m *MockLoyaltyQueue) Recover(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockLoyaltyQueue) Reap(ctx context.Context, lease time.Duration) (int, error) {
	args := m.Called(ctx, lease)
	return args.Int(0), args.Error(1)
}

func (m *MockLoyaltyQueue) Len(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// fakeWebhook records incident notifications.
type fakeWebhook struct {
	mu        sync.Mutex
	incidents []*model.Incident
}

func (f *fakeWebhook) NotifyCircuitBroken(context.Context, *model.CircuitBrokenEvent) error {
	return nil
}

func (f *fakeWebhook) NotifyCircuitRecovered(context.Context, *model.CircuitRecoveredEvent) error {
	return nil
}

func (f *fakeWebhook) NotifyIncident(_ context.Context, inc *model.Incident) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incidents = append(f.incidents, inc)
	return nil
}

func (f *fakeWebhook) notified() []*model.Incident {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.Incident(nil), f.incidents...)
}

// fakeIncidents records incidents in memory.
type fakeIncidents struct {
	mu        sync.Mutex
	incidents []*model.Incident
}

func (f *fakeIncidents) Record(_ context.Context, inc *model.Incident) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incidents = append(f.incidents, inc)
}

func (f *fakeIncidents) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.incidents))
	for _, inc := range f.incidents {
		out = append(out, inc.Kind)
	}
	return out
}

// fakeObserver counts queue outcomes.
type fakeObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
	depth    int64
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{outcomes: map[string]int{}}
}

func (f *fakeObserver) ObserveJob(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[outcome]++
}

func (f *fakeObserver) SetQueueDepth(n int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depth = n
}

func (f *fakeObserver) count(outcome string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcomes[outcome]
}

package billing_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ideavault/ideavault/pkg/billing"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	args := m.Called(ctx, email, userID)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) CreateSubscription(ctx context.Context, customerID, priceID string) (*billing.PendingSubscription, error) {
	args := m.Called(ctx, customerID, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PendingSubscription), args.Error(1)
}

func (m *mockGateway) CreateLifetimePayment(ctx context.Context, customerID, priceID string) (*billing.PendingPayment, error) {
	args := m.Called(ctx, customerID, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PendingPayment), args.Error(1)
}

func (m *mockGateway) ListActiveSubscriptions(ctx context.Context, customerID string) ([]billing.ProviderSubscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.ProviderSubscription), args.Error(1)
}

func (m *mockGateway) ListLifetimePayments(ctx context.Context, customerID string) ([]billing.ProviderPayment, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.ProviderPayment), args.Error(1)
}

func (m *mockGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *mockGateway) VerifyWebhook(payload []byte, signature string) (*billing.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Event), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) BillingProfile(ctx context.Context, userID uuid.UUID) (billing.BillingProfile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(billing.BillingProfile), args.Error(1)
}

func (m *mockStore) SetBillingCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	args := m.Called(ctx, userID, customerID)
	return args.Error(0)
}

func (m *mockStore) UpdateSubscription(ctx context.Context, userID uuid.UUID, snap billing.Snapshot) error {
	args := m.Called(ctx, userID, snap)
	return args.Error(0)
}

func (m *mockStore) UserIDByBillingCustomer(ctx context.Context, customerID string) (uuid.UUID, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// memoryDedup is an in-process EventDeduplicator for webhook tests.
type memoryDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemoryDedup() *memoryDedup {
	return &memoryDedup{seen: make(map[string]bool)}
}

func (d *memoryDedup) Seen(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[eventID] {
		return true, nil
	}
	d.seen[eventID] = true
	return false, nil
}

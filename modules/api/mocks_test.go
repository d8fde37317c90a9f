package api_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ideavault/ideavault/modules/api"
	"github.com/ideavault/ideavault/pkg/account"
	"github.com/ideavault/ideavault/pkg/billing"
	"github.com/ideavault/ideavault/pkg/catalog"
	"github.com/ideavault/ideavault/pkg/jwt"
)

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Register(ctx context.Context, email, password, name string) (*account.User, string, error) {
	args := m.Called(ctx, email, password, name)
	if u := args.Get(0); u != nil {
		return u.(*account.User), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*account.User, string, error) {
	args := m.Called(ctx, email, password)
	if u := args.Get(0); u != nil {
		return u.(*account.User), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *mockAuth) GoogleSignIn(ctx context.Context, idToken string) (*account.User, string, error) {
	args := m.Called(ctx, idToken)
	if u := args.Get(0); u != nil {
		return u.(*account.User), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *mockAuth) VerifyToken(token string) (*account.TokenClaims, error) {
	args := m.Called(token)
	if c := args.Get(0); c != nil {
		return c.(*account.TokenClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) UserByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*account.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) SaveIdea(ctx context.Context, userID uuid.UUID, ideaID string) error {
	return m.Called(ctx, userID, ideaID).Error(0)
}

func (m *mockUserStore) RemoveIdea(ctx context.Context, userID uuid.UUID, ideaID string) error {
	return m.Called(ctx, userID, ideaID).Error(0)
}

func (m *mockUserStore) SavedIdeaIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if ids := args.Get(0); ids != nil {
		return ids.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) IsSaved(ctx context.Context, userID uuid.UUID, ideaID string) (bool, error) {
	args := m.Called(ctx, userID, ideaID)
	return args.Bool(0), args.Error(1)
}

type mockPurchaser struct {
	mock.Mock
}

func (m *mockPurchaser) Purchase(ctx context.Context, userID uuid.UUID, planID string) (*billing.PurchaseIntent, error) {
	args := m.Called(ctx, userID, planID)
	if i := args.Get(0); i != nil {
		return i.(*billing.PurchaseIntent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPurchaser) Cancel(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Reconcile(ctx context.Context, userID uuid.UUID) (billing.Snapshot, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(billing.Snapshot), args.Error(1)
}

type mockWebhooks struct {
	mock.Mock
}

func (m *mockWebhooks) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

// testEnv bundles a wired router with its mocks.
type testEnv struct {
	auth       *mockAuth
	users      *mockUserStore
	purchases  *mockPurchaser
	reconciler *mockReconciler
	webhooks   *mockWebhooks
	router     http.Handler
}

func newTestEnv(t *testing.T, opts ...func(*api.Deps)) *testEnv {
	t.Helper()

	ideas, err := catalog.New([]catalog.Idea{
		{
			ID:              "washer_rental",
			Title:           "Washer & Dryer Rental",
			Description:     "Rent appliances to apartment dwellers.",
			Categories:      []string{"rental", "local"},
			InvestmentLevel: "low",
			Difficulty:      "low",
		},
		{
			ID:              "print_on_demand",
			Title:           "Print on Demand Store",
			Description:     "Sell custom merchandise online.",
			Categories:      []string{"online", "home-based"},
			InvestmentLevel: "low",
			Difficulty:      "low",
		},
	}, "")
	require.NoError(t, err)

	plans, err := billing.NewPlanCatalog(
		billing.Plan{ID: "premium_monthly", Name: "Premium Monthly", Kind: billing.PlanKindRecurring, PriceID: "price_monthly", Amount: 999, Currency: "usd", Interval: "month"},
	)
	require.NoError(t, err)

	env := &testEnv{
		auth:       new(mockAuth),
		users:      new(mockUserStore),
		purchases:  new(mockPurchaser),
		reconciler: new(mockReconciler),
		webhooks:   new(mockWebhooks),
	}
	deps := api.Deps{
		Auth:       env.auth,
		Users:      env.users,
		Ideas:      ideas,
		Plans:      plans,
		Purchases:  env.purchases,
		Reconciler: env.reconciler,
		Webhooks:   env.webhooks,
		Log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	env.router = api.NewServer(deps).Router()
	return env
}

// asUser stubs token verification so requests with "Bearer test-token"
// resolve to the given user ID.
func (e *testEnv) asUser(userID uuid.UUID) {
	e.auth.On("VerifyToken", "test-token").Return(&account.TokenClaims{
		StandardClaims: jwt.StandardClaims{Subject: userID.String()},
	}, nil)
}

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ideavault/ideavault/modules/api"
	"github.com/ideavault/ideavault/pkg/account"
	"github.com/ideavault/ideavault/pkg/billing"
	"github.com/ideavault/ideavault/pkg/httpserver"
)

func doRequest(t *testing.T, handler http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("register returns token and user", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		user := &account.User{ID: uuid.New(), Email: "jane@example.com"}
		env.auth.On("Register", mock.Anything, "jane@example.com", "password123", "Jane").
			Return(user, "issued-token", nil)

		rec := doRequest(t, env.router, http.MethodPost, "/api/auth/register",
			`{"email":"jane@example.com","password":"password123","name":"Jane"}`, "")

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			Token string        `json:"token"`
			User  *account.User `json:"user"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, "issued-token", resp.Token)
		assert.Equal(t, user.Email, resp.User.Email)
	})

	t.Run("register conflict", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.auth.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, "", account.ErrEmailTaken)

		rec := doRequest(t, env.router, http.MethodPost, "/api/auth/register",
			`{"email":"jane@example.com","password":"password123"}`, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("login failure is 401", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.auth.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, "", account.ErrInvalidCredentials)

		rec := doRequest(t, env.router, http.MethodPost, "/api/auth/login",
			`{"email":"jane@example.com","password":"wrong"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doRequest(t, env.router, http.MethodPost, "/api/auth/login", `{"email":`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("profile requires auth", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doRequest(t, env.router, http.MethodGet, "/api/auth/profile", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("profile returns current user", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		userID := uuid.New()
		env.asUser(userID)
		env.users.On("UserByID", mock.Anything, userID).
			Return(&account.User{ID: userID, Email: "jane@example.com"}, nil)

		rec := doRequest(t, env.router, http.MethodGet, "/api/auth/profile", "", "test-token")
		require.Equal(t, http.StatusOK, rec.Code)

		var user account.User
		decodeBody(t, rec, &user)
		assert.Equal(t, userID, user.ID)
	})
}

func TestIdeaEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("list with filters", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doRequest(t, env.router, http.MethodGet, "/api/ideas?categories=online&page=1&limit=12", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var page struct {
			Ideas []struct {
				ID string `json:"id"`
			} `json:"ideas"`
			Total int `json:"total"`
		}
		decodeBody(t, rec, &page)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, "print_on_demand", page.Ideas[0].ID)
	})

	t.Run("detail without auth omits full content", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doRequest(t, env.router, http.MethodGet, "/api/ideas/washer_rental", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "fullContent")
	})

	t.Run("detail unknown idea is 404", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doRequest(t, env.router, http.MethodGet, "/api/ideas/nope", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("categories and stats", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doRequest(t, env.router, http.MethodGet, "/api/categories", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, env.router, http.MethodGet, "/api/stats", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var stats struct {
			TotalIdeas int `json:"totalIdeas"`
		}
		decodeBody(t, rec, &stats)
		assert.Equal(t, 2, stats.TotalIdeas)
	})

	t.Run("plans listing", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doRequest(t, env.router, http.MethodGet, "/api/plans", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "premium_monthly")
	})
}

func TestSavedIdeaEndpoints(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("save validates idea exists", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.asUser(userID)

		rec := doRequest(t, env.router, http.MethodPost, "/api/saved-ideas",
			`{"ideaId":"nope"}`, "test-token")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		env.users.AssertNotCalled(t, "SaveIdea", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("save and duplicate", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.asUser(userID)
		env.users.On("SaveIdea", mock.Anything, userID, "washer_rental").
			Return(nil).Once()
		env.users.On("SaveIdea", mock.Anything, userID, "washer_rental").
			Return(account.ErrAlreadySaved).Once()

		rec := doRequest(t, env.router, http.MethodPost, "/api/saved-ideas",
			`{"ideaId":"washer_rental"}`, "test-token")
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = doRequest(t, env.router, http.MethodPost, "/api/saved-ideas",
			`{"ideaId":"washer_rental"}`, "test-token")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list resolves ideas and skips stale bookmarks", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.asUser(userID)
		env.users.On("SavedIdeaIDs", mock.Anything, userID).
			Return([]string{"washer_rental", "removed_idea"}, nil)

		rec := doRequest(t, env.router, http.MethodGet, "/api/saved-ideas", "", "test-token")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Ideas []struct {
				ID string `json:"id"`
			} `json:"ideas"`
		}
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Ideas, 1)
		assert.Equal(t, "washer_rental", resp.Ideas[0].ID)
	})

	t.Run("remove missing bookmark is 404", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.asUser(userID)
		env.users.On("RemoveIdea", mock.Anything, userID, "washer_rental").
			Return(account.ErrBookmarkNotFound)

		rec := doRequest(t, env.router, http.MethodDelete, "/api/saved-ideas/washer_rental", "", "test-token")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("check", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.asUser(userID)
		env.users.On("IsSaved", mock.Anything, userID, "washer_rental").Return(true, nil)

		rec := doRequest(t, env.router, http.MethodGet, "/api/saved-ideas/check/washer_rental", "", "test-token")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"saved":true}`, rec.Body.String())
	})
}

func TestBillingEndpoints(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("purchase returns confirmation secret", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.asUser(userID)
		env.purchases.On("Purchase", mock.Anything, userID, "premium_monthly").
			Return(&billing.PurchaseIntent{ConfirmationSecret: "seti_secret", PendingReference: "sub_1"}, nil)

		rec := doRequest(t, env.router, http.MethodPost, "/api/billing/purchase",
			`{"planId":"premium_monthly"}`, "test-token")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "seti_secret")
	})

	t.Run("purchase error mapping", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			err    error
			status int
		}{
			{billing.ErrUnknownPlan, http.StatusBadRequest},
			{billing.ErrProviderRejected, http.StatusPaymentRequired},
			{billing.ErrProviderUnavailable, http.StatusServiceUnavailable},
		}
		for _, tc := range cases {
			env := newTestEnv(t)
			env.asUser(userID)
			env.purchases.On("Purchase", mock.Anything, userID, mock.Anything).
				Return(nil, tc.err)

			rec := doRequest(t, env.router, http.MethodPost, "/api/billing/purchase",
				`{"planId":"premium_monthly"}`, "test-token")
			assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
		}
	})

	t.Run("subscription status reconciles", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.asUser(userID)
		renewal := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		env.reconciler.On("Reconcile", mock.Anything, userID).
			Return(billing.NewPremiumSnapshot("sub_1", renewal, false), nil)

		rec := doRequest(t, env.router, http.MethodGet, "/api/billing/subscription", "", "test-token")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status       string `json:"status"`
			IsSubscribed bool   `json:"isSubscribed"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, "premium", resp.Status)
		assert.True(t, resp.IsSubscribed)
	})

	t.Run("cancel without subscription is 404", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.asUser(userID)
		env.purchases.On("Cancel", mock.Anything, userID).
			Return(billing.ErrNoActiveSubscription)

		rec := doRequest(t, env.router, http.MethodPost, "/api/billing/cancel", "", "test-token")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestWebhookEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("acknowledges processed event", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.webhooks.On("HandleEvent", mock.Anything, []byte(`{"id":"evt_1"}`), "sig-header").
			Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/billing", strings.NewReader(`{"id":"evt_1"}`))
		req.Header.Set("Stripe-Signature", "sig-header")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	})

	t.Run("bad signature is 400", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.webhooks.On("HandleEvent", mock.Anything, mock.Anything, mock.Anything).
			Return(billing.ErrInvalidSignature)

		rec := doRequest(t, env.router, http.MethodPost, "/api/webhooks/billing", `{}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	t.Run("liveness by default", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := doRequest(t, env.router, http.MethodGet, "/healthz", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ALIVE", rec.Body.String())
	})

	t.Run("ready when dependencies respond", func(t *testing.T) {
		t.Parallel()

		check := func(context.Context) error { return nil }
		env := newTestEnv(t, func(d *api.Deps) {
			d.Health = httpserver.HealthCheckHandler(context.Background(),
				slog.New(slog.DiscardHandler), check, check)
		})
		rec := doRequest(t, env.router, http.MethodGet, "/healthz", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "READY", rec.Body.String())
	})

	t.Run("not ready when a dependency fails", func(t *testing.T) {
		t.Parallel()

		ok := func(context.Context) error { return nil }
		down := func(context.Context) error { return errors.New("connection refused") }
		env := newTestEnv(t, func(d *api.Deps) {
			d.Health = httpserver.HealthCheckHandler(context.Background(),
				slog.New(slog.DiscardHandler), ok, down)
		})
		rec := doRequest(t, env.router, http.MethodGet, "/healthz", "", "")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "NOT_READY", rec.Body.String())
	})
}

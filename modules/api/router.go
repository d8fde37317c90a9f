// Package api exposes the HTTP surface of the application: authentication,
// idea browsing, bookmarks, billing and the payment provider webhook. All
// responses are JSON.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ideavault/ideavault/pkg/account"
	"github.com/ideavault/ideavault/pkg/billing"
	"github.com/ideavault/ideavault/pkg/catalog"
	"github.com/ideavault/ideavault/pkg/httpserver"
)

// AuthService is the authentication surface the handlers need.
// *account.Service satisfies it.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*account.User, string, error)
	Login(ctx context.Context, email, password string) (*account.User, string, error)
	GoogleSignIn(ctx context.Context, idToken string) (*account.User, string, error)
	VerifyToken(token string) (*account.TokenClaims, error)
}

// UserStore is the persistence surface the handlers need. *account.Store
// satisfies it.
type UserStore interface {
	UserByID(ctx context.Context, id uuid.UUID) (*account.User, error)
	SaveIdea(ctx context.Context, userID uuid.UUID, ideaID string) error
	RemoveIdea(ctx context.Context, userID uuid.UUID, ideaID string) error
	SavedIdeaIDs(ctx context.Context, userID uuid.UUID) ([]string, error)
	IsSaved(ctx context.Context, userID uuid.UUID, ideaID string) (bool, error)
}

// Purchaser starts and cancels purchases. *billing.Orchestrator satisfies
// it.
type Purchaser interface {
	Purchase(ctx context.Context, userID uuid.UUID, planID string) (*billing.PurchaseIntent, error)
	Cancel(ctx context.Context, userID uuid.UUID) error
}

// SubscriptionReconciler re-derives a user's subscription state from the
// provider. *billing.Reconciler satisfies it.
type SubscriptionReconciler interface {
	Reconcile(ctx context.Context, userID uuid.UUID) (billing.Snapshot, error)
}

// WebhookProcessor handles raw provider webhook deliveries.
// *billing.WebhookHandler satisfies it.
type WebhookProcessor interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

// Deps bundles everything the API server needs.
type Deps struct {
	Auth       AuthService
	Users      UserStore
	Ideas      *catalog.Catalog
	Plans      *billing.PlanCatalog
	Purchases  Purchaser
	Reconciler SubscriptionReconciler
	Webhooks   WebhookProcessor
	Log        *slog.Logger

	// Health serves GET /healthz. Wire httpserver.HealthCheckHandler with
	// the dependency checks of the deployment; when nil the endpoint is a
	// liveness-only probe.
	Health http.HandlerFunc
}

// Server holds the wired dependencies behind the HTTP handlers.
type Server struct {
	auth       AuthService
	users      UserStore
	ideas      *catalog.Catalog
	plans      *billing.PlanCatalog
	purchases  Purchaser
	reconciler SubscriptionReconciler
	webhooks   WebhookProcessor
	log        *slog.Logger
	health     http.HandlerFunc
}

// NewServer builds the API server. All dependencies are required.
func NewServer(deps Deps) *Server {
	switch {
	case deps.Auth == nil:
		panic("api: nil auth service")
	case deps.Users == nil:
		panic("api: nil user store")
	case deps.Ideas == nil:
		panic("api: nil idea catalog")
	case deps.Plans == nil:
		panic("api: nil plan catalog")
	case deps.Purchases == nil:
		panic("api: nil purchaser")
	case deps.Reconciler == nil:
		panic("api: nil reconciler")
	case deps.Webhooks == nil:
		panic("api: nil webhook processor")
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Health == nil {
		deps.Health = httpserver.HealthCheckHandler(context.Background(), deps.Log)
	}

	return &Server{
		auth:       deps.Auth,
		users:      deps.Users,
		ideas:      deps.Ideas,
		plans:      deps.Plans,
		purchases:  deps.Purchases,
		reconciler: deps.Reconciler,
		webhooks:   deps.Webhooks,
		log:        deps.Log,
		health:     deps.Health,
	}
}

// Router mounts every API route under /api.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/google", s.handleGoogleSignIn)

		r.Get("/ideas", s.handleListIdeas)
		r.With(s.optionalAuth).Get("/ideas/{ideaID}", s.handleGetIdea)
		r.Get("/categories", s.handleCategories)
		r.Get("/stats", s.handleStats)
		r.Get("/plans", s.handleListPlans)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/profile", s.handleProfile)

			r.Post("/saved-ideas", s.handleSaveIdea)
			r.Delete("/saved-ideas/{ideaID}", s.handleRemoveIdea)
			r.Get("/saved-ideas", s.handleListSavedIdeas)
			r.Get("/saved-ideas/check/{ideaID}", s.handleCheckSavedIdea)

			r.Post("/billing/purchase", s.handlePurchase)
			r.Get("/billing/subscription", s.handleSubscriptionStatus)
			r.Post("/billing/cancel", s.handleCancelSubscription)
		})

		r.Post("/webhooks/billing", s.handleBillingWebhook)
	})

	r.Get("/healthz", s.health)

	return r
}

package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ideavault/ideavault/pkg/logger"
)

// SubscriptionPicker chooses the authoritative subscription when a customer
// has more than one active at the provider. The slice is never empty.
//
// Whether multiple concurrent subscriptions should instead be an error is a
// product decision; until it lands, the tie-break is explicit and pluggable.
type SubscriptionPicker func(subs []ProviderSubscription) ProviderSubscription

// PickFirst keeps provider ordering as the tie-break.
func PickFirst(subs []ProviderSubscription) ProviderSubscription {
	return subs[0]
}

// ReconcilerOption configures optional reconciler settings.
type ReconcilerOption func(*Reconciler)

// WithSubscriptionPicker overrides the multiple-subscription tie-break.
func WithSubscriptionPicker(pick SubscriptionPicker) ReconcilerOption {
	return func(r *Reconciler) {
		if pick != nil {
			r.pick = pick
		}
	}
}

// WithReconcilerLogger supplies the logger used for reconciliation events.
func WithReconcilerLogger(log *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if log != nil {
			r.log = log
		}
	}
}

// Reconciler derives the authoritative subscription snapshot for a user from
// live provider data and persists it. It is the only writer of snapshots.
//
// Reconciliation is state reconstruction, not event application: the full
// state is re-derived from provider truth on every call, which is what makes
// webhook replays and races naturally idempotent.
type Reconciler struct {
	gateway Gateway
	store   AccountStore
	pick    SubscriptionPicker
	log     *slog.Logger

	// one mutex per user ID, held across the provider query and the write
	// so a persisted snapshot always reflects a query issued after any
	// earlier completed write
	locks sync.Map
}

// NewReconciler creates a Reconciler.
// Panics on nil gateway or store to fail fast during initialization.
func NewReconciler(gateway Gateway, store AccountStore, opts ...ReconcilerOption) *Reconciler {
	if gateway == nil {
		panic("billing: Gateway is required")
	}
	if store == nil {
		panic("billing: AccountStore is required")
	}

	r := &Reconciler{
		gateway: gateway,
		store:   store,
		pick:    PickFirst,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile computes and persists the authoritative snapshot for the user.
//
// Users without a billing customer reference resolve to free without any
// provider call or write. Provider failures leave the stored snapshot
// untouched and surface as ErrProviderUnavailable or ErrProviderRejected.
func (r *Reconciler) Reconcile(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	started := time.Now()
	unlock := r.lockUser(userID)
	defer unlock()

	profile, err := r.store.BillingProfile(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load billing profile: %w", err)
	}

	// No purchase was ever attempted, so there is nothing to query.
	if profile.CustomerID == "" {
		return NewFreeSnapshot(""), nil
	}

	snap, err := r.deriveSnapshot(ctx, profile)
	if err != nil {
		return Snapshot{}, err
	}

	if err := r.store.UpdateSubscription(ctx, userID, snap); err != nil {
		return Snapshot{}, fmt.Errorf("persist subscription snapshot: %w", err)
	}

	if snap.Status != profile.Snapshot.Status {
		r.log.InfoContext(ctx, "subscription status changed",
			logger.UserID(userID),
			"from", profile.Snapshot.Status,
			"to", snap.Status,
			logger.Duration(time.Since(started)),
		)
	}

	return snap, nil
}

func (r *Reconciler) deriveSnapshot(ctx context.Context, profile BillingProfile) (Snapshot, error) {
	subs, err := r.gateway.ListActiveSubscriptions(ctx, profile.CustomerID)
	if err != nil {
		return Snapshot{}, err
	}

	if len(subs) > 0 {
		if len(subs) > 1 {
			r.log.WarnContext(ctx, "customer has multiple active subscriptions",
				logger.UserID(profile.UserID),
				"customer_id", profile.CustomerID,
				"count", len(subs),
			)
		}
		sub := r.pick(subs)
		return NewPremiumSnapshot(sub.ID, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd), nil
	}

	payments, err := r.gateway.ListLifetimePayments(ctx, profile.CustomerID)
	if err != nil {
		return Snapshot{}, err
	}
	if len(payments) > 0 {
		return NewLifetimeSnapshot(payments[0].ID), nil
	}

	// Nothing active at the provider: reset status and dates but keep the
	// historical subscription reference.
	return NewFreeSnapshot(profile.Snapshot.SubscriptionID), nil
}

// lockUser serializes reconciliation per user ID. Mutexes are retained for
// the process lifetime, which is bounded by the active user set.
func (r *Reconciler) lockUser(userID uuid.UUID) func() {
	v, _ := r.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

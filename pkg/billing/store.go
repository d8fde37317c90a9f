package billing

import (
	"context"

	"github.com/google/uuid"
)

// BillingProfile is the slice of a user record this package needs.
type BillingProfile struct {
	UserID     uuid.UUID
	Email      string
	CustomerID string // provider customer reference, empty until first purchase
	Snapshot   Snapshot
}

// AccountStore is the persistence contract consumed by the reconciler and
// orchestrator. Implementations hold no billing logic; the snapshot is
// written as one atomic row update keyed by user ID.
type AccountStore interface {
	// BillingProfile loads the billing view of a user.
	BillingProfile(ctx context.Context, userID uuid.UUID) (BillingProfile, error)

	// SetBillingCustomer persists the provider customer reference. Called
	// once, before any charge is created for the user.
	SetBillingCustomer(ctx context.Context, userID uuid.UUID, customerID string) error

	// UpdateSubscription atomically replaces the user's subscription
	// snapshot.
	UpdateSubscription(ctx context.Context, userID uuid.UUID, snap Snapshot) error

	// UserIDByBillingCustomer resolves a provider customer reference to the
	// local user. Returns ErrUnknownCustomer when no user matches.
	UserIDByBillingCustomer(ctx context.Context, customerID string) (uuid.UUID, error)
}

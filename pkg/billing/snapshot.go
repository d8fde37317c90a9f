package billing

import "time"

// Status represents the locally persisted subscription state of a user.
type Status string

const (
	StatusFree      Status = "free"
	StatusPremium   Status = "premium"
	StatusLifetime  Status = "lifetime"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
)

// Snapshot is the authoritative subscription state derived from the payment
// provider at reconciliation time. It is written as a whole, never field by
// field, so a persisted row always reflects a single provider query.
type Snapshot struct {
	Status         Status
	SubscriptionID string     // provider subscription or payment reference, kept for history
	RenewalDate    *time.Time // next billing date, recurring subscriptions only
	ExpiryDate     *time.Time // set when a recurring subscription ends at period end
}

// NewFreeSnapshot returns a free snapshot. The previous subscription ID is
// kept so a lapsed customer's history survives the reset.
func NewFreeSnapshot(prevSubscriptionID string) Snapshot {
	return Snapshot{
		Status:         StatusFree,
		SubscriptionID: prevSubscriptionID,
	}
}

// NewPremiumSnapshot builds the snapshot for an active recurring
// subscription. When the subscription is scheduled to end at the current
// period boundary, the expiry date equals the renewal date.
func NewPremiumSnapshot(subscriptionID string, periodEnd time.Time, cancelAtPeriodEnd bool) Snapshot {
	snap := Snapshot{
		Status:         StatusPremium,
		SubscriptionID: subscriptionID,
		RenewalDate:    &periodEnd,
	}
	if cancelAtPeriodEnd {
		end := periodEnd
		snap.ExpiryDate = &end
	}
	return snap
}

// NewLifetimeSnapshot builds the snapshot for a completed one-time lifetime
// payment. Lifetime entitlements never renew and never expire.
func NewLifetimeSnapshot(paymentID string) Snapshot {
	return Snapshot{
		Status:         StatusLifetime,
		SubscriptionID: paymentID,
	}
}

// IsSubscribed reports whether the snapshot grants access to paid content.
func (s Snapshot) IsSubscribed() bool {
	return s.Status == StatusPremium || s.Status == StatusLifetime
}

// Equal compares two snapshots by value, dereferencing the date pointers.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.Status == other.Status &&
		s.SubscriptionID == other.SubscriptionID &&
		equalTimePtr(s.RenewalDate, other.RenewalDate) &&
		equalTimePtr(s.ExpiryDate, other.ExpiryDate)
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

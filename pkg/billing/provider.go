package billing

import (
	"context"
	"time"
)

// Gateway is the minimal surface this package needs from the payment
// provider. Provider SDK types never cross this boundary: every response is
// mapped into the projection structs below at the gateway implementation.
type Gateway interface {
	// CreateCustomer registers a billing customer for the user and returns
	// the provider's customer reference.
	CreateCustomer(ctx context.Context, email string, userID string) (string, error)

	// CreateSubscription starts a recurring subscription in an incomplete
	// payment state. The returned confirmation secret lets the client
	// complete the payment authorization out-of-band.
	CreateSubscription(ctx context.Context, customerID, priceID string) (*PendingSubscription, error)

	// CreateLifetimePayment creates a pending one-time payment for a
	// lifetime plan plus its confirmation secret.
	CreateLifetimePayment(ctx context.Context, customerID, priceID string) (*PendingPayment, error)

	// ListActiveSubscriptions returns the customer's currently active
	// recurring subscriptions in provider order.
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]ProviderSubscription, error)

	// ListLifetimePayments returns the customer's succeeded one-time
	// payments that were tagged as lifetime purchases.
	ListLifetimePayments(ctx context.Context, customerID string) ([]ProviderPayment, error)

	// CancelSubscription schedules cancellation at the end of the current
	// billing period.
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// VerifyWebhook checks the signature of a raw webhook payload and
	// returns the normalized event. Returns ErrInvalidSignature when the
	// payload cannot be authenticated.
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}

// PendingSubscription is the client-actionable result of creating a
// recurring subscription that still awaits payment confirmation.
type PendingSubscription struct {
	SubscriptionID     string
	ConfirmationSecret string
}

// PendingPayment is the client-actionable result of creating a one-time
// payment that still awaits confirmation.
type PendingPayment struct {
	PaymentID          string
	ConfirmationSecret string
}

// ProviderSubscription is the reconciliation-time projection of a provider
// subscription object.
type ProviderSubscription struct {
	ID                string
	PriceID           string
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// ProviderPayment is the reconciliation-time projection of a succeeded
// one-time provider payment.
type ProviderPayment struct {
	ID        string
	PriceID   string
	CreatedAt time.Time
}

// EventKind is the normalized webhook event classification. Provider event
// names are mapped to these at the gateway boundary.
type EventKind string

const (
	EventSubscriptionCreated EventKind = "subscription_created"
	EventSubscriptionUpdated EventKind = "subscription_updated"
	EventSubscriptionDeleted EventKind = "subscription_deleted"
	EventPaymentSucceeded    EventKind = "payment_succeeded"
	EventPaymentFailed       EventKind = "payment_failed"

	// EventIgnored marks provider events we deliberately do not act on.
	// They are acknowledged so the provider stops redelivering them.
	EventIgnored EventKind = "ignored"
)

// Event is a verified, normalized webhook notification.
type Event struct {
	ID             string    // provider event ID, used for duplicate suppression
	Kind           EventKind // normalized classification
	ProviderType   string    // original provider event name
	CustomerID     string    // provider customer reference, may be empty
	SubscriptionID string    // provider subscription reference, may be empty
}

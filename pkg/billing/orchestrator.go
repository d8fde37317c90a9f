package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ideavault/ideavault/pkg/logger"
)

// PurchaseIntent is the minimum a client needs to complete payment
// confirmation. Raw provider objects and payment method data never appear
// here.
type PurchaseIntent struct {
	ConfirmationSecret string `json:"confirmationSecret"`
	PendingReference   string `json:"pendingReference"`
}

// Orchestrator drives the purchase and cancellation flows against the
// provider. It never writes subscription status: state becomes authoritative
// only through the Reconciler once the client confirms payment.
type Orchestrator struct {
	gateway Gateway
	store   AccountStore
	plans   *PlanCatalog
	log     *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
// Panics on nil dependencies to fail fast during initialization.
func NewOrchestrator(gateway Gateway, store AccountStore, plans *PlanCatalog, log *slog.Logger) *Orchestrator {
	if gateway == nil {
		panic("billing: Gateway is required")
	}
	if store == nil {
		panic("billing: AccountStore is required")
	}
	if plans == nil {
		panic("billing: PlanCatalog is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Orchestrator{
		gateway: gateway,
		store:   store,
		plans:   plans,
		log:     log,
	}
}

// Purchase creates a pending provider subscription or payment for the plan
// and returns the confirmation handle the client completes out-of-band.
func (o *Orchestrator) Purchase(ctx context.Context, userID uuid.UUID, planID string) (*PurchaseIntent, error) {
	plan, ok := o.plans.ByID(planID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
	}

	profile, err := o.store.BillingProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load billing profile: %w", err)
	}

	customerID, err := o.ensureCustomer(ctx, profile)
	if err != nil {
		return nil, err
	}

	switch plan.Kind {
	case PlanKindLifetime:
		payment, err := o.gateway.CreateLifetimePayment(ctx, customerID, plan.PriceID)
		if err != nil {
			return nil, err
		}
		o.log.InfoContext(ctx, "lifetime payment created",
			logger.UserID(userID), "plan_id", plan.ID, "payment_id", payment.PaymentID)
		return &PurchaseIntent{
			ConfirmationSecret: payment.ConfirmationSecret,
			PendingReference:   payment.PaymentID,
		}, nil

	default:
		sub, err := o.gateway.CreateSubscription(ctx, customerID, plan.PriceID)
		if err != nil {
			return nil, err
		}
		o.log.InfoContext(ctx, "subscription created",
			logger.UserID(userID), "plan_id", plan.ID, "subscription_id", sub.SubscriptionID)
		return &PurchaseIntent{
			ConfirmationSecret: sub.ConfirmationSecret,
			PendingReference:   sub.SubscriptionID,
		}, nil
	}
}

// Cancel schedules the user's active subscription for cancellation at the
// end of the current billing period. The local snapshot is not touched; the
// provider's subsequent webhook or the next status poll reconciles it.
func (o *Orchestrator) Cancel(ctx context.Context, userID uuid.UUID) error {
	profile, err := o.store.BillingProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("load billing profile: %w", err)
	}
	if profile.CustomerID == "" {
		return ErrNoActiveSubscription
	}

	subs, err := o.gateway.ListActiveSubscriptions(ctx, profile.CustomerID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return ErrNoActiveSubscription
	}

	if err := o.gateway.CancelSubscription(ctx, subs[0].ID); err != nil {
		return err
	}

	o.log.InfoContext(ctx, "subscription cancellation scheduled",
		logger.UserID(userID), "subscription_id", subs[0].ID)
	return nil
}

// ensureCustomer returns the existing provider customer reference or lazily
// creates one. The reference is persisted before any charge creation so a
// crash between the two calls cannot orphan provider-side charges.
func (o *Orchestrator) ensureCustomer(ctx context.Context, profile BillingProfile) (string, error) {
	if profile.CustomerID != "" {
		return profile.CustomerID, nil
	}

	customerID, err := o.gateway.CreateCustomer(ctx, profile.Email, profile.UserID.String())
	if err != nil {
		return "", err
	}
	if err := o.store.SetBillingCustomer(ctx, profile.UserID, customerID); err != nil {
		return "", fmt.Errorf("persist billing customer: %w", err)
	}

	o.log.InfoContext(ctx, "billing customer created",
		logger.UserID(profile.UserID), "customer_id", customerID)
	return customerID, nil
}

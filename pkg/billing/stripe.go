package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig holds configuration for the Stripe gateway.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
}

// StripeGateway implements Gateway using the Stripe API. The client is an
// explicit instance rather than the SDK's package-level key so tests and
// multi-account setups can construct their own.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway creates a Stripe-backed Gateway.
func NewStripeGateway(cfg StripeConfig) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
	}, nil
}

// CreateCustomer registers a Stripe customer carrying the local user ID in
// metadata so webhook events can be traced back during debugging.
func (g *StripeGateway) CreateCustomer(ctx context.Context, email string, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", mapStripeError("create customer", err)
	}
	return c.ID, nil
}

// CreateSubscription creates a subscription with incomplete payment behavior
// and a card setup intent whose client secret the caller completes
// out-of-band. The subscription activates once the first invoice is paid.
func (g *StripeGateway) CreateSubscription(ctx context.Context, customerID, priceID string) (*PendingSubscription, error) {
	subParams := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
		CollectionMethod: stripe.String("charge_automatically"),
	}
	subParams.Context = ctx

	sub, err := g.api.Subscriptions.New(subParams)
	if err != nil {
		return nil, mapStripeError("create subscription", err)
	}

	siParams := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Usage:              stripe.String("off_session"),
	}
	siParams.Context = ctx
	siParams.AddMetadata("subscription_id", sub.ID)

	si, err := g.api.SetupIntents.New(siParams)
	if err != nil {
		return nil, mapStripeError("create setup intent", err)
	}

	return &PendingSubscription{
		SubscriptionID:     sub.ID,
		ConfirmationSecret: si.ClientSecret,
	}, nil
}

// CreateLifetimePayment creates a one-time payment intent for the price,
// tagged as a lifetime purchase so reconciliation can find it later.
func (g *StripeGateway) CreateLifetimePayment(ctx context.Context, customerID, priceID string) (*PendingPayment, error) {
	price, err := g.api.Prices.Get(priceID, &stripe.PriceParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, mapStripeError("get price", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(price.UnitAmount),
		Currency: stripe.String(string(price.Currency)),
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.AddMetadata("type", "lifetime")
	params.AddMetadata("price_id", priceID)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, mapStripeError("create payment intent", err)
	}

	return &PendingPayment{
		PaymentID:          pi.ID,
		ConfirmationSecret: pi.ClientSecret,
	}, nil
}

// ListActiveSubscriptions returns active subscriptions in provider order.
func (g *StripeGateway) ListActiveSubscriptions(ctx context.Context, customerID string) ([]ProviderSubscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx

	var subs []ProviderSubscription
	iter := g.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, projectSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, mapStripeError("list subscriptions", err)
	}
	return subs, nil
}

// ListLifetimePayments returns succeeded one-time payments tagged lifetime.
func (g *StripeGateway) ListLifetimePayments(ctx context.Context, customerID string) ([]ProviderPayment, error) {
	params := &stripe.PaymentIntentListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var payments []ProviderPayment
	iter := g.api.PaymentIntents.List(params)
	for iter.Next() {
		pi := iter.PaymentIntent()
		if pi.Status != stripe.PaymentIntentStatusSucceeded || pi.Metadata["type"] != "lifetime" {
			continue
		}
		payments = append(payments, ProviderPayment{
			ID:        pi.ID,
			PriceID:   pi.Metadata["price_id"],
			CreatedAt: time.Unix(pi.Created, 0).UTC(),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, mapStripeError("list payments", err)
	}
	return payments, nil
}

// CancelSubscription schedules cancellation at the end of the current
// billing period rather than terminating immediately.
func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	if _, err := g.api.Subscriptions.Update(subscriptionID, params); err != nil {
		return mapStripeError("cancel subscription", err)
	}
	return nil
}

// VerifyWebhook authenticates the raw payload against the signing secret and
// normalizes the event. The raw body must be passed exactly as received. The
// endpoint's pinned API version may lag the SDK's, so version mismatch is not
// treated as a failure.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}

	event := &Event{
		ID:           stripeEvent.ID,
		Kind:         mapStripeEventKind(string(stripeEvent.Type)),
		ProviderType: string(stripeEvent.Type),
	}

	// All lifecycle objects Stripe sends here (subscription, invoice,
	// payment intent) carry the customer reference under the same keys.
	var obj struct {
		ID           string `json:"id"`
		Customer     string `json:"customer"`
		Subscription string `json:"subscription"`
	}
	if err := json.Unmarshal(stripeEvent.Data.Raw, &obj); err == nil {
		event.CustomerID = obj.Customer
		event.SubscriptionID = obj.Subscription
		if event.SubscriptionID == "" && event.Kind != EventPaymentSucceeded && event.Kind != EventPaymentFailed {
			event.SubscriptionID = obj.ID
		}
	}

	return event, nil
}

func projectSubscription(sub *stripe.Subscription) ProviderSubscription {
	out := ProviderSubscription{
		ID:                sub.ID,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		out.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
	}
	return out
}

func mapStripeEventKind(eventType string) EventKind {
	switch eventType {
	case "customer.subscription.created":
		return EventSubscriptionCreated
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionDeleted
	case "invoice.payment_succeeded", "payment_intent.succeeded":
		return EventPaymentSucceeded
	case "invoice.payment_failed":
		return EventPaymentFailed
	default:
		return EventIgnored
	}
}

// mapStripeError classifies SDK failures into the package taxonomy. Stripe
// 5xx responses and transport errors are retry-safe; everything else is a
// business rejection whose message is safe to surface.
func mapStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= 500 {
			return errors.Join(ErrProviderUnavailable, err)
		}
		return fmt.Errorf("%w: %s: %s", ErrProviderRejected, op, stripeErr.Msg)
	}
	return errors.Join(ErrProviderUnavailable, err)
}

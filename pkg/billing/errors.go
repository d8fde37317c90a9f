package billing

import "errors"

var (
	ErrProviderUnavailable = errors.New("billing: payment provider unavailable")
	ErrProviderRejected    = errors.New("billing: payment provider rejected the request")
	ErrInvalidSignature    = errors.New("billing: webhook signature verification failed")

	ErrUnknownPlan          = errors.New("billing: unknown plan")
	ErrUnknownCustomer      = errors.New("billing: no user for billing customer")
	ErrNoActiveSubscription = errors.New("billing: no active subscription")

	ErrInvalidPlanConfiguration = errors.New("billing: invalid plan configuration")
	ErrMissingAPIKey            = errors.New("billing: provider API key is required")
	ErrMissingWebhookSecret     = errors.New("billing: webhook signing secret is required")
)

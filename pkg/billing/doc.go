// Package billing reconciles a payment provider's subscription lifecycle
// with locally persisted user state.
//
// The package is built around one idea: local subscription state is always
// re-derived from the provider's current truth, never patched with event
// deltas. The Reconciler queries the provider for active subscriptions and
// lifetime payments, derives a Snapshot, and writes it atomically through
// the AccountStore. Webhook deliveries and explicit status polls both funnel
// into the same Reconcile call, which makes duplicate and out-of-order
// events safe by construction.
//
// The Orchestrator drives the purchase-side flow: it lazily creates the
// provider customer, opens a pending subscription or one-time payment, and
// hands the client a confirmation secret. It never marks a user subscribed;
// only a later reconciliation does.
//
// Provider access goes through the Gateway interface. The Stripe
// implementation maps SDK objects into small projection structs at the
// boundary so provider types never leak into callers.
package billing

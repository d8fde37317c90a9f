package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ideavault/ideavault/pkg/logger"
)

// EventDeduplicator remembers webhook event IDs so redelivered events can be
// acknowledged without re-entering reconciliation. Replays would be harmless
// anyway, since reconciliation re-derives from provider truth; suppression
// just saves the extra provider round-trips.
type EventDeduplicator interface {
	// Seen records the event ID and reports whether it was already known.
	Seen(ctx context.Context, eventID string) (bool, error)
}

// RedisEventDeduplicator tracks event IDs in Redis with a TTL.
type RedisEventDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisEventDeduplicator creates a deduplicator. Zero or negative TTL
// defaults to 24 hours, comfortably past the provider's retry window.
func NewRedisEventDeduplicator(client *redis.Client, ttl time.Duration) *RedisEventDeduplicator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisEventDeduplicator{client: client, ttl: ttl}
}

func (d *RedisEventDeduplicator) Seen(ctx context.Context, eventID string) (bool, error) {
	set, err := d.client.SetNX(ctx, "billing:webhook:"+eventID, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("webhook dedup: %w", err)
	}
	return !set, nil
}

// WebhookHandler ingests provider push notifications: it authenticates the
// payload, resolves the affected user, and funnels into the Reconciler.
type WebhookHandler struct {
	gateway    Gateway
	store      AccountStore
	reconciler *Reconciler
	dedup      EventDeduplicator // optional
	log        *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler. The deduplicator is optional.
// Panics on nil gateway, store or reconciler to fail fast during
// initialization.
func NewWebhookHandler(gateway Gateway, store AccountStore, reconciler *Reconciler, dedup EventDeduplicator, log *slog.Logger) *WebhookHandler {
	if gateway == nil {
		panic("billing: Gateway is required")
	}
	if store == nil {
		panic("billing: AccountStore is required")
	}
	if reconciler == nil {
		panic("billing: Reconciler is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &WebhookHandler{
		gateway:    gateway,
		store:      store,
		reconciler: reconciler,
		dedup:      dedup,
		log:        log,
	}
}

// HandleEvent processes one raw webhook delivery.
//
// A nil return means the event must be acknowledged so the provider stops
// retrying; that includes event kinds we deliberately ignore, events for
// customers we don't know, and verified events whose reconciliation failed
// transiently (logged at error level; a provider retry would not fix a
// reconcile failure and only delays later events). Only authentication
// failures are rejected, as ErrInvalidSignature.
func (h *WebhookHandler) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := h.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return err
	}

	if h.dedup != nil && event.ID != "" {
		seen, err := h.dedup.Seen(ctx, event.ID)
		if err != nil {
			// Dedup is an optimization; fail open and reconcile anyway.
			h.log.WarnContext(ctx, "webhook dedup unavailable", logger.Error(err))
		} else if seen {
			h.log.DebugContext(ctx, "duplicate webhook event acknowledged",
				"event_id", event.ID, "type", event.ProviderType)
			return nil
		}
	}

	if event.Kind == EventIgnored {
		h.log.DebugContext(ctx, "webhook event ignored",
			"event_id", event.ID, "type", event.ProviderType)
		return nil
	}

	if event.CustomerID == "" {
		h.log.WarnContext(ctx, "webhook event without customer reference",
			"event_id", event.ID, "type", event.ProviderType)
		return nil
	}

	userID, err := h.store.UserIDByBillingCustomer(ctx, event.CustomerID)
	if err != nil {
		if errors.Is(err, ErrUnknownCustomer) {
			// A customer without a local user (deleted account, foreign
			// test data) must still be acknowledged or the provider
			// retries forever.
			h.log.WarnContext(ctx, "webhook event for unknown customer",
				"event_id", event.ID, "customer_id", event.CustomerID)
			return nil
		}
		h.log.ErrorContext(ctx, "webhook customer lookup failed",
			"event_id", event.ID, "customer_id", event.CustomerID, logger.Error(err))
		return nil
	}

	if _, err := h.reconciler.Reconcile(ctx, userID); err != nil {
		h.log.ErrorContext(ctx, "webhook-triggered reconciliation failed",
			"event_id", event.ID, logger.UserID(userID), "type", event.ProviderType, logger.Error(err))
		return nil
	}

	h.log.InfoContext(ctx, "webhook event processed",
		"event_id", event.ID, logger.UserID(userID), "type", event.ProviderType)
	return nil
}

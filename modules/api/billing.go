package api

import (
	"io"
	"net/http"
)

// maxWebhookBody caps webhook payload reads. Stripe events are well under
// this.
const maxWebhookBody = 1 << 20

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req struct {
		PlanID string `json:"planId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, s.log, err)
		return
	}

	intent, err := s.purchases.Purchase(r.Context(), userID, req.PlanID)
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, http.StatusOK, intent)
}

// handleSubscriptionStatus reconciles against the provider before
// answering, so the response always reflects provider truth rather than a
// possibly stale local row.
func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	snap, err := s.reconciler.Reconcile(r.Context(), userID)
	if err != nil {
		respondError(w, r, s.log, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":         snap.Status,
		"subscriptionId": snap.SubscriptionID,
		"renewalDate":    snap.RenewalDate,
		"expiryDate":     snap.ExpiryDate,
		"isSubscribed":   snap.IsSubscribed(),
	})
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	if err := s.purchases.Cancel(r.Context(), userID); err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "subscription will cancel at period end",
	})
}

// handleBillingWebhook passes the raw body through untouched; signature
// verification needs the exact bytes the provider sent.
func (s *Server) handleBillingWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Code: "bad_request", Message: "unreadable body"})
		return
	}
	defer r.Body.Close()

	if err := s.webhooks.HandleEvent(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		respondError(w, r, s.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ideavault/ideavault/pkg/account"
	"github.com/ideavault/ideavault/pkg/billing"
	"github.com/ideavault/ideavault/pkg/catalog"
	"github.com/ideavault/ideavault/pkg/jwt"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// respondError maps domain sentinels to HTTP statuses. Unknown errors
// become opaque 500s so internal detail never leaks to clients.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "error", err)
		respondJSON(w, status, errorBody{Code: code, Message: "internal server error"})
		return
	}
	respondJSON(w, status, errorBody{Code: code, Message: err.Error()})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequestBody):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, account.ErrWeakPassword):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, account.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, account.ErrInvalidGoogleToken):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, jwt.ErrExpiredToken), errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrInvalidSignature):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, account.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, catalog.ErrIdeaNotFound):
		return http.StatusNotFound, "idea_not_found"
	case errors.Is(err, account.ErrBookmarkNotFound):
		return http.StatusNotFound, "bookmark_not_found"
	case errors.Is(err, account.ErrAlreadySaved):
		return http.StatusBadRequest, "already_saved"
	case errors.Is(err, billing.ErrUnknownPlan):
		return http.StatusBadRequest, "unknown_plan"
	case errors.Is(err, billing.ErrInvalidSignature):
		return http.StatusBadRequest, "invalid_signature"
	case errors.Is(err, billing.ErrNoActiveSubscription):
		return http.StatusNotFound, "no_active_subscription"
	case errors.Is(err, billing.ErrProviderRejected):
		return http.StatusPaymentRequired, "payment_rejected"
	case errors.Is(err, billing.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, "provider_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(errBadRequestBody, err)
	}
	return nil
}

var errBadRequestBody = errors.New("malformed request body")

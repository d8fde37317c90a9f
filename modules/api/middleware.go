package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ideavault/ideavault/pkg/jwt"
)

type contextKey struct{ name string }

var userIDKey = contextKey{"user_id"}

// userIDFromContext returns the authenticated user ID, if any.
func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// requireAuth rejects requests without a valid bearer token and stores the
// user ID in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.authenticate(r)
		if err != nil {
			respondError(w, r, s.log, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// optionalAuth resolves the user when a token is present but lets anonymous
// requests through. Used on idea detail so subscribers get full content.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := s.authenticate(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(r *http.Request) (uuid.UUID, error) {
	token, err := jwt.BearerTokenExtractor(r)
	if err != nil {
		return uuid.Nil, err
	}

	claims, err := s.auth.VerifyToken(token)
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, jwt.ErrInvalidClaims
	}
	return userID, nil
}

package account

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleConfig holds the Google sign-in configuration.
type GoogleConfig struct {
	ClientID string `env:"GOOGLE_CLIENT_ID"`
}

// googleTokenVerifier validates Google ID tokens against the configured
// OAuth client ID.
type googleTokenVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a GoogleVerifier for the given OAuth client ID.
func NewGoogleVerifier(cfg GoogleConfig) (GoogleVerifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("account: google client ID is required")
	}
	return &googleTokenVerifier{clientID: cfg.ClientID}, nil
}

func (v *googleTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", err)
	}

	identity := &GoogleIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = name
	}
	return identity, nil
}

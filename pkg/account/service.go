package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ideavault/ideavault/pkg/jwt"
)

const (
	defaultTokenTTL   = 7 * 24 * time.Hour
	minPasswordLength = 8
	defaultBcryptCost = bcrypt.DefaultCost
	tokenIssuer       = "ideavault"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Storage is the persistence contract the service needs. *Store satisfies
// it; tests substitute a mock.
type Storage interface {
	CreateUser(ctx context.Context, email, name string, passwordHash []byte, googleID string) (*User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByGoogleID(ctx context.Context, googleID string) (*User, error)
	PasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error)
	LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error
}

// GoogleIdentity is the verified identity extracted from a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier validates a Google ID token and returns the identity it
// asserts.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// TokenClaims is the JWT payload issued on successful authentication.
type TokenClaims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

// Service implements registration, login and Google sign-in, issuing JWTs
// on success.
type Service struct {
	storage    Storage
	tokens     *jwt.Service
	google     GoogleVerifier
	log        *slog.Logger
	tokenTTL   time.Duration
	bcryptCost int
}

// ServiceOption configures a Service during construction.
type ServiceOption func(*Service)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.tokenTTL = ttl }
}

// WithBcryptCost sets the bcrypt cost for password hashing. Lower it in
// tests.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) { s.bcryptCost = cost }
}

// WithGoogleVerifier enables Google sign-in.
func WithGoogleVerifier(v GoogleVerifier) ServiceOption {
	return func(s *Service) { s.google = v }
}

// NewService creates the authentication service.
func NewService(storage Storage, tokens *jwt.Service, opts ...ServiceOption) *Service {
	if storage == nil {
		panic("account: nil storage")
	}
	if tokens == nil {
		panic("account: nil token service")
	}

	s := &Service{
		storage:    storage,
		tokens:     tokens,
		log:        slog.Default(),
		tokenTTL:   defaultTokenTTL,
		bcryptCost: defaultBcryptCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new account and returns the user with a fresh token.
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, string, error) {
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, "", ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: at least %d characters required", ErrWeakPassword, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, email, strings.TrimSpace(name), hash, "")
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

// Login authenticates with email and password. Wrong email and wrong
// password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.storage.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	hash, err := s.storage.PasswordHash(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	if len(hash) == 0 {
		// Google-only account without a password.
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GoogleSignIn verifies a Google ID token and signs the user in, creating
// or linking the account as needed.
func (s *Service) GoogleSignIn(ctx context.Context, idToken string) (*User, string, error) {
	if s.google == nil {
		return nil, "", ErrInvalidGoogleToken
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, "", errors.Join(ErrInvalidGoogleToken, err)
	}

	user, err := s.storage.UserByGoogleID(ctx, identity.Subject)
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound):
		user, err = s.findOrCreateGoogleUser(ctx, identity)
		if err != nil {
			return nil, "", err
		}
	default:
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// findOrCreateGoogleUser links the Google identity to an existing account
// with the same email, or registers a passwordless account.
func (s *Service) findOrCreateGoogleUser(ctx context.Context, identity *GoogleIdentity) (*User, error) {
	email := normalizeEmail(identity.Email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	user, err := s.storage.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.storage.LinkGoogleID(ctx, user.ID, identity.Subject); err != nil {
			return nil, err
		}
		user.GoogleID = identity.Subject
		return user, nil
	case errors.Is(err, ErrUserNotFound):
		user, err := s.storage.CreateUser(ctx, email, identity.Name, nil, identity.Subject)
		if err != nil {
			return nil, err
		}
		s.log.InfoContext(ctx, "user registered via google", "user_id", user.ID)
		return user, nil
	default:
		return nil, err
	}
}

// VerifyToken parses and validates a token, returning its claims.
func (s *Service) VerifyToken(token string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := s.tokens.Parse(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (s *Service) issueToken(user *User) (string, error) {
	now := time.Now()
	token, err := s.tokens.Generate(TokenClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
		Email: user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

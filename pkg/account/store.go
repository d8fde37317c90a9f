package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ideavault/ideavault/pkg/billing"
	"github.com/ideavault/ideavault/pkg/pg"
)

// Store persists users and bookmarks in PostgreSQL. It also implements
// billing.AccountStore so the billing reconciler can read and write the
// subscription columns of the same users table.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	if db == nil {
		panic("account: nil connection pool")
	}
	return &Store{db: db}
}

const userColumns = `id, email, name, COALESCE(google_id, ''), COALESCE(billing_customer_id, ''),
	subscription_status, subscription_id, renewal_date, expiry_date, created_at`

func (s *Store) scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var status string
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.GoogleID, &u.CustomerID,
		&status, &u.Subscription.SubscriptionID,
		&u.Subscription.RenewalDate, &u.Subscription.ExpiryDate,
		&u.CreatedAt,
	); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Subscription.Status = billing.Status(status)
	return &u, nil
}

// CreateUser inserts a new user with StatusFree. passwordHash may be nil for
// accounts created through Google sign-in.
func (s *Store) CreateUser(ctx context.Context, email, name string, passwordHash []byte, googleID string) (*User, error) {
	var gid *string
	if googleID != "" {
		gid = &googleID
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash, google_id, subscription_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		uuid.New(), email, name, passwordHash, gid, string(billing.StatusFree))

	u, err := s.scanUser(row)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// UserByID loads a user by primary key.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UserByEmail loads a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// UserByGoogleID loads a user by linked Google account ID.
func (s *Store) UserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID))
}

// PasswordHash returns the stored bcrypt hash, or nil for accounts without
// a password.
func (s *Store) PasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var hash []byte
	err := s.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load password hash: %w", err)
	}
	return hash, nil
}

// LinkGoogleID attaches a Google account to an existing user.
func (s *Store) LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET google_id = $2 WHERE id = $1`, userID, googleID)
	if err != nil {
		return fmt.Errorf("link google account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// BillingProfile implements billing.AccountStore.
func (s *Store) BillingProfile(ctx context.Context, userID uuid.UUID) (billing.BillingProfile, error) {
	u, err := s.UserByID(ctx, userID)
	if err != nil {
		return billing.BillingProfile{}, err
	}
	return billing.BillingProfile{
		UserID:     u.ID,
		Email:      u.Email,
		CustomerID: u.CustomerID,
		Snapshot:   u.Subscription,
	}, nil
}

// SetBillingCustomer implements billing.AccountStore.
func (s *Store) SetBillingCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET billing_customer_id = $2 WHERE id = $1`, userID, customerID)
	if err != nil {
		return fmt.Errorf("set billing customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateSubscription implements billing.AccountStore. The snapshot columns
// are replaced in a single statement so readers never observe a half-written
// state.
func (s *Store) UpdateSubscription(ctx context.Context, userID uuid.UUID, snap billing.Snapshot) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET subscription_status = $2,
			subscription_id = $3,
			renewal_date = $4,
			expiry_date = $5
		WHERE id = $1`,
		userID, string(snap.Status), snap.SubscriptionID, snap.RenewalDate, snap.ExpiryDate)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UserIDByBillingCustomer implements billing.AccountStore.
func (s *Store) UserIDByBillingCustomer(ctx context.Context, customerID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT id FROM users WHERE billing_customer_id = $1`, customerID).Scan(&id)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return uuid.Nil, billing.ErrUnknownCustomer
		}
		return uuid.Nil, fmt.Errorf("resolve billing customer: %w", err)
	}
	return id, nil
}

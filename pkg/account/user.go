package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/ideavault/ideavault/pkg/billing"
)

// User is a registered account. The password hash never leaves the store
// layer; Google-only accounts have no hash at all.
type User struct {
	ID           uuid.UUID        `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name,omitempty"`
	GoogleID     string           `json:"-"`
	CustomerID   string           `json:"-"`
	Subscription billing.Snapshot `json:"subscription"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// IsSubscribed reports whether the user currently has access to paid
// content.
func (u *User) IsSubscribed() bool {
	return u.Subscription.IsSubscribed()
}

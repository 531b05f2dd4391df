package domain

import "time"

// DefaultAddress is stored for profiles that never set a shipping address.
const DefaultAddress = "Not set"

// Customer is a registered account known to the identity provider.
type Customer struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is the denormalized customer record kept next to the account so
// additional fields can be stored without touching the identity data.
type Profile struct {
	CustomerID string    `json:"customerId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Address    string    `json:"address"`
	AvatarURL  string    `json:"avatarUrl,omitempty"`
	Joined     string    `json:"joined"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Principal is the authenticated identity attached to a session.
type Principal struct {
	CustomerID  string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// SessionChange is emitted by the identity provider when the principal bound
// to a session changes. Principal is nil after sign-out.
type SessionChange struct {
	SessionID string
	Principal *Principal
}

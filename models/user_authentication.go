package models

import (
	"time"
)

// UserAuthentication records one user's credential against one
// authentication provider: the external subject plus the tokens granted at
// the most recent login. The pair (auth_provider_id, external_subject) is
// unique, which is what makes repeated callbacks for the same identity
// idempotent.
type UserAuthentication struct {
	ID             string     `json:"id" db:"id"`
	UserID         string     `json:"user_id" db:"user_id"`
	AuthProviderID string     `json:"auth_provider_id" db:"auth_provider_id"`
	ExternalID     string     `json:"external_id" db:"external_id"`
	AccessToken    string     `json:"-" db:"access_token"`
	RefreshToken   string     `json:"-" db:"refresh_token"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	Scopes         string     `json:"scopes" db:"scopes"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"
)

// Provider names supported by the authentication layer. Only OIDC is wired
// up today; the column exists so other providers can be added without a
// schema change.
const (
	ProviderNameOIDC = "oidc"
)

// AuthenticationProvider binds a team to one external identity provider
// instance. ProviderID identifies that instance: for an established team it
// is the stored identifier (usually the email domain that first signed in),
// for a brand-new team it is the hostname of the IdP's authorization
// endpoint.
type AuthenticationProvider struct {
	ID         string    `json:"id" db:"id"`
	TeamID     string    `json:"team_id" db:"team_id"`
	Name       string    `json:"name" db:"name"`
	ProviderID string    `json:"provider_id" db:"provider_id"`
	Enabled    bool      `json:"enabled" db:"enabled"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

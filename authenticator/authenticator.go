package authenticator

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Config holds OAuth provider configuration
type Config struct {
	AuthURL       string
	TokenURL      string
	UserInfoURL   string
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	Scopes        []string
	UsernameClaim []string
	PKCE          bool
}

// ConfigFromEnv builds the provider configuration from environment variables.
// OIDC_SCOPES is a space-delimited scope string; OIDC_USERNAME_CLAIM is a
// dotted claim path (default "preferred_username") split into keys here so
// the rest of the code only ever sees a structured path.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		AuthURL:      os.Getenv("OIDC_AUTH_URI"),
		TokenURL:     os.Getenv("OIDC_TOKEN_URI"),
		UserInfoURL:  os.Getenv("OIDC_USERINFO_URI"),
		ClientID:     os.Getenv("OIDC_CLIENT_ID"),
		ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		RedirectURL:  strings.TrimSuffix(os.Getenv("URL"), "/") + "/auth/oidc.callback",
		PKCE:         os.Getenv("OIDC_PKCE") == "true",
	}

	scopes := os.Getenv("OIDC_SCOPES")
	if scopes == "" {
		scopes = oidc.ScopeOpenID + " profile email"
	}
	cfg.Scopes = strings.Fields(scopes)

	usernameClaim := os.Getenv("OIDC_USERNAME_CLAIM")
	if usernameClaim == "" {
		usernameClaim = "preferred_username"
	}
	cfg.UsernameClaim = strings.Split(usernameClaim, ".")

	// Validate required configuration
	if cfg.AuthURL == "" {
		return cfg, errors.New("OIDC_AUTH_URI is required")
	}
	if cfg.TokenURL == "" {
		return cfg, errors.New("OIDC_TOKEN_URI is required")
	}
	if cfg.UserInfoURL == "" {
		return cfg, errors.New("OIDC_USERINFO_URI is required")
	}
	if cfg.ClientID == "" {
		return cfg, errors.New("OIDC_CLIENT_ID is required")
	}
	if cfg.ClientSecret == "" {
		return cfg, errors.New("OIDC_CLIENT_SECRET is required")
	}

	return cfg, nil
}

// Token represents the credentials obtained from the authorization code
// exchange
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       int64
	Scopes       string
}

// Claims represents a set of claims about an authenticated subject, from
// either a userinfo response or a decoded ID token. Any key may be absent
// and values are untyped.
type Claims map[string]interface{}

// String reads a string claim at the given key path, traversing nested
// objects for multi-key paths. Missing keys, non-object intermediates and
// non-string leaves all return "".
func (c Claims) String(path ...string) string {
	current := c
	for i, key := range path {
		value, ok := current[key]
		if !ok {
			return ""
		}
		if i == len(path)-1 {
			s, _ := value.(string)
			return s
		}
		next, ok := value.(map[string]interface{})
		if !ok {
			return ""
		}
		current = next
	}
	return ""
}

// ExternalIdentity is the canonical identity derived from provider claims.
// It contains facts only, no provisioning decisions. Email, SubjectID and
// Name are always non-empty; Username and AvatarURL may be empty.
type ExternalIdentity struct {
	Email     string
	SubjectID string
	Name      string
	Username  string
	AvatarURL string
}

// Provider interface abstracts OAuth provider operations
type Provider interface {
	GetAuthURL(state string, verifier string) string
	ExchangeCode(ctx context.Context, code string, verifier string) (*Token, error)
	FetchProfile(ctx context.Context, accessToken string) (Claims, error)
}

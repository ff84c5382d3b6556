package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/imalexduke/outline/authenticator"
	"github.com/imalexduke/outline/models"
)

// DefaultClient is the OAuth client identifier attached to logins that do
// not name one.
const DefaultClient = "web"

// TenantContext carries what the inbound request already knows: the team
// it targets (nil for first-time team creation) and the originating OAuth
// client identifier.
type TenantContext struct {
	Team   *models.Team
	Client string
}

// AccountService orchestrates the post-exchange half of an OIDC login:
// fetch the userinfo profile, decode the ID token, normalize claims,
// resolve the team-scoped provider and provision the account.
type AccountService interface {
	SignIn(ctx context.Context, tc TenantContext, token *authenticator.Token) (*ProvisionedAccount, error)
}

// accountService implements AccountService interface
type accountService struct {
	provider         authenticator.Provider
	resolver         TeamResolver
	provisioner      Provisioner
	usernameClaim    []string
	scopes           []string
	authorizationURL string
	logger           *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(provider authenticator.Provider, resolver TeamResolver, provisioner Provisioner, cfg authenticator.Config, logger *zap.Logger) AccountService {
	return &accountService{
		provider:         provider,
		resolver:         resolver,
		provisioner:      provisioner,
		usernameClaim:    cfg.UsernameClaim,
		scopes:           cfg.Scopes,
		authorizationURL: cfg.AuthURL,
		logger:           logger,
	}
}

// SignIn reconciles one IdP callback into a provisioned account. Every
// failure surfaces as a typed error with no records created; nothing here
// retries, a failed callback means restarting the login flow.
func (s *accountService) SignIn(ctx context.Context, tc TenantContext, token *authenticator.Token) (*ProvisionedAccount, error) {
	profile, err := s.provider.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	tokenClaims, err := authenticator.DecodeIDToken(token.IDToken)
	if err != nil {
		s.logger.Debug("id token could not be decoded, continuing with profile claims only",
			zap.Error(err))
	}

	identity, err := NormalizeIdentity(profile, tokenClaims, s.usernameClaim, s.logger)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, identity.Email, tc.Team, s.authorizationURL)
	if err != nil {
		return nil, err
	}

	req := &ProvisionRequest{
		Team: TeamDescriptor{
			Name:      teamNameFromSubdomain(resolved.Subdomain),
			Domain:    resolved.Domain,
			Subdomain: resolved.Subdomain,
		},
		User: models.UserForm{
			Name:      identity.Name,
			Email:     identity.Email,
			Username:  identity.Username,
			AvatarURL: identity.AvatarURL,
		},
		Provider: ProviderDescriptor{
			Name:       models.ProviderNameOIDC,
			ProviderID: resolved.ProviderID,
		},
		Authentication: AuthenticationDescriptor{
			ExternalID:   identity.SubjectID,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresAt:    tokenExpiry(token),
			Scopes:       grantedScopes(token, s.scopes),
		},
	}
	if tc.Team != nil {
		req.Team = TeamDescriptor{ID: tc.Team.ID}
	}

	account, err := s.provisioner.Provision(ctx, req)
	if err != nil {
		return nil, err
	}

	account.Client = tc.Client
	if account.Client == "" {
		account.Client = DefaultClient
	}

	return account, nil
}

// tokenExpiry converts the exchange's unix expiry to an absolute timestamp
func tokenExpiry(token *authenticator.Token) *time.Time {
	if token.Expiry <= 0 {
		return nil
	}
	expiry := time.Unix(token.Expiry, 0)
	return &expiry
}

// grantedScopes prefers the scope set the provider reported over the one
// that was requested
func grantedScopes(token *authenticator.Token, requested []string) string {
	if token.Scopes != "" {
		return token.Scopes
	}
	return strings.Join(requested, " ")
}

// teamNameFromSubdomain derives a presentable team name for first-time
// creation: "acme" becomes "Acme".
func teamNameFromSubdomain(subdomain string) string {
	if subdomain == "" {
		return ""
	}
	return strings.ToUpper(subdomain[:1]) + subdomain[1:]
}

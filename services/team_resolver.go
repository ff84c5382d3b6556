package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gosimple/slug"

	"github.com/imalexduke/outline/models"
	"github.com/imalexduke/outline/repositories"
)

// ResolvedProvider describes which authentication provider configuration a
// login should attach to, plus the domain facts derived from the email.
type ResolvedProvider struct {
	Domain     string
	Subdomain  string
	ProviderID string
	// Existing is the stored provider configuration when the team already
	// has one, nil on first login for a team.
	Existing *models.AuthenticationProvider
}

// TeamResolver resolves an email to the team-scoped provider configuration
// a login belongs to.
//
// Only one OIDC provider configuration is supported per team at the
// granularity matched here: the lookup tries an exact provider_id == domain
// match first and then falls back to any stored OIDC provider for the team.
// With two distinct IdPs configured for one team the fallback conflates
// them. That is a known, deliberate simplification; changing it changes
// account matching for existing teams.
type TeamResolver interface {
	Resolve(ctx context.Context, email string, team *models.Team, authorizationURL string) (*ResolvedProvider, error)
}

// teamResolver implements TeamResolver interface
type teamResolver struct {
	providerRepo repositories.AuthProviderRepository
}

// NewTeamResolver creates a new team resolver
func NewTeamResolver(providerRepo repositories.AuthProviderRepository) TeamResolver {
	return &teamResolver{providerRepo: providerRepo}
}

// Resolve parses the email domain, finds the provider configuration to use
// and derives the candidate subdomain for first-time team creation.
func (r *teamResolver) Resolve(ctx context.Context, email string, team *models.Team, authorizationURL string) (*ResolvedProvider, error) {
	domain, err := emailDomain(email)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedProvider{
		Domain:    domain,
		Subdomain: subdomainCandidate(domain),
	}

	if team != nil {
		// Per-domain lookup first: a team with IdPs on several email
		// domains stores one provider per domain.
		existing, err := r.providerRepo.GetByProviderID(ctx, team.ID, models.ProviderNameOIDC, domain)
		if errors.Is(err, repositories.ErrNotFound) {
			// Single-IdP-per-team fallback: reuse whatever OIDC provider
			// the team already has.
			existing, err = r.providerRepo.GetFirstByName(ctx, team.ID, models.ProviderNameOIDC)
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up authentication provider: %w", err)
		}
		if existing != nil {
			resolved.Existing = existing
			resolved.ProviderID = existing.ProviderID
			return resolved, nil
		}
	}

	// First login for this team: anchor the provider identity to the IdP
	// that redirected the user here, not to claim data the profile
	// response could spoof.
	endpoint, err := url.Parse(authorizationURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse authorization endpoint %q: %w", authorizationURL, err)
	}
	if endpoint.Hostname() == "" {
		return nil, fmt.Errorf("authorization endpoint %q has no hostname", authorizationURL)
	}
	resolved.ProviderID = endpoint.Hostname()

	return resolved, nil
}

// emailDomain extracts the lowercase domain portion of an email address
func emailDomain(email string) (string, error) {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return "", &MalformedIdentityError{Email: email}
	}
	return strings.ToLower(email[at+1:]), nil
}

// subdomainCandidate reduces an email domain to a slug-safe tenant
// subdomain by stripping the top-level domain segment: "acme.io" becomes
// "acme", "mail.acme.io" becomes "mail-acme".
func subdomainCandidate(domain string) string {
	labels := strings.Split(domain, ".")
	if len(labels) > 1 {
		labels = labels[:len(labels)-1]
	}
	return slug.Make(strings.Join(labels, "-"))
}

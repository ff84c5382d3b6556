package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/imalexduke/outline/models"
	"github.com/imalexduke/outline/repositories"
)

// TeamDescriptor identifies the team to provision into: either an existing
// team by ID or the facts needed to create one.
type TeamDescriptor struct {
	ID        string
	Name      string
	Domain    string
	Subdomain string
}

// ProviderDescriptor identifies the authentication provider configuration
type ProviderDescriptor struct {
	Name       string
	ProviderID string
}

// AuthenticationDescriptor carries the credential facts of one login
type AuthenticationDescriptor struct {
	ExternalID   string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scopes       string
}

// ProvisionRequest bundles everything the provisioner needs to upsert one
// login's records.
type ProvisionRequest struct {
	Team           TeamDescriptor
	User           models.UserForm
	Provider       ProviderDescriptor
	Authentication AuthenticationDescriptor
}

// ProvisionedAccount is the outcome of a successful provisioning run
type ProvisionedAccount struct {
	User      *models.User
	Team      *models.Team
	IsNewTeam bool
	IsNewUser bool
	// Client is the OAuth client identifier that originated the login,
	// attached by the orchestrator after provisioning.
	Client string
}

// Provisioner upserts team, provider, user and authentication records for
// one resolved identity. Provision is idempotent per
// (provider name, provider id, external subject): repeated calls with the
// same identity update tokens instead of creating duplicates, and the
// unique index on (auth_provider_id, external_id) holds that under
// concurrent callbacks.
type Provisioner interface {
	Provision(ctx context.Context, req *ProvisionRequest) (*ProvisionedAccount, error)
}

// accountProvisioner implements Provisioner on a single SQL transaction,
// so a failed step leaves no partial records behind.
type accountProvisioner struct {
	db     *sql.DB
	repos  *repositories.Repositories
	logger *zap.Logger
}

// NewProvisioner creates a new account provisioner
func NewProvisioner(db *sql.DB, repos *repositories.Repositories, logger *zap.Logger) Provisioner {
	return &accountProvisioner{db: db, repos: repos, logger: logger}
}

// Provision finds or creates the team, provider, user and authentication
// records described by the request.
func (p *accountProvisioner) Provision(ctx context.Context, req *ProvisionRequest) (*ProvisionedAccount, error) {
	if errs := req.User.Validate(); errs.HasErrors() {
		return nil, fmt.Errorf("invalid user descriptor: %s", strings.Join(errs.GetMessages(), "; "))
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	repos := p.repos.WithTx(tx)

	team, isNewTeam, err := p.findOrCreateTeam(ctx, repos, req.Team)
	if err != nil {
		return nil, err
	}

	provider, err := p.findOrCreateProvider(ctx, repos, team.ID, req.Provider)
	if err != nil {
		return nil, err
	}

	user, isNewUser, err := p.findOrCreateUser(ctx, repos, team, provider, req)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit provisioning: %w", err)
	}

	p.logger.Info("provisioned account",
		zap.String("team_id", team.ID),
		zap.String("user_id", user.ID),
		zap.Bool("new_team", isNewTeam),
		zap.Bool("new_user", isNewUser),
	)

	return &ProvisionedAccount{
		User:      user,
		Team:      team,
		IsNewTeam: isNewTeam,
		IsNewUser: isNewUser,
	}, nil
}

// findOrCreateTeam resolves the team descriptor to a team record
func (p *accountProvisioner) findOrCreateTeam(ctx context.Context, repos *repositories.Repositories, desc TeamDescriptor) (*models.Team, bool, error) {
	if desc.ID != "" {
		team, err := repos.Team.GetByID(ctx, desc.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load team %s: %w", desc.ID, err)
		}
		return team, false, nil
	}

	team, err := repos.Team.GetByDomain(ctx, desc.Domain)
	if err == nil {
		return team, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	form := models.TeamForm{Name: desc.Name, Domain: desc.Domain, Subdomain: desc.Subdomain}
	if errs := form.Validate(); errs.HasErrors() {
		return nil, false, fmt.Errorf("invalid team descriptor: %s", strings.Join(errs.GetMessages(), "; "))
	}

	team = &models.Team{
		Name:      desc.Name,
		Domain:    desc.Domain,
		Subdomain: desc.Subdomain,
	}
	if err := repos.Team.Create(ctx, team); err != nil {
		return nil, false, err
	}

	return team, true, nil
}

// findOrCreateProvider resolves the provider descriptor within the team
func (p *accountProvisioner) findOrCreateProvider(ctx context.Context, repos *repositories.Repositories, teamID string, desc ProviderDescriptor) (*models.AuthenticationProvider, error) {
	provider, err := repos.AuthProvider.GetByProviderID(ctx, teamID, desc.Name, desc.ProviderID)
	if err == nil {
		return provider, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	provider = &models.AuthenticationProvider{
		TeamID:     teamID,
		Name:       desc.Name,
		ProviderID: desc.ProviderID,
		Enabled:    true,
	}
	if err := repos.AuthProvider.Create(ctx, provider); err != nil {
		return nil, err
	}

	return provider, nil
}

// findOrCreateUser resolves the login to a user record, preferring the
// stored authentication, then email linking, then creation.
func (p *accountProvisioner) findOrCreateUser(ctx context.Context, repos *repositories.Repositories, team *models.Team, provider *models.AuthenticationProvider, req *ProvisionRequest) (*models.User, bool, error) {
	auth, err := repos.Authentication.GetByExternalID(ctx, provider.ID, req.Authentication.ExternalID)
	if err == nil {
		// Repeat login: refresh tokens and profile fields
		user, err := repos.User.GetByID(ctx, auth.UserID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load user for authentication %s: %w", auth.ID, err)
		}

		user.Name = req.User.Name
		user.Username = req.User.Username
		if req.User.AvatarURL != "" {
			user.AvatarURL = req.User.AvatarURL
		}
		if err := repos.User.Update(ctx, user); err != nil {
			return nil, false, err
		}

		auth.AccessToken = req.Authentication.AccessToken
		auth.RefreshToken = req.Authentication.RefreshToken
		auth.ExpiresAt = req.Authentication.ExpiresAt
		auth.Scopes = req.Authentication.Scopes
		if err := repos.Authentication.UpdateTokens(ctx, auth); err != nil {
			return nil, false, err
		}

		return user, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	// First login with this subject: link to an existing user by email or
	// create a new one.
	isNewUser := false
	user, err := repos.User.GetByEmail(ctx, team.ID, req.User.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		user = &models.User{
			TeamID:    team.ID,
			Name:      req.User.Name,
			Email:     req.User.Email,
			Username:  req.User.Username,
			AvatarURL: req.User.AvatarURL,
			Active:    true,
		}
		if err := repos.User.Create(ctx, user); err != nil {
			return nil, false, err
		}
		isNewUser = true
	} else if err != nil {
		return nil, false, err
	}

	auth = &models.UserAuthentication{
		UserID:         user.ID,
		AuthProviderID: provider.ID,
		ExternalID:     req.Authentication.ExternalID,
		AccessToken:    req.Authentication.AccessToken,
		RefreshToken:   req.Authentication.RefreshToken,
		ExpiresAt:      req.Authentication.ExpiresAt,
		Scopes:         req.Authentication.Scopes,
	}
	if err := repos.Authentication.Create(ctx, auth); err != nil {
		return nil, false, err
	}

	return user, isNewUser, nil
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imalexduke/outline/models"
)

// AuthProviderRepository interface defines authentication provider database
// operations
type AuthProviderRepository interface {
	GetByProviderID(ctx context.Context, teamID, name, providerID string) (*models.AuthenticationProvider, error)
	GetFirstByName(ctx context.Context, teamID, name string) (*models.AuthenticationProvider, error)
	Create(ctx context.Context, provider *models.AuthenticationProvider) error
}

// authProviderRepository implements AuthProviderRepository interface
type authProviderRepository struct {
	db DBTX
}

// NewAuthProviderRepository creates a new authentication provider repository
func NewAuthProviderRepository(db DBTX) AuthProviderRepository {
	return &authProviderRepository{db: db}
}

const authProviderColumns = `id, team_id, name, provider_id, enabled, created_at`

// scanAuthProvider scans a single authentication provider row
func scanAuthProvider(row *sql.Row) (*models.AuthenticationProvider, error) {
	var provider models.AuthenticationProvider

	err := row.Scan(
		&provider.ID,
		&provider.TeamID,
		&provider.Name,
		&provider.ProviderID,
		&provider.Enabled,
		&provider.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &provider, nil
}

// GetByProviderID retrieves a provider configuration scoped by its exact
// provider identifier within a team
func (r *authProviderRepository) GetByProviderID(ctx context.Context, teamID, name, providerID string) (*models.AuthenticationProvider, error) {
	query := `
		SELECT ` + authProviderColumns + `
		FROM authentication_providers
		WHERE team_id = ? AND name = ? AND provider_id = ?
	`

	provider, err := scanAuthProvider(r.db.QueryRowContext(ctx, query, teamID, name, providerID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authentication provider: %w", err)
	}

	return provider, nil
}

// GetFirstByName retrieves any provider configuration of the given name for
// a team, oldest first
func (r *authProviderRepository) GetFirstByName(ctx context.Context, teamID, name string) (*models.AuthenticationProvider, error) {
	query := `
		SELECT ` + authProviderColumns + `
		FROM authentication_providers
		WHERE team_id = ? AND name = ?
		ORDER BY created_at ASC
		LIMIT 1
	`

	provider, err := scanAuthProvider(r.db.QueryRowContext(ctx, query, teamID, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authentication provider by name: %w", err)
	}

	return provider, nil
}

// Create creates a new authentication provider configuration
func (r *authProviderRepository) Create(ctx context.Context, provider *models.AuthenticationProvider) error {
	query := `
		INSERT INTO authentication_providers (id, team_id, name, provider_id, enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if provider.ID == "" {
		provider.ID = uuid.NewString()
	}
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		provider.ID,
		provider.TeamID,
		provider.Name,
		provider.ProviderID,
		provider.Enabled,
		provider.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create authentication provider: %w", err)
	}

	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imalexduke/outline/models"
)

// AuthenticationRepository interface defines user authentication database
// operations
type AuthenticationRepository interface {
	GetByExternalID(ctx context.Context, authProviderID, externalID string) (*models.UserAuthentication, error)
	Create(ctx context.Context, auth *models.UserAuthentication) error
	UpdateTokens(ctx context.Context, auth *models.UserAuthentication) error
}

// authenticationRepository implements AuthenticationRepository interface
type authenticationRepository struct {
	db DBTX
}

// NewAuthenticationRepository creates a new authentication repository
func NewAuthenticationRepository(db DBTX) AuthenticationRepository {
	return &authenticationRepository{db: db}
}

// GetByExternalID retrieves an authentication record by provider
// configuration and external subject identifier
func (r *authenticationRepository) GetByExternalID(ctx context.Context, authProviderID, externalID string) (*models.UserAuthentication, error) {
	query := `
		SELECT id, user_id, auth_provider_id, external_id, access_token,
		       refresh_token, expires_at, scopes, created_at, updated_at
		FROM user_authentications
		WHERE auth_provider_id = ? AND external_id = ?
	`

	var auth models.UserAuthentication
	var accessToken, refreshToken, scopes sql.NullString
	var expiresAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, authProviderID, externalID).Scan(
		&auth.ID,
		&auth.UserID,
		&auth.AuthProviderID,
		&auth.ExternalID,
		&accessToken,
		&refreshToken,
		&expiresAt,
		&scopes,
		&auth.CreatedAt,
		&auth.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authentication: %w", err)
	}

	// Convert NULL values to empty string/nil
	if accessToken.Valid {
		auth.AccessToken = accessToken.String
	}
	if refreshToken.Valid {
		auth.RefreshToken = refreshToken.String
	}
	if scopes.Valid {
		auth.Scopes = scopes.String
	}
	if expiresAt.Valid {
		auth.ExpiresAt = &expiresAt.Time
	}

	return &auth, nil
}

// Create creates a new authentication record
func (r *authenticationRepository) Create(ctx context.Context, auth *models.UserAuthentication) error {
	query := `
		INSERT INTO user_authentications (id, user_id, auth_provider_id, external_id,
		       access_token, refresh_token, expires_at, scopes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if auth.ID == "" {
		auth.ID = uuid.NewString()
	}
	now := time.Now()
	if auth.CreatedAt.IsZero() {
		auth.CreatedAt = now
	}
	auth.UpdatedAt = now

	var expiresAt sql.NullTime
	if auth.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *auth.ExpiresAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		auth.ID,
		auth.UserID,
		auth.AuthProviderID,
		auth.ExternalID,
		nullString(auth.AccessToken),
		nullString(auth.RefreshToken),
		expiresAt,
		nullString(auth.Scopes),
		auth.CreatedAt,
		auth.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create authentication: %w", err)
	}

	return nil
}

// UpdateTokens replaces the stored credentials after a repeat login
func (r *authenticationRepository) UpdateTokens(ctx context.Context, auth *models.UserAuthentication) error {
	query := `
		UPDATE user_authentications
		SET access_token = ?, refresh_token = ?, expires_at = ?, scopes = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now()

	var expiresAt sql.NullTime
	if auth.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *auth.ExpiresAt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		nullString(auth.AccessToken),
		nullString(auth.RefreshToken),
		expiresAt,
		nullString(auth.Scopes),
		now,
		auth.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update authentication: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("authentication with ID %s not found", auth.ID)
	}

	auth.UpdatedAt = now
	return nil
}

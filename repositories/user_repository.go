package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imalexduke/outline/models"
	"github.com/imalexduke/outline/userctx"
)

// UserRepository interface defines user database operations
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, teamID, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// userRepository implements UserRepository interface
type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, team_id, name, email, username, avatar_url, active, created_at, created_by, modified_by, modified_at`

// scanUser scans a single user row
func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var username, avatarURL, createdBy, modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.TeamID,
		&user.Name,
		&user.Email,
		&username,
		&avatarURL,
		&user.Active,
		&user.CreatedAt,
		&createdBy,
		&modifiedBy,
		&modifiedAt,
	)
	if err != nil {
		return nil, err
	}

	// Convert NULL values to empty string/nil
	if username.Valid {
		user.Username = username.String
	}
	if avatarURL.Valid {
		user.AvatarURL = avatarURL.String
	}
	if createdBy.Valid {
		user.CreatedBy = createdBy.String
	}
	if modifiedBy.Valid {
		user.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		user.ModifiedAt = &modifiedAt.Time
	}

	return &user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email within a team
func (r *userRepository) GetByEmail(ctx context.Context, teamID, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE team_id = ? AND email = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, teamID, email))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, team_id, name, email, username, avatar_url, active, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	// Get user from context
	userEmail := userctx.GetUserEmail(ctx)

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.TeamID,
		user.Name,
		user.Email,
		nullString(user.Username),
		nullString(user.AvatarURL),
		user.Active,
		user.CreatedAt,
		userEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedBy = userEmail
	return nil
}

// Update updates an existing user's profile fields
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = ?, username = ?, avatar_url = ?, active = ?,
		    modified_by = ?, modified_at = ?
		WHERE id = ?
	`

	// Get user from context
	userEmail := userctx.GetUserEmail(ctx)
	now := time.Now()

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		nullString(user.Username),
		nullString(user.AvatarURL),
		user.Active,
		userEmail,
		now,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found", user.ID)
	}

	user.ModifiedBy = userEmail
	user.ModifiedAt = &now
	return nil
}

// nullString converts an empty string to a SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

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

// ErrNotFound is returned when a lookup matches no record. Callers that
// treat a miss as a normal branch (find-or-create ladders) check for it
// with errors.Is.
var ErrNotFound = sql.ErrNoRows

// TeamRepository interface defines team database operations
type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*models.Team, error)
	GetByDomain(ctx context.Context, domain string) (*models.Team, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Team, error)
	Create(ctx context.Context, team *models.Team) error
	Count(ctx context.Context) (int, error)
}

// teamRepository implements TeamRepository interface
type teamRepository struct {
	db DBTX
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db DBTX) TeamRepository {
	return &teamRepository{db: db}
}

const teamColumns = `id, name, domain, subdomain, created_at, created_by, modified_by, modified_at`

// scanTeam scans a single team row
func scanTeam(row *sql.Row) (*models.Team, error) {
	var team models.Team
	var createdBy, modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.Domain,
		&team.Subdomain,
		&team.CreatedAt,
		&createdBy,
		&modifiedBy,
		&modifiedAt,
	)
	if err != nil {
		return nil, err
	}

	// Convert NULL values to empty string/nil
	if createdBy.Valid {
		team.CreatedBy = createdBy.String
	}
	if modifiedBy.Valid {
		team.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		team.ModifiedAt = &modifiedAt.Time
	}

	return &team, nil
}

// GetByID retrieves a team by ID
func (r *teamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = ?`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetByDomain retrieves a team by its email domain
func (r *teamRepository) GetByDomain(ctx context.Context, domain string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE domain = ?`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, domain))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by domain: %w", err)
	}

	return team, nil
}

// GetBySubdomain retrieves a team by its subdomain
func (r *teamRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE subdomain = ?`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, subdomain))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by subdomain: %w", err)
	}

	return team, nil
}

// Create creates a new team
func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, domain, subdomain, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now()
	}

	// Get user from context
	userEmail := userctx.GetUserEmail(ctx)

	_, err := r.db.ExecContext(ctx, query,
		team.ID,
		team.Name,
		team.Domain,
		team.Subdomain,
		team.CreatedAt,
		userEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	team.CreatedBy = userEmail
	return nil
}

// Count returns the total number of teams
func (r *teamRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM teams`

	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}

	return count, nil
}

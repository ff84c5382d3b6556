package repositories

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql operations the repositories use.
// Both *sql.DB and *sql.Tx satisfy it, so the provisioner can run every
// repository against one transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Repositories struct holds all repository interfaces
type Repositories struct {
	Team           TeamRepository
	User           UserRepository
	AuthProvider   AuthProviderRepository
	Authentication AuthenticationRepository
	Audit          AuditRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		Team:           NewTeamRepository(db),
		User:           NewUserRepository(db),
		AuthProvider:   NewAuthProviderRepository(db),
		Authentication: NewAuthenticationRepository(db),
		Audit:          NewAuditRepository(db),
	}
}

// WithTx returns a set of repositories bound to the given transaction
func (r *Repositories) WithTx(tx *sql.Tx) *Repositories {
	return NewRepositories(tx)
}

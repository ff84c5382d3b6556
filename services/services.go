package services

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/imalexduke/outline/authenticator"
	"github.com/imalexduke/outline/repositories"
)

// Services holds all service instances
type Services struct {
	Team        TeamService
	Resolver    TeamResolver
	Provisioner Provisioner
	Accounts    AccountService
}

// NewServices creates and initializes all service instances
func NewServices(db *sql.DB, repos *repositories.Repositories, provider authenticator.Provider, cfg authenticator.Config, logger *zap.Logger) *Services {
	resolver := NewTeamResolver(repos.AuthProvider)
	provisioner := NewProvisioner(db, repos, logger)

	return &Services{
		Team:        NewTeamService(repos.Team, repos.User),
		Resolver:    resolver,
		Provisioner: provisioner,
		Accounts:    NewAccountService(provider, resolver, provisioner, cfg, logger),
	}
}

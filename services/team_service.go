package services

import (
	"context"
	"fmt"

	"github.com/imalexduke/outline/models"
	"github.com/imalexduke/outline/repositories"
)

// TeamService interface defines team lookup business logic
type TeamService interface {
	GetTeamByID(ctx context.Context, id string) (*models.Team, error)
	GetTeamBySubdomain(ctx context.Context, subdomain string) (*models.Team, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetTeamCount(ctx context.Context) (int, error)
}

// teamService implements TeamService interface
type teamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
}

// NewTeamService creates a new team service
func NewTeamService(teamRepo repositories.TeamRepository, userRepo repositories.UserRepository) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

// GetTeamByID retrieves a team by ID
func (s *teamService) GetTeamByID(ctx context.Context, id string) (*models.Team, error) {
	if id == "" {
		return nil, fmt.Errorf("team ID is required")
	}
	return s.teamRepo.GetByID(ctx, id)
}

// GetTeamBySubdomain retrieves a team by its subdomain
func (s *teamService) GetTeamBySubdomain(ctx context.Context, subdomain string) (*models.Team, error) {
	if subdomain == "" {
		return nil, fmt.Errorf("subdomain is required")
	}
	return s.teamRepo.GetBySubdomain(ctx, subdomain)
}

// GetUserByID retrieves a user by ID
func (s *teamService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	return s.userRepo.GetByID(ctx, id)
}

// GetTeamCount returns the total number of teams
func (s *teamService) GetTeamCount(ctx context.Context) (int, error) {
	return s.teamRepo.Count(ctx)
}

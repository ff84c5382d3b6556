package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/imalexduke/outline/database"
	"github.com/imalexduke/outline/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	// Create a temporary database for testing
	dbPath := "test_" + time.Now().Format("20060102150405.000000000") + ".db"

	// Clean up function
	t.Cleanup(func() {
		database.CloseDB()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	})

	// Initialize test database using the actual migration system
	if err := database.InitializeDatabase(dbPath); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	return database.GetDB()
}

func createTestTeam(t *testing.T, repo TeamRepository) *models.Team {
	team := &models.Team{
		Name:      "Acme",
		Domain:    "acme.io",
		Subdomain: "acme",
	}
	if err := repo.Create(context.Background(), team); err != nil {
		t.Fatalf("Failed to create team: %v", err)
	}
	return team
}

func TestTeamRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()

	team := createTestTeam(t, repo)
	if team.ID == "" {
		t.Error("Expected team ID to be set after creation")
	}

	// Test GetByID
	retrieved, err := repo.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("Failed to get team by ID: %v", err)
	}
	if retrieved.Name != team.Name {
		t.Errorf("Expected name %s, got %s", team.Name, retrieved.Name)
	}

	// Test GetByDomain
	byDomain, err := repo.GetByDomain(ctx, "acme.io")
	if err != nil {
		t.Fatalf("Failed to get team by domain: %v", err)
	}
	if byDomain.ID != team.ID {
		t.Errorf("Expected team ID %s, got %s", team.ID, byDomain.ID)
	}

	// Test GetBySubdomain
	bySubdomain, err := repo.GetBySubdomain(ctx, "acme")
	if err != nil {
		t.Fatalf("Failed to get team by subdomain: %v", err)
	}
	if bySubdomain.ID != team.ID {
		t.Errorf("Expected team ID %s, got %s", team.ID, bySubdomain.ID)
	}

	// Test miss returns ErrNotFound
	if _, err := repo.GetByDomain(ctx, "other.io"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// Test Count
	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count teams: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 team, got %d", count)
	}
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	teamRepo := NewTeamRepository(db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	team := createTestTeam(t, teamRepo)

	user := &models.User{
		TeamID:   team.ID,
		Name:     "Jane Doe",
		Email:    "jane@acme.io",
		Username: "jane",
		Active:   true,
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if user.ID == "" {
		t.Error("Expected user ID to be set after creation")
	}

	// Test GetByEmail scoping
	retrieved, err := repo.GetByEmail(ctx, team.ID, "jane@acme.io")
	if err != nil {
		t.Fatalf("Failed to get user by email: %v", err)
	}
	if retrieved.ID != user.ID {
		t.Errorf("Expected user ID %s, got %s", user.ID, retrieved.ID)
	}

	if _, err := repo.GetByEmail(ctx, "other-team", "jane@acme.io"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for wrong team, got %v", err)
	}

	// Test Update
	user.Name = "Jane A. Doe"
	user.AvatarURL = "https://cdn.acme.io/jane.png"
	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Failed to update user: %v", err)
	}

	updated, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("Failed to get updated user: %v", err)
	}
	if updated.Name != "Jane A. Doe" {
		t.Errorf("Expected updated name, got %s", updated.Name)
	}
	if updated.AvatarURL != "https://cdn.acme.io/jane.png" {
		t.Errorf("Expected updated avatar URL, got %s", updated.AvatarURL)
	}
}

func TestAuthProviderRepository(t *testing.T) {
	db := setupTestDB(t)
	teamRepo := NewTeamRepository(db)
	repo := NewAuthProviderRepository(db)
	ctx := context.Background()

	team := createTestTeam(t, teamRepo)

	provider := &models.AuthenticationProvider{
		TeamID:     team.ID,
		Name:       models.ProviderNameOIDC,
		ProviderID: "acme.io",
		Enabled:    true,
	}
	if err := repo.Create(ctx, provider); err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	// Test exact lookup
	exact, err := repo.GetByProviderID(ctx, team.ID, models.ProviderNameOIDC, "acme.io")
	if err != nil {
		t.Fatalf("Failed to get provider by provider ID: %v", err)
	}
	if exact.ID != provider.ID {
		t.Errorf("Expected provider ID %s, got %s", provider.ID, exact.ID)
	}

	if _, err := repo.GetByProviderID(ctx, team.ID, models.ProviderNameOIDC, "other.io"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// Test team-wide lookup
	first, err := repo.GetFirstByName(ctx, team.ID, models.ProviderNameOIDC)
	if err != nil {
		t.Fatalf("Failed to get first provider by name: %v", err)
	}
	if first.ID != provider.ID {
		t.Errorf("Expected provider ID %s, got %s", provider.ID, first.ID)
	}
}

func TestAuthenticationRepository(t *testing.T) {
	db := setupTestDB(t)
	teamRepo := NewTeamRepository(db)
	userRepo := NewUserRepository(db)
	providerRepo := NewAuthProviderRepository(db)
	repo := NewAuthenticationRepository(db)
	ctx := context.Background()

	team := createTestTeam(t, teamRepo)

	user := &models.User{TeamID: team.ID, Name: "Jane Doe", Email: "jane@acme.io", Active: true}
	if err := userRepo.Create(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	provider := &models.AuthenticationProvider{
		TeamID:     team.ID,
		Name:       models.ProviderNameOIDC,
		ProviderID: "acme.io",
		Enabled:    true,
	}
	if err := providerRepo.Create(ctx, provider); err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	expiry := time.Now().Add(time.Hour)
	auth := &models.UserAuthentication{
		UserID:         user.ID,
		AuthProviderID: provider.ID,
		ExternalID:     "external-123",
		AccessToken:    "access",
		RefreshToken:   "refresh",
		ExpiresAt:      &expiry,
		Scopes:         "openid profile email",
	}
	if err := repo.Create(ctx, auth); err != nil {
		t.Fatalf("Failed to create authentication: %v", err)
	}

	// Test GetByExternalID
	retrieved, err := repo.GetByExternalID(ctx, provider.ID, "external-123")
	if err != nil {
		t.Fatalf("Failed to get authentication: %v", err)
	}
	if retrieved.UserID != user.ID {
		t.Errorf("Expected user ID %s, got %s", user.ID, retrieved.UserID)
	}
	if retrieved.ExpiresAt == nil {
		t.Error("Expected expiry to round-trip")
	}

	// Test unique constraint on (auth_provider_id, external_id)
	dup := &models.UserAuthentication{
		UserID:         user.ID,
		AuthProviderID: provider.ID,
		ExternalID:     "external-123",
	}
	if err := repo.Create(ctx, dup); err == nil {
		t.Error("Expected duplicate authentication creation to fail")
	}

	// Test UpdateTokens
	retrieved.AccessToken = "fresher-access"
	retrieved.RefreshToken = ""
	if err := repo.UpdateTokens(ctx, retrieved); err != nil {
		t.Fatalf("Failed to update tokens: %v", err)
	}

	updated, err := repo.GetByExternalID(ctx, provider.ID, "external-123")
	if err != nil {
		t.Fatalf("Failed to get updated authentication: %v", err)
	}
	if updated.AccessToken != "fresher-access" {
		t.Errorf("Expected updated access token, got %s", updated.AccessToken)
	}
	if updated.RefreshToken != "" {
		t.Errorf("Expected cleared refresh token, got %s", updated.RefreshToken)
	}
}

package services

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/imalexduke/outline/database"
)

// buildIDToken builds a signed compact token carrying the claims the
// normalizer reads from the ID-token source
func buildIDToken(t *testing.T) string {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":              "user@acme.io",
		"preferred_username": "jane",
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to build test token: %v", err)
	}
	return raw
}

// buildEmptyIDToken builds a signed compact token carrying no claims at all
func buildEmptyIDToken(t *testing.T) string {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}).
		SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to build test token: %v", err)
	}
	return raw
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *sql.DB {
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

package authenticator

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestClaimsString(t *testing.T) {
	claims := Claims{
		"email": "user@acme.io",
		"count": float64(3),
		"attributes": map[string]interface{}{
			"nickname": "ace",
			"nested": map[string]interface{}{
				"handle": "deep",
			},
		},
	}

	assert.Equal(t, "user@acme.io", claims.String("email"))
	assert.Equal(t, "ace", claims.String("attributes", "nickname"))
	assert.Equal(t, "deep", claims.String("attributes", "nested", "handle"))

	// Missing keys and wrong types return empty
	assert.Equal(t, "", claims.String("missing"))
	assert.Equal(t, "", claims.String("count"))
	assert.Equal(t, "", claims.String("email", "nested"))
	assert.Equal(t, "", claims.String("attributes", "missing"))
}

func TestDecodeIDToken(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "external-123",
		"email": "user@acme.io",
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to build test token: %v", err)
	}

	claims, err := DecodeIDToken(raw)
	assert.NoError(t, err)
	assert.Equal(t, "external-123", claims.String("sub"))
	assert.Equal(t, "user@acme.io", claims.String("email"))
}

func TestDecodeIDTokenBestEffort(t *testing.T) {
	// Decode failures degrade to an empty claim set plus the parse error
	for _, raw := range []string{"not-a-token", "a.b", "!!!.###.???"} {
		claims, err := DecodeIDToken(raw)
		assert.Error(t, err, raw)
		assert.Empty(t, claims)
	}

	// No token is not a decode failure
	claims, err := DecodeIDToken("")
	assert.NoError(t, err)
	assert.Empty(t, claims)
}

func TestDecodeIDTokenEmptyClaims(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}).
		SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to build test token: %v", err)
	}

	// A well-formed token that simply carries no claims decodes cleanly
	claims, err := DecodeIDToken(raw)
	assert.NoError(t, err)
	assert.Empty(t, claims)
}

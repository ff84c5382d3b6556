package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imalexduke/outline/authenticator"
)

var defaultUsernameClaim = []string{"preferred_username"}

func TestNormalizeIdentityFromProfile(t *testing.T) {
	profile := authenticator.Claims{
		"email":              "User@Acme.io",
		"sub":                "external-123",
		"name":               "Jane Doe",
		"preferred_username": "jane",
		"picture":            "https://cdn.acme.io/avatar.png",
	}

	identity, err := NormalizeIdentity(profile, authenticator.Claims{}, defaultUsernameClaim, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "user@acme.io", identity.Email)
	assert.Equal(t, "external-123", identity.SubjectID)
	assert.Equal(t, "Jane Doe", identity.Name)
	assert.Equal(t, "jane", identity.Username)
	assert.Equal(t, "https://cdn.acme.io/avatar.png", identity.AvatarURL)
}

func TestNormalizeIdentityTokenFillsGaps(t *testing.T) {
	// Required fields split across the two claim sources
	profile := authenticator.Claims{
		"sub":  "external-123",
		"name": "Jane Doe",
	}
	token := authenticator.Claims{
		"email":              "user@acme.io",
		"preferred_username": "jane",
	}

	identity, err := NormalizeIdentity(profile, token, defaultUsernameClaim, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "user@acme.io", identity.Email)
	assert.Equal(t, "jane", identity.Username)
}

func TestNormalizeIdentitySubjectFallsBackToID(t *testing.T) {
	profile := authenticator.Claims{
		"email": "user@acme.io",
		"id":    "legacy-id-7",
		"name":  "Jane Doe",
	}

	identity, err := NormalizeIdentity(profile, authenticator.Claims{}, defaultUsernameClaim, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "legacy-id-7", identity.SubjectID)
}

func TestNormalizeIdentityNameFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		profile  authenticator.Claims
		token    authenticator.Claims
		expected string
	}{
		{
			name: "username claim when name missing",
			profile: authenticator.Claims{
				"email": "user@acme.io", "sub": "1", "preferred_username": "jane",
			},
			expected: "jane",
		},
		{
			name: "token username claim when profile lacks it",
			profile: authenticator.Claims{
				"email": "user@acme.io", "sub": "1",
			},
			token:    authenticator.Claims{"preferred_username": "jane"},
			expected: "jane",
		},
		{
			name: "raw username claim as last resort",
			profile: authenticator.Claims{
				"email": "user@acme.io", "sub": "1", "username": "jdoe",
			},
			expected: "jdoe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.token == nil {
				tt.token = authenticator.Claims{}
			}
			identity, err := NormalizeIdentity(tt.profile, tt.token, defaultUsernameClaim, zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, identity.Name)
		})
	}
}

func TestNormalizeIdentityMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		profile authenticator.Claims
		field   string
	}{
		{
			name:    "no email in either source",
			profile: authenticator.Claims{"sub": "1", "name": "Jane"},
			field:   "email",
		},
		{
			name:    "no subject",
			profile: authenticator.Claims{"email": "user@acme.io", "name": "Jane"},
			field:   "subject",
		},
		{
			name:    "no name or username anywhere",
			profile: authenticator.Claims{"email": "user@acme.io", "sub": "1"},
			field:   "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeIdentity(tt.profile, authenticator.Claims{}, defaultUsernameClaim, zap.NewNop())
			require.Error(t, err)

			var incomplete *IdentityIncompleteError
			require.True(t, errors.As(err, &incomplete))
			assert.Equal(t, tt.field, incomplete.Field)
		})
	}
}

func TestNormalizeIdentityDropsDataURLAvatar(t *testing.T) {
	profile := authenticator.Claims{
		"email":   "user@acme.io",
		"sub":     "1",
		"name":    "Jane Doe",
		"picture": "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg==",
	}

	identity, err := NormalizeIdentity(profile, authenticator.Claims{}, defaultUsernameClaim, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, identity.AvatarURL)
}

func TestNormalizeIdentityNestedUsernameClaim(t *testing.T) {
	profile := authenticator.Claims{
		"email": "user@acme.io",
		"sub":   "1",
		"attributes": map[string]interface{}{
			"login": "jane",
		},
	}

	identity, err := NormalizeIdentity(profile, authenticator.Claims{}, []string{"attributes", "login"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "jane", identity.Username)
	assert.Equal(t, "jane", identity.Name)
}

package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/imalexduke/outline/authenticator"
)

// dataURLPrefix marks inline Base64 payloads masquerading as avatar URLs.
// Some providers (notably self-hosted IdPs with uploaded photos) embed the
// whole image in the picture claim.
const dataURLPrefix = "data:"

// NormalizeIdentity merges the userinfo response and the decoded ID token
// into one canonical identity. The profile wins on every claim; the token
// only fills gaps. Email, subject and name are required and missing ones
// fail with IdentityIncompleteError before any resolution happens.
//
// The username claim path is configurable per deployment; its absence is
// never fatal because the display name can come from other claims.
func NormalizeIdentity(profile, token authenticator.Claims, usernameClaim []string, logger *zap.Logger) (*authenticator.ExternalIdentity, error) {
	email := profile.String("email")
	if email == "" {
		email = token.String("email")
	}
	if email == "" {
		return nil, &IdentityIncompleteError{Field: "email"}
	}

	subject := profile.String("sub")
	if subject == "" {
		subject = profile.String("id")
	}
	if subject == "" {
		return nil, &IdentityIncompleteError{Field: "subject"}
	}

	username := profile.String(usernameClaim...)
	if username == "" {
		username = token.String(usernameClaim...)
	}

	name := profile.String("name")
	if name == "" {
		name = username
	}
	if name == "" {
		name = profile.String("username")
	}
	if name == "" {
		return nil, &IdentityIncompleteError{Field: "name"}
	}

	// Inline data URLs blow past storage limits for avatar URLs, so they
	// are dropped rather than failing the whole login.
	avatarURL := profile.String("picture")
	if strings.HasPrefix(avatarURL, dataURLPrefix) {
		logger.Debug("discarding base64 data URL avatar", zap.String("email", email))
		avatarURL = ""
	}

	return &authenticator.ExternalIdentity{
		Email:     strings.ToLower(email),
		SubjectID: subject,
		Name:      name,
		Username:  username,
		AvatarURL: avatarURL,
	}, nil
}

package services

import (
	"fmt"
)

// IdentityIncompleteError indicates a required claim could not be derived
// from either the userinfo response or the decoded ID token.
type IdentityIncompleteError struct {
	Field string
}

func (e *IdentityIncompleteError) Error() string {
	return fmt.Sprintf("unable to derive required %s claim from profile or token", e.Field)
}

// MalformedIdentityError indicates the email was present but carries no
// extractable domain, so the identity cannot be resolved to a team.
type MalformedIdentityError struct {
	Email string
}

func (e *MalformedIdentityError) Error() string {
	return fmt.Sprintf("email %q has no extractable domain", e.Email)
}

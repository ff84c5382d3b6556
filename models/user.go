package models

import (
	"time"
)

// User represents a member of a team. Users are always scoped to exactly
// one team; the same person logging into two teams yields two user records.
type User struct {
	ID        string    `json:"id" db:"id"`
	TeamID    string    `json:"team_id" db:"team_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username,omitempty" db:"username"`
	AvatarURL string    `json:"avatar_url,omitempty" db:"avatar_url"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	AuditFields
}

// UserForm represents the profile fields supplied by an identity provider
// when creating or updating a user.
type UserForm struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Validate validates the user form data
func (f *UserForm) Validate() ValidationErrors {
	var errors ValidationErrors

	if f.Name == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "Name is required"})
	}

	if len(f.Name) > 255 {
		errors = append(errors, ValidationError{Field: "name", Message: "Name must be less than 255 characters"})
	}

	if f.Email == "" {
		errors = append(errors, ValidationError{Field: "email", Message: "Email is required"})
	}

	if f.Email != "" && !isValidEmail(f.Email) {
		errors = append(errors, ValidationError{Field: "email", Message: "Email format is invalid"})
	}

	if len(f.AvatarURL) > 4096 {
		errors = append(errors, ValidationError{Field: "avatar_url", Message: "Avatar URL must be less than 4096 characters"})
	}

	return errors
}

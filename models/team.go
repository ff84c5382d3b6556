package models

import (
	"time"
)

// Team represents a tenant: an isolated workspace with its own users and
// authentication provider configurations.
type Team struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Domain    string    `json:"domain" db:"domain"`
	Subdomain string    `json:"subdomain" db:"subdomain"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	AuditFields
}

// TeamForm represents data for creating a new team during first login
type TeamForm struct {
	Name      string `json:"name"`
	Domain    string `json:"domain"`
	Subdomain string `json:"subdomain"`
}

// Validate validates the team form data
func (f *TeamForm) Validate() ValidationErrors {
	var errors ValidationErrors

	if f.Name == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "Name is required"})
	}

	if len(f.Name) > 255 {
		errors = append(errors, ValidationError{Field: "name", Message: "Name must be less than 255 characters"})
	}

	if f.Subdomain == "" {
		errors = append(errors, ValidationError{Field: "subdomain", Message: "Subdomain is required"})
	} else if !isValidSubdomain(f.Subdomain) {
		errors = append(errors, ValidationError{Field: "subdomain", Message: "Subdomain may only contain lowercase letters, numbers and hyphens"})
	}

	return errors
}

// isValidSubdomain checks the slug-safe form used for tenant subdomains
func isValidSubdomain(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
			// No leading or trailing hyphen
			if i == 0 || i == len(s)-1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

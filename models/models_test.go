package models

import (
	"testing"
)

// Test TeamForm validation
func TestTeamFormValidation(t *testing.T) {
	// Test valid form
	validForm := TeamForm{
		Name:      "Acme",
		Domain:    "acme.io",
		Subdomain: "acme",
	}
	errors := validForm.Validate()
	if errors.HasErrors() {
		t.Errorf("Expected no errors for valid form, got: %v", errors.GetMessages())
	}

	// Test invalid form
	invalidForm := TeamForm{
		Name:      "",     // Empty name
		Subdomain: "-bad", // Leading hyphen
	}
	errors = invalidForm.Validate()
	if len(errors) != 2 {
		t.Errorf("Expected 2 errors for invalid form, got: %v", errors.GetMessages())
	}
	if errors[0].Field != "name" || errors[1].Field != "subdomain" {
		t.Errorf("Expected errors on name and subdomain, got: %+v", errors)
	}
}

// Test UserForm validation
func TestUserFormValidation(t *testing.T) {
	// Test valid form
	validForm := UserForm{
		Name:  "Jane Doe",
		Email: "jane@acme.io",
	}
	errors := validForm.Validate()
	if errors.HasErrors() {
		t.Errorf("Expected no errors for valid form, got: %v", errors.GetMessages())
	}

	// Test invalid form
	invalidForm := UserForm{
		Name:  "", // Empty name
		Email: "invalid-email",
	}
	errors = invalidForm.Validate()
	if len(errors) != 2 {
		t.Errorf("Expected 2 errors for invalid form, got: %v", errors.GetMessages())
	}
	messages := errors.GetMessages()
	if messages[0] != "Name is required" || messages[1] != "Email format is invalid" {
		t.Errorf("Unexpected messages: %v", messages)
	}
}

// Test subdomain slug validation
func TestIsValidSubdomain(t *testing.T) {
	valid := []string{"acme", "acme-inc", "a1", "mail-acme"}
	for _, s := range valid {
		if !isValidSubdomain(s) {
			t.Errorf("Expected %q to be valid", s)
		}
	}

	invalid := []string{"", "Acme", "acme.io", "-acme", "acme-", "ac me"}
	for _, s := range invalid {
		if isValidSubdomain(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

package validation

import "strings"

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LoginRequest mirrors the fields needed for login validation.
type LoginRequest struct {
	Email    string
	Password string
}

// ValidateLoginRequest checks that both credential fields are present.
// No format or strength checks are applied; the store decides what matches.
func ValidateLoginRequest(req LoginRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}

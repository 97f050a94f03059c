// Package errors declares the sentinel errors shared across fintrack.
// Call sites wrap them with %w so callers can match with errors.Is.
package errors

import "fmt"

// Authentication.
var (
	ErrAuthentication     = fmt.Errorf("authentication failed")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
)

// Validation.
var (
	ErrValidation     = fmt.Errorf("validation failed")
	ErrUnknownUser    = fmt.Errorf("unknown user")
	ErrUnknownBudget  = fmt.Errorf("unknown budget")
	ErrNotBudgetOwner = fmt.Errorf("budget belongs to another user")
)

// Infrastructure.
var (
	ErrConnectivity = fmt.Errorf("shared store unreachable")
	ErrNotFound     = fmt.Errorf("not found")
)

// Package common defines shared constants and sentinel errors used across
// client and server layers of idkeeper. Callers should use errors.Is to
// match these values and errors.As to read the typed variants.
package common

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")

	// Service-level errors.
	ErrInternal           = errors.New("internal error")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("user account is not active")
	ErrMissingPassword    = errors.New("password is required")
	ErrUnknownSubject     = errors.New("unknown subject")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
)

// Reasons carried by InvalidCredentialsError.
const (
	CredentialsReasonEmail    = "email"
	CredentialsReasonPassword = "password"
)

// Reasons carried by InvalidTokenError.
const (
	TokenReasonMalformed    = "malformed"
	TokenReasonBadSignature = "bad-signature"
	TokenReasonExpired      = "expired"
)

// DuplicateEmailError reports a registration attempt for an email that is
// already taken.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("%s already exists", e.Email)
}

func (e *DuplicateEmailError) Unwrap() error { return ErrDuplicateEmail }

// InvalidCredentialsError is returned by login. Reason tells which half of
// the credentials was wrong; Error() is identical for both so the message
// never reveals whether an account exists.
type InvalidCredentialsError struct {
	Reason string
}

func (e *InvalidCredentialsError) Error() string { return ErrInvalidCredentials.Error() }

func (e *InvalidCredentialsError) Unwrap() error { return ErrInvalidCredentials }

// InvalidTokenError is returned when a session token fails verification.
type InvalidTokenError struct {
	Reason string
	Err    error
}

func (e *InvalidTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", ErrInvalidToken, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s (%s)", ErrInvalidToken, e.Reason)
}

// Unwrap exposes both the sentinel and the underlying parser error.
func (e *InvalidTokenError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidToken, e.Err}
	}
	return []error{ErrInvalidToken}
}

// ValidationError lists the input fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, name := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// TokenReason returns the reason of an InvalidTokenError found in err's chain,
// or "" if there is none.
func TokenReason(err error) string {
	var te *InvalidTokenError
	if errors.As(err, &te) {
		return te.Reason
	}
	return ""
}

// CredentialsReason returns the reason of an InvalidCredentialsError found in
// err's chain, or "" if there is none.
func CredentialsReason(err error) string {
	var ce *InvalidCredentialsError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ""
}

// Kind maps err to a stable label used in logs, metrics and wire error details.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, ErrMissingPassword):
		return "missing_password"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrUnknownSubject):
		return "unknown_subject"
	default:
		return "internal"
	}
}

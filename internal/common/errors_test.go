package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrors_MatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     string
	}{
		{"duplicate email", &DuplicateEmailError{Email: "a@x.com"}, ErrDuplicateEmail, "duplicate_email"},
		{"invalid credentials", &InvalidCredentialsError{Reason: CredentialsReasonPassword}, ErrInvalidCredentials, "invalid_credentials"},
		{"invalid token", &InvalidTokenError{Reason: TokenReasonExpired}, ErrInvalidToken, "invalid_token"},
		{"validation", &ValidationError{Fields: map[string]string{"email": "email"}}, ErrInvalidInput, "invalid_input"},
		{"inactive", ErrAccountInactive, ErrAccountInactive, "account_inactive"},
		{"missing password", ErrMissingPassword, ErrMissingPassword, "missing_password"},
		{"unknown subject", ErrUnknownSubject, ErrUnknownSubject, "unknown_subject"},
		{"internal", ErrInternal, ErrInternal, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("layer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.kind, Kind(wrapped))
		})
	}
}

func TestKind_NilAndUnknown(t *testing.T) {
	assert.Equal(t, "ok", Kind(nil))
	assert.Equal(t, "internal", Kind(errors.New("boom")))
}

func TestInvalidCredentialsError_MessageDoesNotLeakReason(t *testing.T) {
	byEmail := &InvalidCredentialsError{Reason: CredentialsReasonEmail}
	byPassword := &InvalidCredentialsError{Reason: CredentialsReasonPassword}

	assert.Equal(t, byEmail.Error(), byPassword.Error())
	assert.Equal(t, CredentialsReasonEmail, CredentialsReason(fmt.Errorf("x: %w", byEmail)))
	assert.Equal(t, "", CredentialsReason(ErrInternal))
}

func TestInvalidTokenError_UnwrapsCause(t *testing.T) {
	cause := errors.New("signature is invalid")
	err := &InvalidTokenError{Reason: TokenReasonBadSignature, Err: cause}

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, TokenReasonBadSignature, TokenReason(err))
	assert.Contains(t, err.Error(), "bad-signature")
}

func TestValidationError_SortedFields(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"password": "min", "email": "required"}}
	assert.Equal(t, "invalid input: email: required, password: min", err.Error())
	assert.Equal(t, "invalid input", (&ValidationError{}).Error())
}

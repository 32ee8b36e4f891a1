// Package auth provides the credential primitives of idkeeper: password
// hashing and signed, time-bounded session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/idkeeper/internal/common"
	"github.com/dmitrijs2005/idkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of a session token.
const DefaultTokenTTL = 2 * time.Hour

// Claims is the token payload: the standard time claims plus the subject id.
// The jti is random so two tokens for the same subject never collide.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// TokenService signs and verifies session tokens. Its secret and TTL are
// fixed at construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService builds a TokenService signing with HS256 under secret.
func NewTokenService(secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	s := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the fixed token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue mints a token for subjectID. The time claims are always derived from
// the service clock and TTL.
func (s *TokenService) Issue(subjectID string) (models.SessionToken, error) {
	if subjectID == "" {
		return models.SessionToken{}, errors.New("token subject must not be empty")
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: subjectID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return models.SessionToken{}, fmt.Errorf("sign token: %w", err)
	}

	return models.SessionToken{
		Value:     signed,
		Subject:   subjectID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks the signature and expiry of token and returns its subject.
// Every failure is an *common.InvalidTokenError.
func (s *TokenService) Verify(token string) (models.Principal, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return models.Principal{}, &common.InvalidTokenError{Reason: tokenFailureReason(err), Err: err}
	}

	if claims.UserID == "" {
		return models.Principal{}, &common.InvalidTokenError{Reason: common.TokenReasonMalformed}
	}

	return models.Principal{Subject: claims.UserID}, nil
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.TokenReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.TokenReasonBadSignature
	default:
		return common.TokenReasonMalformed
	}
}

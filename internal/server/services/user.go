// Package services contains server-side business logic. UserService owns the
// credential lifecycle: account creation, login and turning a presented
// session token back into the caller's profile.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/idkeeper/internal/common"
	"github.com/dmitrijs2005/idkeeper/internal/logging"
	"github.com/dmitrijs2005/idkeeper/internal/server/auth"
	"github.com/dmitrijs2005/idkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/idkeeper/internal/server/models"
	"github.com/dmitrijs2005/idkeeper/internal/server/repositories/users"
)

// TokenIssuer mints and checks session tokens. *auth.TokenService implements it.
type TokenIssuer interface {
	Issue(subjectID string) (models.SessionToken, error)
	Verify(token string) (models.Principal, error)
}

// Operation names used for metrics.
const (
	OpCreate        = "create"
	OpRegister      = "register"
	OpLogin         = "login"
	OpResolveCaller = "resolve_caller"
	OpRefresh       = "refresh"
)

// UserService holds no per-request state and is safe for concurrent use.
type UserService struct {
	users   users.Repository
	hasher  auth.PasswordHasher
	tokens  TokenIssuer
	logger  logging.Logger
	metrics *metrics.Metrics

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService wires the service. m may be nil.
func NewUserService(repo users.Repository, hasher auth.PasswordHasher, tokens TokenIssuer, logger logging.Logger, m *metrics.Metrics) *UserService {
	return &UserService{
		users:   repo,
		hasher:  hasher,
		tokens:  tokens,
		logger:  logger.With("module", "user_service"),
		metrics: m,
	}
}

// Create stores a new account and returns its public profile.
func (s *UserService) Create(ctx context.Context, in models.RegisterInput) (p models.Profile, err error) {
	defer func() { s.metrics.ObserveAuth(OpCreate, err) }()
	return s.create(ctx, in)
}

// Register creates an account and logs it in.
func (s *UserService) Register(ctx context.Context, in models.RegisterInput) (p models.Profile, tok models.SessionToken, err error) {
	defer func() { s.metrics.ObserveAuth(OpRegister, err) }()

	p, err = s.create(ctx, in)
	if err != nil {
		return models.Profile{}, models.SessionToken{}, err
	}

	tok, err = s.tokens.Issue(p.ID)
	if err != nil {
		return models.Profile{}, models.SessionToken{}, internalError("issue token", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", p.ID)
	return p, tok, nil
}

// Login checks credentials and returns the profile with a fresh token.
// Unknown email and wrong password both yield *common.InvalidCredentialsError
// with the same message.
func (s *UserService) Login(ctx context.Context, c models.Credentials) (p models.Profile, tok models.SessionToken, err error) {
	defer func() { s.metrics.ObserveAuth(OpLogin, err) }()

	if err := validateInput(c); err != nil {
		return models.Profile{}, models.SessionToken{}, err
	}

	user, err := s.users.GetUserByEmail(ctx, c.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(c.Password, s.dummy())
			return models.Profile{}, models.SessionToken{}, &common.InvalidCredentialsError{Reason: common.CredentialsReasonEmail}
		}
		return models.Profile{}, models.SessionToken{}, internalError("find user", err)
	}

	if user.PasswordHash == "" {
		return models.Profile{}, models.SessionToken{}, common.ErrMissingPassword
	}
	if !user.IsActive {
		return models.Profile{}, models.SessionToken{}, common.ErrAccountInactive
	}
	if !s.hasher.Verify(c.Password, user.PasswordHash) {
		return models.Profile{}, models.SessionToken{}, &common.InvalidCredentialsError{Reason: common.CredentialsReasonPassword}
	}

	tok, err = s.tokens.Issue(user.ID)
	if err != nil {
		return models.Profile{}, models.SessionToken{}, internalError("issue token", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return user.Public(), tok, nil
}

// ResolveCaller returns the profile of the account a token was issued for.
func (s *UserService) ResolveCaller(ctx context.Context, token string) (p models.Profile, err error) {
	defer func() { s.metrics.ObserveAuth(OpResolveCaller, err) }()
	return s.resolve(ctx, token)
}

// Refresh resolves token and issues a new one for the same subject.
func (s *UserService) Refresh(ctx context.Context, token string) (p models.Profile, tok models.SessionToken, err error) {
	defer func() { s.metrics.ObserveAuth(OpRefresh, err) }()

	p, err = s.resolve(ctx, token)
	if err != nil {
		return models.Profile{}, models.SessionToken{}, err
	}

	tok, err = s.tokens.Issue(p.ID)
	if err != nil {
		return models.Profile{}, models.SessionToken{}, internalError("issue token", err)
	}
	return p, tok, nil
}

func (s *UserService) create(ctx context.Context, in models.RegisterInput) (models.Profile, error) {
	if err := validateInput(in); err != nil {
		return models.Profile{}, err
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return models.Profile{}, &common.DuplicateEmailError{Email: in.Email}
	case !errors.Is(err, common.ErrorNotFound):
		return models.Profile{}, internalError("find user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.Profile{}, internalError("hash password", err)
	}

	user := &models.User{
		Profile: models.Profile{
			Email:    in.Email,
			Name:     in.Name,
			Roles:    []string{models.DefaultRole},
			IsActive: true,
		},
		PasswordHash: hash,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return models.Profile{}, &common.DuplicateEmailError{Email: in.Email}
		}
		return models.Profile{}, internalError("create user", err)
	}

	return created.Public(), nil
}

func (s *UserService) resolve(ctx context.Context, token string) (models.Profile, error) {
	principal, err := s.tokens.Verify(token)
	if err != nil {
		return models.Profile{}, err
	}

	user, err := s.users.GetUserByID(ctx, principal.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Profile{}, common.ErrUnknownSubject
		}
		return models.Profile{}, internalError("find user", err)
	}

	return user.Public(), nil
}

// dummy returns a valid hash that no real password is checked against. Login
// verifies against it for unknown emails so both paths pay for one bcrypt run.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("idkeeper-unknown-account")
		if err != nil {
			s.logger.Warn(context.Background(), "could not build timing hash", "error", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// internalError keeps the cause in the message for logs but only the
// ErrInternal sentinel in the chain.
func internalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrInternal, op, err)
}

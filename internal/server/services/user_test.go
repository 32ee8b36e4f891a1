package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/idkeeper/internal/common"
	"github.com/dmitrijs2005/idkeeper/internal/logging"
	"github.com/dmitrijs2005/idkeeper/internal/server/auth"
	"github.com/dmitrijs2005/idkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/idkeeper/internal/server/models"
	"github.com/dmitrijs2005/idkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc    *UserService
	repo   *users.InMemoryRepository
	tokens *auth.TokenService
	now    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tokens, err := auth.NewTokenService([]byte("test-secret"), auth.DefaultTokenTTL,
		auth.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	repo := users.NewInMemoryRepository()
	return &fixture{
		svc:    NewUserService(repo, hasher, tokens, logging.Nop(), nil),
		repo:   repo,
		tokens: tokens,
		now:    &now,
	}
}

func register(t *testing.T, f *fixture, email, password string) (models.Profile, models.SessionToken) {
	t.Helper()
	p, tok, err := f.svc.Register(context.Background(), models.RegisterInput{Email: email, Password: password, Name: "Test"})
	require.NoError(t, err)
	return p, tok
}

func TestRegisterLoginResolve_Example(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, regTok := register(t, f, "a@x.com", "secret1")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, []string{models.DefaultRole}, p.Roles)
	assert.True(t, p.IsActive)

	principal, err := f.tokens.Verify(regTok.Value)
	require.NoError(t, err)
	assert.Equal(t, p.ID, principal.Subject)

	lp, loginTok, err := f.svc.Login(ctx, models.Credentials{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, lp.ID)

	caller, err := f.svc.ResolveCaller(ctx, loginTok.Value)
	require.NoError(t, err)
	assert.Equal(t, p, caller)
}

func TestLogin_InvalidCredentialsReasons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	register(t, f, "a@x.com", "secret1")

	_, _, wrongPw := f.svc.Login(ctx, models.Credentials{Email: "a@x.com", Password: "wrong"})
	require.ErrorIs(t, wrongPw, common.ErrInvalidCredentials)
	assert.Equal(t, common.CredentialsReasonPassword, common.CredentialsReason(wrongPw))

	_, _, unknown := f.svc.Login(ctx, models.Credentials{Email: "b@x.com", Password: "secret1"})
	require.ErrorIs(t, unknown, common.ErrInvalidCredentials)
	assert.Equal(t, common.CredentialsReasonEmail, common.CredentialsReason(unknown))

	assert.Equal(t, wrongPw.Error(), unknown.Error(), "messages must not reveal which part was wrong")
}

func TestRegister_DuplicateEmailLeavesOneAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, _ := register(t, f, "a@x.com", "secret1")

	_, _, err := f.svc.Register(ctx, models.RegisterInput{Email: "a@x.com", Password: "other-pass"})
	require.ErrorIs(t, err, common.ErrDuplicateEmail)
	var dup *common.DuplicateEmailError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a@x.com", dup.Email)

	stored, err := f.repo.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)

	_, _, err = f.svc.Login(ctx, models.Credentials{Email: "a@x.com", Password: "secret1"})
	assert.NoError(t, err, "original password must still work")
}

func TestCreate_ReturnsProfileWithoutToken(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), models.RegisterInput{Email: "c@x.com", Password: "secret1", Name: "C"})
	require.NoError(t, err)
	assert.Equal(t, "C", p.Name)

	stored, err := f.repo.GetUserByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegister_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		in    models.RegisterInput
		field string
	}{
		{"missing email", models.RegisterInput{Password: "secret1"}, "email"},
		{"bad email", models.RegisterInput{Email: "nope", Password: "secret1"}, "email"},
		{"short password", models.RegisterInput{Email: "a@x.com", Password: "123"}, "password"},
		{"missing password", models.RegisterInput{Email: "a@x.com"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.svc.Register(context.Background(), tt.in)
			require.ErrorIs(t, err, common.ErrInvalidInput)
			var ve *common.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestLogin_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Login(context.Background(), models.Credentials{Email: "a@x.com"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestLogin_InactiveAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = f.repo.Create(ctx, &models.User{
		Profile:      models.Profile{Email: "off@x.com", Roles: []string{models.DefaultRole}, IsActive: false},
		PasswordHash: string(hash),
	})
	require.NoError(t, err)

	_, _, err = f.svc.Login(ctx, models.Credentials{Email: "off@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrAccountInactive)
}

func TestLogin_MissingStoredPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.repo.Create(ctx, &models.User{
		Profile: models.Profile{Email: "nopw@x.com", IsActive: true},
	})
	require.NoError(t, err)

	_, _, err = f.svc.Login(ctx, models.Credentials{Email: "nopw@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrMissingPassword)
}

func TestRefresh_NewTokenSameSubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, tok := register(t, f, "a@x.com", "secret1")

	rp, fresh, err := f.svc.Refresh(ctx, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, p.ID, rp.ID)
	assert.NotEqual(t, tok.Value, fresh.Value)

	caller, err := f.svc.ResolveCaller(ctx, fresh.Value)
	require.NoError(t, err)
	assert.Equal(t, p.ID, caller.ID)
}

func TestResolveCaller_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tok := register(t, f, "a@x.com", "secret1")

	_, err := f.svc.ResolveCaller(ctx, "garbage")
	require.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Equal(t, common.TokenReasonMalformed, common.TokenReason(err))

	ghost, err := f.tokens.Issue(uuid.NewString())
	require.NoError(t, err)
	_, err = f.svc.ResolveCaller(ctx, ghost.Value)
	assert.ErrorIs(t, err, common.ErrUnknownSubject)

	*f.now = f.now.Add(auth.DefaultTokenTTL + time.Second)
	_, err = f.svc.ResolveCaller(ctx, tok.Value)
	require.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Equal(t, common.TokenReasonExpired, common.TokenReason(err))

	_, _, err = f.svc.Refresh(ctx, tok.Value)
	assert.ErrorIs(t, err, common.ErrInvalidToken, "an expired token cannot be refreshed")
}

func TestUserService_RecordsMetrics(t *testing.T) {
	f := newFixture(t)
	reg := prometheus.NewRegistry()
	f.svc.metrics = metrics.New(reg)

	register(t, f, "a@x.com", "secret1")
	_, _, err := f.svc.Login(context.Background(), models.Credentials{Email: "a@x.com", Password: "bad"})
	require.Error(t, err)

	n, err := testutil.GatherAndCount(reg, "idkeeper_auth_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "register/ok and login/invalid_credentials")
}

func TestInternalError_HidesCauseFromChain(t *testing.T) {
	cause := common.ErrorNotFound
	err := internalError("find user", cause)

	assert.ErrorIs(t, err, common.ErrInternal)
	assert.False(t, errors.Is(err, common.ErrorNotFound))
	assert.Contains(t, err.Error(), "find user")
}

// Package services contains application services for the idkeeper client.
// SessionService keeps the current session token and user in memory and
// drives the server calls the CLI needs.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/idkeeper/internal/api"
	"github.com/dmitrijs2005/idkeeper/internal/client/client"
	"github.com/dmitrijs2005/idkeeper/internal/common"
	"github.com/dmitrijs2005/idkeeper/internal/shared"
)

// ErrNotLoggedIn is returned by calls that need a session when there is none.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is the state kept after a successful register or login.
type Session struct {
	User      api.User
	Token     string
	ExpiresAt time.Time
}

// SessionService defines the authentication operations of the CLI.
//
// All methods must honor context cancellation/timeouts.
type SessionService interface {
	Register(ctx context.Context, email string, password []byte, name string) (*Session, error)
	Login(ctx context.Context, email string, password []byte) (*Session, error)
	WhoAmI(ctx context.Context) (*api.User, error)
	Refresh(ctx context.Context) (*Session, error)
	Logout()
	Current() (*Session, bool)
	Ping(ctx context.Context) error
	Close() error
}

type sessionService struct {
	client client.Client

	mu      sync.RWMutex
	session *Session
}

func NewSessionService(c client.Client) SessionService {
	return &sessionService{client: c}
}

// Register creates an account and starts a session for it. The password
// buffer is wiped before returning.
func (s *sessionService) Register(ctx context.Context, email string, password []byte, name string) (*Session, error) {
	defer shared.WipeByteArray(password)

	resp, err := s.client.Register(ctx, email, string(password), name)
	if err != nil {
		return nil, err
	}
	return s.start(resp), nil
}

// Login authenticates and starts a session. The password buffer is wiped
// before returning.
func (s *sessionService) Login(ctx context.Context, email string, password []byte) (*Session, error) {
	defer shared.WipeByteArray(password)

	resp, err := s.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, err
	}
	return s.start(resp), nil
}

// WhoAmI asks the server who the current token belongs to. A token the
// server rejects ends the session.
func (s *sessionService) WhoAmI(ctx context.Context) (*api.User, error) {
	cur, ok := s.Current()
	if !ok {
		return nil, ErrNotLoggedIn
	}

	u, err := s.client.WhoAmI(ctx, cur.Token)
	if err != nil {
		s.dropIfRejected(err)
		return nil, err
	}

	s.mu.Lock()
	if s.session != nil && s.session.Token == cur.Token {
		s.session.User = *u
	}
	s.mu.Unlock()

	return u, nil
}

// Refresh trades the current token for a new one.
func (s *sessionService) Refresh(ctx context.Context) (*Session, error) {
	cur, ok := s.Current()
	if !ok {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.CheckToken(ctx, cur.Token)
	if err != nil {
		s.dropIfRejected(err)
		return nil, err
	}
	return s.start(resp), nil
}

// Logout forgets the session locally. Tokens are stateless, so there is
// nothing to tell the server.
func (s *sessionService) Logout() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

// Current returns a copy of the active session.
func (s *sessionService) Current() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, false
	}
	cp := *s.session
	return &cp, true
}

func (s *sessionService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *sessionService) Close() error {
	return s.client.Close()
}

func (s *sessionService) start(resp *api.AuthResponse) *Session {
	sess := &Session{User: resp.User, Token: resp.Token, ExpiresAt: resp.ExpiresAt}

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	cp := *sess
	return &cp
}

func (s *sessionService) dropIfRejected(err error) {
	if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrUnknownSubject) {
		s.Logout()
	}
}

package client

import (
	"context"

	"github.com/dmitrijs2005/idkeeper/internal/api"
)

type Client interface {
	Close() error
	Register(ctx context.Context, email, password, name string) (*api.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	WhoAmI(ctx context.Context, token string) (*api.User, error)
	CheckToken(ctx context.Context, token string) (*api.AuthResponse, error)
	Ping(ctx context.Context) error
}

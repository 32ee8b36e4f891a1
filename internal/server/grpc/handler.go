package grpc

import (
	"context"

	"github.com/dmitrijs2005/idkeeper/internal/api"
	"github.com/dmitrijs2005/idkeeper/internal/server/models"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error) {
	p, tok, err := s.users.Register(ctx, models.RegisterInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodRegister, err)
	}
	return authResponse(p, tok), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.AuthResponse, error) {
	p, tok, err := s.users.Login(ctx, models.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodLogin, err)
	}
	return authResponse(p, tok), nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *api.WhoAmIRequest) (*api.WhoAmIResponse, error) {
	p, err := s.users.ResolveCaller(ctx, accessTokenFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodWhoAmI, err)
	}
	return &api.WhoAmIResponse{User: toAPIUser(p)}, nil
}

func (s *GRPCServer) CheckToken(ctx context.Context, _ *api.CheckTokenRequest) (*api.AuthResponse, error) {
	p, tok, err := s.users.Refresh(ctx, accessTokenFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodCheckToken, err)
	}
	return authResponse(p, tok), nil
}

func (s *GRPCServer) Ping(context.Context, *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func toAPIUser(p models.Profile) api.User {
	return api.User{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Roles:     p.Roles,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}

func authResponse(p models.Profile, tok models.SessionToken) *api.AuthResponse {
	return &api.AuthResponse{User: toAPIUser(p), Token: tok.Value, ExpiresAt: tok.ExpiresAt}
}

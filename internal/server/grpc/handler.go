package grpc

import (
	"context"

	"github.com/dmitrijs2005/usersvc/internal/api"
	"github.com/dmitrijs2005/usersvc/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) SignUp(ctx context.Context, req *api.SignUpRequest) (*api.Empty, error) {

	if err := validateSignUp(req); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	err := s.identity.SignUp(ctx, services.SignUpDraft{
		ID:        req.ID,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Claims:    req.Claims,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.Empty{}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.TokenResponse, error) {

	if err := validateSignIn(req); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	token, err := s.identity.SignIn(ctx, services.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &api.TokenResponse{
		AccessToken: token.AccessToken,
		Expires:     token.Expires,
		ID:          token.ID,
		Role:        token.Role,
		Email:       token.Email,
		Claims:      token.Claims,
	}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *api.Empty) (*api.UserResponse, error) {

	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	return s.lookup(ctx, userID)
}

func (s *GRPCServer) GetUser(ctx context.Context, req *api.GetUserRequest) (*api.UserResponse, error) {

	if err := validateGetUser(req); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.lookup(ctx, req.ID)
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.Empty) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) lookup(ctx context.Context, id string) (*api.UserResponse, error) {
	identity, err := s.identity.Lookup(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if identity == nil {
		return nil, status.Error(codes.NotFound, "not found")
	}

	return &api.UserResponse{
		ID:        identity.ID,
		Email:     identity.Email,
		Role:      identity.Role,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		CreatedAt: identity.CreatedAt,
		IsActive:  identity.IsActive,
		Claims:    identity.Claims,
	}, nil
}

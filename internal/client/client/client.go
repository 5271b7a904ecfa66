package client

import (
	"context"

	"github.com/dmitrijs2005/usersvc/internal/api"
)

type Client interface {
	Close() error
	SignUp(ctx context.Context, req *api.SignUpRequest) error
	SignIn(ctx context.Context, email, password string) (*api.TokenResponse, error)
	Me(ctx context.Context) (*api.UserResponse, error)
	GetUser(ctx context.Context, id string) (*api.UserResponse, error)
	Ping(ctx context.Context) error
	SignedIn() bool
	SignOut()
}

// Package api defines the AccountService wire contract shared by the gRPC
// server and client: messages, method names, the service descriptor and a
// JSON codec.
package api

import (
	"time"

	"github.com/dmitrijs2005/usersvc/internal/server/models"
)

type Empty struct{}

type SignUpRequest struct {
	ID        string        `json:"id,omitempty"`
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	FirstName string        `json:"firstName,omitempty"`
	LastName  string        `json:"lastName,omitempty"`
	Role      string        `json:"role,omitempty"`
	Claims    models.Claims `json:"claims"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse mirrors the issued token. Expires is Unix milliseconds.
type TokenResponse struct {
	AccessToken string        `json:"accessToken"`
	Expires     int64         `json:"expires"`
	ID          string        `json:"id"`
	Role        string        `json:"role"`
	Email       string        `json:"email"`
	Claims      models.Claims `json:"claims"`
}

type GetUserRequest struct {
	ID string `json:"id"`
}

type UserResponse struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Role      string        `json:"role"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	CreatedAt time.Time     `json:"createdAt"`
	IsActive  bool          `json:"isActive"`
	Claims    models.Claims `json:"claims"`
}

type PingResponse struct {
	Status string `json:"status"`
}

package services

import (
	"time"

	"github.com/dmitrijs2005/usersvc/internal/server/models"
)

// SignUpDraft is an unvalidated registration request. ID may be left empty
// to have one assigned.
type SignUpDraft struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	Claims    models.Claims
}

type Credentials struct {
	Email    string
	Password string
}

// Identity is the public view of a stored user. It never carries password
// material.
type Identity struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Role      string        `json:"role"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	CreatedAt time.Time     `json:"createdAt"`
	IsActive  bool          `json:"isActive"`
	Claims    models.Claims `json:"claims"`
}

// ProfileUpdate lists the fields to change; nil fields are left as stored.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Role      *string
	Claims    *models.Claims
	IsActive  *bool
}

func identityOf(u *models.User) *Identity {
	return &Identity{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		IsActive:  u.IsActive,
		Claims:    u.Claims.Clone(),
	}
}

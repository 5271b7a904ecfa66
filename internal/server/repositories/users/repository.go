// Package users persists credential records.
package users

import (
	"context"

	"github.com/dmitrijs2005/usersvc/internal/server/models"
)

// Repository is the credential store used by the identity workflow.
//
// Lookups return common.ErrorNotFound when nothing matches. Insert returns
// common.ErrorAlreadyExists when the id or normalized email is taken; this is
// the authoritative signal when two sign-ups race. Update returns
// common.ErrorNotFound for an unknown id.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// Package users is the user directory: persistent storage of accounts
// keyed by id and by unique email.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository stores users.
//
// Create returns common.ErrorAlreadyExists when the email is taken, and the
// Get methods return common.ErrorNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

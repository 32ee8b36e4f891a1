// Package users stores account records. Lookups that match nothing return
// common.ErrorNotFound; a second account with an existing email returns
// common.ErrDuplicateKey.
package users

import (
	"context"

	"github.com/dmitrijs2005/idkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

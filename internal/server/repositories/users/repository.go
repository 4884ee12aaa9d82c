// Package users stores registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/aichopaicho/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in its generated ID. A taken
	// username yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}

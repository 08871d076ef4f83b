// Package accounts stores user accounts. Implementations must enforce email
// uniqueness atomically at write time and report a violation as
// common.ErrAccountExists.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/memberkeeper/internal/server/models"
)

type Repository interface {
	// Create persists account and fills in store-managed timestamps.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	// FindByEmail returns common.ErrorNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// FindByID returns common.ErrorNotFound when no account matches.
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

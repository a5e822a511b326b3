// Package users is the PostgreSQL-backed store of user records, including
// the builder for partial-update statements.
package users

import (
	"context"

	"github.com/dmitrijs2005/userdir/internal/server/models"
)

// Repository is the store contract consumed by the user service.
// Lookups that find nothing return common.ErrorNotFound; uniqueness
// violations return common.ErrConflict; everything else wraps
// common.ErrStore.
type Repository interface {
	// FindByEmailOrUsername returns every record whose email or username
	// matches. An empty result is not an error.
	FindByEmailOrUsername(ctx context.Context, email, username string) ([]*models.User, error)
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CountAll(ctx context.Context) (int64, error)
	// ListPage returns users newest first.
	ListPage(ctx context.Context, offset, limit int) ([]*models.User, error)
	// ExecUpdate runs a statement built by BuildUpdate and returns the
	// updated record.
	ExecUpdate(ctx context.Context, st Statement) (*models.User, error)
	DeleteByID(ctx context.Context, id string) error
}

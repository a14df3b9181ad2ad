package users

import (
	"context"

	"github.com/paket-core/funder/internal/server/models"
)

// Repository persists users.
type Repository interface {
	// Create inserts a user. Returns a DuplicateKey error naming the
	// colliding field ("pubkey" or "call_sign").
	Create(ctx context.Context, user *models.User) error

	// GetByPubkey and GetByCallSign return the single matching user.
	// Returns ErrNotFound for no match and ErrDataIntegrity for several.
	GetByPubkey(ctx context.Context, pubkey string) (*models.User, error)
	GetByCallSign(ctx context.Context, callSign string) (*models.User, error)

	// LockForUpdate takes a row lock on the user for the rest of the
	// enclosing transaction. Returns ErrNotFound if the user does not exist.
	LockForUpdate(ctx context.Context, pubkey string) error

	List(ctx context.Context) ([]*models.User, error)
}

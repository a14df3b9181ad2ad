package userinfos

import (
	"context"
	"time"

	"github.com/paket-core/funder/internal/server/models"
)

// Repository persists append-only user info snapshots.
type Repository interface {
	// Insert appends a snapshot holding only the supplied fields.
	// Returns ErrNotFound if the user does not exist.
	Insert(ctx context.Context, pubkey string, update models.UserInfoUpdate, at time.Time) error

	// Current merges the history: each field takes its most recent non-null
	// value. Returns ErrNotFound if the user has no snapshot.
	Current(ctx context.Context, pubkey string) (*models.UserInfo, error)
}

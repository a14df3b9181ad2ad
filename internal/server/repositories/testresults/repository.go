package testresults

import (
	"context"

	"github.com/paket-core/funder/internal/server/models"
)

// Repository persists append-only test outcomes.
type Repository interface {
	// Insert appends a result. Returns ErrNotFound if the user does not exist.
	Insert(ctx context.Context, result *models.TestResult) error

	// Latest returns the result of the most recent row for the named test,
	// or 0 when the user was never tested.
	Latest(ctx context.Context, pubkey, name string) (int64, error)
}

package purchases

import (
	"context"
	"time"

	"github.com/paket-core/funder/internal/server/models"
)

// Repository persists purchases. Purchases are never deleted.
type Repository interface {
	// Create inserts p and fills its ID. Returns a DuplicateKey error if the
	// payment address is already used and ErrNotFound for an unknown user.
	Create(ctx context.Context, p *models.Purchase) error

	// GetByAddress returns the purchase paid to address or ErrNotFound.
	GetByAddress(ctx context.Context, address string) (*models.Purchase, error)

	// SumEuroCents totals the user's purchases with the given status created
	// strictly after since. An empty set sums to 0.
	SumEuroCents(ctx context.Context, pubkey string, status models.PaymentStatus, since time.Time) (int64, error)

	// ListByStatus returns every purchase with the given status, oldest first.
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]*models.Purchase, error)

	// UpdateStatus moves the purchase at address from one status to another
	// and reports whether a row changed.
	UpdateStatus(ctx context.Context, address string, from, to models.PaymentStatus) (bool, error)
}

package services

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/paket-core/funder/internal/common"
	"github.com/paket-core/funder/internal/dbx"
	"github.com/paket-core/funder/internal/lockx"
	"github.com/paket-core/funder/internal/logging"
	"github.com/paket-core/funder/internal/server/config"
	"github.com/paket-core/funder/internal/server/models"
	"github.com/paket-core/funder/internal/server/repositories/repomanager"
	"github.com/paket-core/funder/internal/server/wallet"
)

// PurchaseRequest carries the caller's view of a purchase. Currencies must
// match their codes exactly; an empty requested currency means BUL.
type PurchaseRequest struct {
	UserPubkey        string
	EuroCents         int64
	PaymentCurrency   string
	RequestedCurrency string
}

// PurchaseService is the purchase ledger. Requests for one user are
// serialized: the quota check, the address issuance and the insert happen
// under a per-user lock and inside one transaction holding the user row.
type PurchaseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	allowance   *AllowanceService
	issuer      wallet.Issuer
	xpub        string
	testnet     bool
	locks       *lockx.Keyed
	logger      logging.Logger
	now         func() time.Time
}

func NewPurchaseService(db *sql.DB, m repomanager.RepositoryManager, allowance *AllowanceService, issuer wallet.Issuer, cfg *config.Config, logger logging.Logger) *PurchaseService {
	return &PurchaseService{
		db:          db,
		repomanager: m,
		allowance:   allowance,
		issuer:      issuer,
		xpub:        cfg.WalletXPub,
		testnet:     cfg.Testnet,
		locks:       &lockx.Keyed{},
		logger:      logger.With("module", "purchases"),
		now:         time.Now,
	}
}

// RequestPurchase checks the user's remaining allowance, issues a fresh
// payment address and records an unpaid purchase for it.
//
// If the insert fails after an address was issued, that address is simply
// abandoned; it is never reused.
func (s *PurchaseService) RequestPurchase(ctx context.Context, req PurchaseRequest) (*models.Purchase, error) {
	p, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, p.UserPubkey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p.Timestamp = s.now()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).LockForUpdate(ctx, p.UserPubkey); err != nil {
			return err
		}

		quota, err := s.allowance.quota(ctx, tx, p.UserPubkey, p.Timestamp)
		if err != nil {
			return err
		}
		if remaining := quota.Remaining(); remaining < p.EuroCents {
			return common.WithMetadata(common.KindQuotaExceeded,
				p.UserPubkey+" is allowed to purchase up to "+strconv.FormatInt(remaining, 10)+
					" euro-cents when "+strconv.FormatInt(p.EuroCents, 10)+" are required",
				map[string]string{
					"user":      p.UserPubkey,
					"remaining": strconv.FormatInt(remaining, 10),
					"requested": strconv.FormatInt(p.EuroCents, 10),
				})
		}

		network := wallet.Network(string(p.PaymentCurrency), s.testnet)
		address, err := s.issuer.IssueAddress(ctx, network, s.xpub)
		if err != nil {
			return common.Wrap(common.KindInternal, "payment address issuance failed", err)
		}
		p.PaymentAddress = address

		return s.repomanager.Purchases(tx).Create(ctx, p)
	})
	if err != nil {
		s.logger.Warn(ctx, "purchase rejected", "user", p.UserPubkey, "euro_cents", p.EuroCents,
			"kind", common.KindOf(err), "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "purchase requested", "user", p.UserPubkey, "euro_cents", p.EuroCents,
		"payment_currency", p.PaymentCurrency, "requested_currency", p.RequestedCurrency,
		"address", p.PaymentAddress)
	return p, nil
}

func (s *PurchaseService) validate(req PurchaseRequest) (*models.Purchase, error) {
	if req.UserPubkey == "" {
		return nil, common.New(common.KindInvalidArgument, "user_pubkey is required")
	}
	if req.EuroCents <= 0 {
		return nil, common.Newf(common.KindInvalidArgument, "euro_cents must be positive, got %d", req.EuroCents)
	}
	payment, err := models.ParsePaymentCurrency(req.PaymentCurrency)
	if err != nil {
		return nil, common.Wrap(common.KindInvalidArgument, "invalid payment currency", err)
	}
	requested, err := models.ParseRequestedCurrency(req.RequestedCurrency)
	if err != nil {
		return nil, common.Wrap(common.KindInvalidArgument, "invalid requested currency", err)
	}

	return &models.Purchase{
		UserPubkey:        req.UserPubkey,
		PaymentCurrency:   payment,
		RequestedCurrency: requested,
		EuroCents:         req.EuroCents,
		Paid:              models.Unpaid,
	}, nil
}

// ConfirmPayment sets the paid flag of the purchase at address. Repeating
// the current state is a no-op; moving a paid purchase back to unpaid is
// rejected.
func (s *PurchaseService) ConfirmPayment(ctx context.Context, address string, paid bool) (*models.Purchase, error) {
	if address == "" {
		return nil, common.New(common.KindInvalidArgument, "payment address is required")
	}
	repo := s.repomanager.Purchases(s.db)

	p, err := repo.GetByAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	target := models.StatusOf(paid)
	if p.Paid == target {
		return p, nil
	}
	if target == models.Unpaid {
		return nil, common.WithMetadata(common.KindInvalidArgument,
			"purchase at "+address+" is already paid",
			map[string]string{"payment_address": address})
	}

	changed, err := repo.UpdateStatus(ctx, address, p.Paid, target)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Someone else moved it first; report what is stored now.
		return repo.GetByAddress(ctx, address)
	}

	p.Paid = target
	s.logger.Info(ctx, "purchase paid", "user", p.UserPubkey, "address", address, "euro_cents", p.EuroCents)
	return p, nil
}

// GetPurchase returns the purchase paid to address.
func (s *PurchaseService) GetPurchase(ctx context.Context, address string) (*models.Purchase, error) {
	if address == "" {
		return nil, common.New(common.KindInvalidArgument, "payment address is required")
	}
	return s.repomanager.Purchases(s.db).GetByAddress(ctx, address)
}

// ListUnpaid returns every unpaid purchase, oldest first.
func (s *PurchaseService) ListUnpaid(ctx context.Context) ([]*models.Purchase, error) {
	return s.repomanager.Purchases(s.db).ListByStatus(ctx, models.Unpaid)
}

// ListPaid returns every paid purchase, oldest first.
func (s *PurchaseService) ListPaid(ctx context.Context) ([]*models.Purchase, error) {
	return s.repomanager.Purchases(s.db).ListByStatus(ctx, models.Paid)
}

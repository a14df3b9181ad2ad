package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/paket-core/funder/internal/common"
	"github.com/paket-core/funder/internal/dbx"
	"github.com/paket-core/funder/internal/server/config"
	"github.com/paket-core/funder/internal/server/models"
	"github.com/paket-core/funder/internal/server/repositories/repomanager"
)

// Quota is a user's position within the expenditure window.
type Quota struct {
	Allowance   int64
	Expenditure int64 // paid purchases
	Reserved    int64 // unpaid purchases
}

// Remaining is what the user may still request. Unpaid purchases count
// against it until they are confirmed or fall out of the window.
func (q Quota) Remaining() int64 {
	return q.Allowance - q.Expenditure - q.Reserved
}

// AllowanceService derives monthly allowances from KYC results and
// expenditure from the purchase ledger.
type AllowanceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	basicAllowance   int64
	minimumAllowance int64
	window           time.Duration
}

func NewAllowanceService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AllowanceService {
	return &AllowanceService{
		db:               db,
		repomanager:      m,
		basicAllowance:   cfg.BasicMonthlyAllowance,
		minimumAllowance: cfg.MinimumMonthlyAllowance,
		window:           cfg.ExpenditureWindow,
	}
}

// MinimumAllowance is the configured lower tier. No test result grants it yet.
func (s *AllowanceService) MinimumAllowance() int64 {
	return s.minimumAllowance
}

// MonthlyAllowance is the basic allowance when the latest "basic" result is a
// pass and 0 otherwise.
func (s *AllowanceService) MonthlyAllowance(ctx context.Context, pubkey string) (int64, error) {
	return s.monthlyAllowance(ctx, s.db, pubkey)
}

// MonthlyExpenditure sums the user's paid purchases created after now minus
// the window.
func (s *AllowanceService) MonthlyExpenditure(ctx context.Context, pubkey string, now time.Time) (int64, error) {
	return s.repomanager.Purchases(s.db).SumEuroCents(ctx, pubkey, models.Paid, s.windowStart(now))
}

// RemainingAllowance is the allowance minus paid and reserved amounts.
func (s *AllowanceService) RemainingAllowance(ctx context.Context, pubkey string, now time.Time) (int64, error) {
	q, err := s.quota(ctx, s.db, pubkey, now)
	if err != nil {
		return 0, err
	}
	return q.Remaining(), nil
}

// Quota returns the full breakdown behind RemainingAllowance.
func (s *AllowanceService) Quota(ctx context.Context, pubkey string, now time.Time) (Quota, error) {
	return s.quota(ctx, s.db, pubkey, now)
}

func (s *AllowanceService) quota(ctx context.Context, db dbx.DBTX, pubkey string, now time.Time) (Quota, error) {
	var (
		q   Quota
		err error
	)
	if q.Allowance, err = s.monthlyAllowance(ctx, db, pubkey); err != nil {
		return Quota{}, err
	}

	purchases := s.repomanager.Purchases(db)
	since := s.windowStart(now)
	if q.Expenditure, err = purchases.SumEuroCents(ctx, pubkey, models.Paid, since); err != nil {
		return Quota{}, err
	}
	if q.Reserved, err = purchases.SumEuroCents(ctx, pubkey, models.Unpaid, since); err != nil {
		return Quota{}, err
	}
	return q, nil
}

func (s *AllowanceService) monthlyAllowance(ctx context.Context, db dbx.DBTX, pubkey string) (int64, error) {
	result, err := s.repomanager.TestResults(db).Latest(ctx, pubkey, common.BasicTestName)
	if err != nil {
		return 0, err
	}
	if result > 0 {
		return s.basicAllowance, nil
	}
	return 0, nil
}

func (s *AllowanceService) windowStart(now time.Time) time.Time {
	return now.Add(-s.window)
}

package services

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/paket-core/funder/internal/logging"
	"github.com/paket-core/funder/internal/server/chain"
)

// defaultMonitorWorkers bounds concurrent explorer lookups.
const defaultMonitorWorkers = 4

// MonitorReport summarises one pass over the unpaid purchases.
type MonitorReport struct {
	Checked   int
	Confirmed int
	Failed    int
}

// PaymentMonitor marks purchases as paid once their payment address holds
// a positive balance.
type PaymentMonitor struct {
	purchases *PurchaseService
	checker   chain.BalanceChecker
	logger    logging.Logger
	workers   int
}

func NewPaymentMonitor(purchases *PurchaseService, checker chain.BalanceChecker, logger logging.Logger) *PaymentMonitor {
	return &PaymentMonitor{
		purchases: purchases,
		checker:   checker,
		logger:    logger.With("module", "monitor"),
		workers:   defaultMonitorWorkers,
	}
}

// CheckUnpaid looks at every unpaid purchase once. Lookup failures are
// logged and counted; they do not stop the pass.
func (m *PaymentMonitor) CheckUnpaid(ctx context.Context) (MonitorReport, error) {
	unpaid, err := m.purchases.ListUnpaid(ctx)
	if err != nil {
		return MonitorReport{}, err
	}
	m.logger.Info(ctx, "purchases to check", "count", len(unpaid))

	var confirmed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for _, p := range unpaid {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			balance, err := m.checker.Balance(gctx, p.PaymentCurrency, p.PaymentAddress)
			if err != nil {
				failed.Add(1)
				m.logger.Warn(gctx, "balance lookup failed", "address", p.PaymentAddress, "error", err)
				return nil
			}
			m.logger.Debug(gctx, "address balance", "address", p.PaymentAddress,
				"balance", balance.String(), "currency", p.PaymentCurrency)
			if balance.Sign() <= 0 {
				return nil
			}

			if _, err := m.purchases.ConfirmPayment(gctx, p.PaymentAddress, true); err != nil {
				failed.Add(1)
				m.logger.Error(gctx, "confirm payment failed", "address", p.PaymentAddress, "error", err)
				return nil
			}
			confirmed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return MonitorReport{}, err
	}

	report := MonitorReport{Checked: len(unpaid), Confirmed: int(confirmed.Load()), Failed: int(failed.Load())}
	m.logger.Info(ctx, "monitor pass done", "checked", report.Checked, "confirmed", report.Confirmed, "failed", report.Failed)
	return report, nil
}

// Run calls CheckUnpaid right away and then every interval until ctx is done.
func (m *PaymentMonitor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := m.CheckUnpaid(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			m.logger.Error(ctx, "monitor pass failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

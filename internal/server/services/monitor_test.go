package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paket-core/funder/internal/logging"
	"github.com/paket-core/funder/internal/server/models"
)

func TestPaymentMonitor_CheckUnpaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addUser(t, "GPUB1", "alice")
	f.addPurchase("GPUB1", "funded", 100, models.Unpaid, f.now.Add(-time.Hour))
	f.addPurchase("GPUB1", "empty", 100, models.Unpaid, f.now.Add(-time.Hour))
	f.addPurchase("GPUB1", "broken", 100, models.Unpaid, f.now.Add(-time.Hour))
	f.addPurchase("GPUB1", "done", 100, models.Paid, f.now.Add(-time.Hour))

	checker := &fakeChecker{
		balances: map[string]int64{"funded": 150000, "done": 1},
		errs:     map[string]error{"broken": errors.New("explorer down")},
	}
	m := NewPaymentMonitor(f.purchases, checker, logging.Nop())

	report, err := m.CheckUnpaid(ctx)
	require.NoError(t, err)
	assert.Equal(t, MonitorReport{Checked: 3, Confirmed: 1, Failed: 1}, report)

	paid, err := f.purchases.ListPaid(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"funded", "done"}, addresses(paid))

	report, err = m.CheckUnpaid(ctx)
	require.NoError(t, err)
	assert.Equal(t, MonitorReport{Checked: 2, Confirmed: 0, Failed: 1}, report)
}

func TestPaymentMonitor_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	m := NewPaymentMonitor(f.purchases, &fakeChecker{}, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Hour) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

// Package server wires the funder together: the Postgres store, the
// services, the gRPC API and the payment monitor.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/paket-core/funder/internal/logging"
	"github.com/paket-core/funder/internal/server/chain"
	"github.com/paket-core/funder/internal/server/config"
	"github.com/paket-core/funder/internal/server/kyc"
	"github.com/paket-core/funder/internal/server/repositories/repomanager"
	"github.com/paket-core/funder/internal/server/services"
	"github.com/paket-core/funder/internal/server/wallet"

	gs "github.com/paket-core/funder/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	users     *services.UserService
	allowance *services.AllowanceService
	purchases *services.PurchaseService
	monitor   *services.PaymentMonitor
}

// openPostgres is a seam for tests.
var openPostgres = repomanager.OpenPostgres

// NewApp connects to the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openPostgres(ctx, c.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app, err := newApp(c, logger, db, rm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	client := &http.Client{Timeout: c.RequestTimeout}

	issuer, err := newIssuer(c, client)
	if err != nil {
		return nil, err
	}

	allowance := services.NewAllowanceService(db, rm, c)
	users := services.NewUserService(db, rm, allowance, newScorer(c, client), logger)
	purchases := services.NewPurchaseService(db, rm, allowance, issuer, c, logger)
	explorer := chain.NewExplorer(c.BTCExplorerURL, c.ETHExplorerURL, c.EtherscanAPIKey, client)

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		users:     users,
		allowance: allowance,
		purchases: purchases,
		monitor:   services.NewPaymentMonitor(purchases, explorer, logger),
	}, nil
}

// newScorer falls back to a scorer that fails everyone when no KYC
// provider is configured.
func newScorer(c *config.Config, client *http.Client) kyc.Scorer {
	if c.KYCServiceURL == "" {
		return kyc.StaticScorer{Score: 0}
	}
	return kyc.NewHTTPScorer(c.KYCServiceURL, client)
}

// newIssuer uses the local hash issuer on testnet when no wallet service is
// configured. Mainnet requires the wallet service.
func newIssuer(c *config.Config, client *http.Client) (wallet.Issuer, error) {
	if c.WalletServiceURL != "" {
		return wallet.NewHTTPIssuer(c.WalletServiceURL, client), nil
	}
	if !c.Testnet {
		return nil, errors.New("wallet service URL is required on mainnet")
	}
	return wallet.NewHashIssuer(), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the gRPC API and runs the payment monitor until ctx is done,
// a signal arrives or either of them fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.users, app.allowance, app.purchases)
		return s.Run(gctx)
	})

	if app.config.MonitorInterval > 0 {
		g.Go(func() error {
			return app.monitor.Run(gctx, app.config.MonitorInterval)
		})
	}

	err := g.Wait()
	if cerr := app.Close(); cerr != nil && err == nil {
		err = cerr
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

// RunMonitorOnce performs a single payment monitor pass.
func (app *App) RunMonitorOnce(ctx context.Context) (services.MonitorReport, error) {
	return app.monitor.CheckUnpaid(ctx)
}

// Close releases the database.
func (app *App) Close() error {
	return app.db.Close()
}

// Command monitor runs a single payment check over unpaid purchases and
// exits. It is meant for cron-style scheduling next to a server started
// with a zero monitor interval.
package main

import (
	"context"
	"os"

	"github.com/paket-core/funder/internal/logging"
	"github.com/paket-core/funder/internal/server"
	"github.com/paket-core/funder/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "init failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if _, err := app.RunMonitorOnce(ctx); err != nil {
		logger.Error(ctx, "payment check failed", "error", err)
		app.Close()
		os.Exit(1)
	}

}

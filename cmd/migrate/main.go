// migrate applies or rolls back the embedded SQL migrations.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ShodmonX/taskflow-backend/internal/config"
	"github.com/ShodmonX/taskflow-backend/internal/db/migrate"
	"github.com/ShodmonX/taskflow-backend/internal/platform/logging"
)

func main() {
	direction := flag.String("direction", migrate.Up, "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.Env)
	defer logger.Sync() //nolint:errcheck

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		logger.Fatal("migrate failed", zap.String("direction", *direction), zap.Error(err))
	}
	logger.Info("migrations applied", zap.String("direction", *direction))
}

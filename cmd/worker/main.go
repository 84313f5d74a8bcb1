// Worker consumes audit events from Kafka and stores them in Postgres.
// Requires KAFKA_BROKERS and DATABASE_URL; AUDIT_KAFKA_TOPIC and KAFKA_GROUP_ID
// have defaults.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ShodmonX/taskflow-backend/internal/audit/consumer"
	auditrepo "github.com/ShodmonX/taskflow-backend/internal/audit/repository"
	"github.com/ShodmonX/taskflow-backend/internal/config"
	"github.com/ShodmonX/taskflow-backend/internal/db"
	"github.com/ShodmonX/taskflow-backend/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.Env).Named("worker")
	defer logger.Sync() //nolint:errcheck

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		logger.Fatal("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer pool.Close()

	reader := consumer.NewReader(brokers, cfg.AuditKafkaTopic, cfg.KafkaGroupID)
	defer reader.Close()

	logger.Info("consuming audit events",
		zap.Strings("brokers", brokers),
		zap.String("topic", cfg.AuditKafkaTopic),
		zap.String("group", cfg.KafkaGroupID),
	)
	c := consumer.New(reader, auditrepo.NewPostgresRepository(pool), logger)
	if err := c.Run(ctx); err != nil {
		logger.Error("consumer stopped", zap.Error(err))
		return
	}
	logger.Info("stopped")
}

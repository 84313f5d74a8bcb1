package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ShodmonX/taskflow-backend/internal/audit"
	audithandler "github.com/ShodmonX/taskflow-backend/internal/audit/handler"
	"github.com/ShodmonX/taskflow-backend/internal/audit/producer"
	auditrepo "github.com/ShodmonX/taskflow-backend/internal/audit/repository"
	"github.com/ShodmonX/taskflow-backend/internal/config"
	"github.com/ShodmonX/taskflow-backend/internal/db"
	healthhandler "github.com/ShodmonX/taskflow-backend/internal/health/handler"
	identityhandler "github.com/ShodmonX/taskflow-backend/internal/identity/handler"
	identityrepo "github.com/ShodmonX/taskflow-backend/internal/identity/repository"
	identityservice "github.com/ShodmonX/taskflow-backend/internal/identity/service"
	invitedomain "github.com/ShodmonX/taskflow-backend/internal/invite/domain"
	inviteservice "github.com/ShodmonX/taskflow-backend/internal/invite/service"
	membershiphandler "github.com/ShodmonX/taskflow-backend/internal/membership/handler"
	membershiprepo "github.com/ShodmonX/taskflow-backend/internal/membership/repository"
	membershipservice "github.com/ShodmonX/taskflow-backend/internal/membership/service"
	organizationhandler "github.com/ShodmonX/taskflow-backend/internal/organization/handler"
	organizationrepo "github.com/ShodmonX/taskflow-backend/internal/organization/repository"
	organizationservice "github.com/ShodmonX/taskflow-backend/internal/organization/service"
	"github.com/ShodmonX/taskflow-backend/internal/platform/kv"
	"github.com/ShodmonX/taskflow-backend/internal/platform/logging"
	"github.com/ShodmonX/taskflow-backend/internal/platform/rbac"
	projecthandler "github.com/ShodmonX/taskflow-backend/internal/project/handler"
	projectrepo "github.com/ShodmonX/taskflow-backend/internal/project/repository"
	projectservice "github.com/ShodmonX/taskflow-backend/internal/project/service"
	"github.com/ShodmonX/taskflow-backend/internal/security"
	"github.com/ShodmonX/taskflow-backend/internal/server"
	"github.com/ShodmonX/taskflow-backend/internal/server/middleware"
	sessionservice "github.com/ShodmonX/taskflow-backend/internal/session/service"
	taskhandler "github.com/ShodmonX/taskflow-backend/internal/task/handler"
	taskrepo "github.com/ShodmonX/taskflow-backend/internal/task/repository"
	taskservice "github.com/ShodmonX/taskflow-backend/internal/task/service"
	"github.com/ShodmonX/taskflow-backend/internal/telemetry/otel"
	userrepo "github.com/ShodmonX/taskflow-backend/internal/user/repository"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.Env)
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otel.NewProviders(ctx, otel.Options{
		Endpoint:       cfg.OTELEndpoint,
		Insecure:       cfg.OTELInsecure,
		ServiceName:    cfg.OTELServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Env,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := kv.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	store := kv.NewRedisStore(redisClient)

	codec, err := newCodec(cfg)
	if err != nil {
		return err
	}
	logger.Info("access tokens configured", zap.String("alg", codec.Alg()), zap.Duration("ttl", codec.TTL()))

	// Audit: Kafka when brokers are configured (cmd/worker persists), otherwise
	// straight to Postgres. Every entry is also emitted as an OTel log record.
	auditRepo := auditrepo.NewPostgresRepository(pool)
	primary := audit.Sink(auditRepo.Create)
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		kp := producer.NewKafkaProducer(brokers, cfg.AuditKafkaTopic)
		defer kp.Close()
		primary = kp.Emit
		logger.Info("audit events go to kafka", zap.Strings("brokers", brokers), zap.String("topic", cfg.AuditKafkaTopic))
	}
	auditSink := audit.Fanout(primary, otel.NewAuditSink(providers.LoggerProvider.Logger("taskflow.audit")))
	auditLogger := audit.NewLogger(auditSink, middleware.ClientIP, logger.Named("audit"))

	authMetrics, err := otel.NewAuthMetrics(providers.MeterProvider)
	if err != nil {
		return fmt.Errorf("telemetry: auth metrics: %w", err)
	}

	users := userrepo.NewPostgresRepository(pool)
	credentials := identityrepo.NewPostgresRepository(pool)
	memberships := membershiprepo.NewPostgresRepository(pool)
	orgs := organizationrepo.NewPostgresRepository(pool)
	projects := projectrepo.NewPostgresRepository(pool)
	tasks := taskrepo.NewPostgresRepository(pool)
	guard := rbac.NewGuard(memberships)

	sessions := sessionservice.NewManager(store, cfg.RefreshTTL(), logger.Named("session"))
	invites := inviteservice.NewManager(store, memberships, invitedomain.TTLPolicy{
		Default: cfg.InviteDefaultTTL(),
		Min:     cfg.InviteMinTTL(),
		Max:     cfg.InviteMaxTTL(),
	}, logger.Named("invite"))

	authSvc := identityservice.NewAuthService(
		users,
		credentials,
		identityrepo.NewAccounts(pool),
		sessions,
		security.NewHasherWithAlgo(cfg.PasswordHashAlgo, cfg.BcryptCost),
		codec,
		auditLogger,
		authMetrics,
		logger.Named("auth"),
	)

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	go limiter.Run(ctx, time.Minute)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(pool, "taskflow"),
	)

	checker := healthhandler.NewChecker(cfg.OTELServiceName, pool, store, logger.Named("health"))

	handler := server.NewHTTPHandler(server.Deps{
		Auth: identityhandler.New(authSvc, identityhandler.CookieConfig{
			Name:     cfg.RefreshCookieName,
			Path:     cfg.RefreshCookiePath,
			Secure:   cfg.RefreshCookieSecure,
			SameSite: cfg.CookieSameSite(),
			MaxAge:   cfg.RefreshTTL(),
		}),
		Orgs:      organizationhandler.New(organizationservice.New(orgs, organizationrepo.NewCreator(pool))),
		Members:   membershiphandler.New(membershipservice.New(memberships, users, guard, invites, auditLogger)),
		Projects:  projecthandler.New(projectservice.New(projects, guard, auditLogger)),
		Tasks:     taskhandler.New(taskservice.New(tasks, projects, guard)),
		AuditLogs: audithandler.New(auditRepo, guard),
		Health:    checker,

		Codec:       codec,
		Logger:      logger.Named("http"),
		Tracer:      providers.Tracer(),
		Registry:    registry,
		AuthLimiter: limiter,
		Audit:       auditLogger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	grpcSrv, healthSrv := server.NewGRPCServer()
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		go checker.Watch(ctx, healthSrv, 10*time.Second)
		go func() {
			logger.Info("gRPC health server listening", zap.String("addr", cfg.GRPCAddr))
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
		stop()
	}

	healthSrv.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()
	logger.Info("server stopped")
	return runErr
}

// newCodec prefers the configured key pair and falls back to HS256.
func newCodec(cfg *config.Config) (*security.TokenCodec, error) {
	if cfg.UsesKeyPair() {
		codec, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
		if err != nil {
			return nil, fmt.Errorf("jwt keys: %w", err)
		}
		return codec, nil
	}
	return security.NewHMACCodec([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL()), nil
}

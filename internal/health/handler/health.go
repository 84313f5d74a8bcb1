// Package handler reports liveness and readiness over HTTP and gRPC.
package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// StorePinger is satisfied by the key-value stores.
type StorePinger interface {
	Ping(ctx context.Context) error
}

type check struct {
	name string
	fn   func(ctx context.Context) error
}

// Checker runs named dependency checks for readiness.
type Checker struct {
	service string
	checks  []check
	logger  *zap.Logger
}

// NewChecker returns a Checker reporting as service. Nil dependencies are
// skipped.
func NewChecker(service string, db Pinger, store StorePinger, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Checker{service: service, logger: logger}
	if db != nil {
		c.checks = append(c.checks, check{name: "postgres", fn: db.PingContext})
	}
	if store != nil {
		c.checks = append(c.checks, check{name: "redis", fn: store.Ping})
	}
	return c
}

// Check runs every check concurrently and returns per-dependency status and
// whether all passed.
func (c *Checker) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		ok  = true
		out = make(map[string]string, len(c.checks))
	)
	for _, ch := range c.checks {
		wg.Add(1)
		go func(ch check) {
			defer wg.Done()
			err := ch.fn(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				ok = false
				out[ch.name] = "unavailable"
				c.logger.Warn("readiness check failed", zap.String("dependency", ch.name), zap.Error(err))
				return
			}
			out[ch.name] = "ok"
		}(ch)
	}
	wg.Wait()
	return out, ok
}

type liveResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Live answers GET /health. It never touches dependencies.
func (c *Checker) Live(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, liveResponse{Status: "ok", Service: c.service})
}

// Ready answers GET /health/ready with 200 when every dependency responds and
// 503 otherwise.
func (c *Checker) Ready(w http.ResponseWriter, r *http.Request) {
	checks, ok := c.Check(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, readyResponse{Status: "unavailable", Checks: checks})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, readyResponse{Status: "ok", Checks: checks})
}

// Sync sets the overall serving status on hs from one round of checks.
func (c *Checker) Sync(ctx context.Context, hs *health.Server) {
	status := healthpb.HealthCheckResponse_SERVING
	if _, ok := c.Check(ctx); !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus("", status)
}

// Watch calls Sync every interval until ctx is done.
func (c *Checker) Watch(ctx context.Context, hs *health.Server, interval time.Duration) {
	c.Sync(ctx, hs)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Sync(ctx, hs)
		}
	}
}

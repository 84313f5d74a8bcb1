// Package server assembles the HTTP API router and the gRPC health server.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/ShodmonX/taskflow-backend/internal/audit"
	audithandler "github.com/ShodmonX/taskflow-backend/internal/audit/handler"
	healthhandler "github.com/ShodmonX/taskflow-backend/internal/health/handler"
	identityhandler "github.com/ShodmonX/taskflow-backend/internal/identity/handler"
	membershiphandler "github.com/ShodmonX/taskflow-backend/internal/membership/handler"
	organizationhandler "github.com/ShodmonX/taskflow-backend/internal/organization/handler"
	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
	"github.com/ShodmonX/taskflow-backend/internal/platform/httpx"
	projecthandler "github.com/ShodmonX/taskflow-backend/internal/project/handler"
	"github.com/ShodmonX/taskflow-backend/internal/security"
	"github.com/ShodmonX/taskflow-backend/internal/server/middleware"
	taskhandler "github.com/ShodmonX/taskflow-backend/internal/task/handler"
)

// Deps holds everything the HTTP router mounts.
//
// Route → handler mapping:
//   - /auth/*                         → internal/identity/handler
//   - /orgs, /orgs/join               → internal/organization/handler, internal/membership/handler
//   - /orgs/{org_id}/members, invites → internal/membership/handler
//   - /orgs/{org_id}/projects         → internal/project/handler
//   - /orgs/{org_id}/tasks            → internal/task/handler
//   - /orgs/{org_id}/audit-logs       → internal/audit/handler
//   - /projects/{project_id}          → internal/project/handler
//   - /health, /health/ready          → internal/health/handler
type Deps struct {
	Auth      *identityhandler.Handler
	Orgs      *organizationhandler.Handler
	Members   *membershiphandler.Handler
	Projects  *projecthandler.Handler
	Tasks     *taskhandler.Handler
	AuditLogs *audithandler.Handler
	Health    *healthhandler.Checker

	Codec  *security.TokenCodec
	Logger *zap.Logger
	// Tracer opens a span per request. If nil, a no-op tracer is used.
	Tracer trace.Tracer
	// Registry receives the HTTP collectors and backs /metrics. If nil, no
	// metrics are collected and /metrics is not mounted.
	Registry *prometheus.Registry
	// AuthLimiter throttles /auth per client IP. If nil, /auth is unthrottled.
	AuthLimiter *middleware.RateLimiter
	// Audit receives one event per mutating org request. If nil, nothing is audited.
	Audit audit.AuditLogger
}

var errRouteNotFound = apperr.NotFound("not found")

// NewHTTPHandler returns the API router.
func NewHTTPHandler(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := d.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.ClientAddr, middleware.Trace(tracer))
	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Instrument)
	}
	r.Use(middleware.Logging(logger), middleware.Recover(logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, errRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusMethodNotAllowed, httpx.ErrorBody{
			Status:  http.StatusMethodNotAllowed,
			Code:    "method_not_allowed",
			Message: "method not allowed",
		})
	})

	if d.Health != nil {
		r.Get("/health", d.Health.Live)
		r.Get("/health/ready", d.Health.Ready)
	}
	if d.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	authn := middleware.Authenticate(d.Codec)

	r.Route("/auth", func(r chi.Router) {
		if d.AuthLimiter != nil {
			r.Use(d.AuthLimiter.Middleware)
		}
		d.Auth.Routes(r, authn)
	})

	r.Route("/orgs", func(r chi.Router) {
		r.Use(authn)
		d.Orgs.Routes(r)
		r.Post("/join", d.Members.Join)
		r.Route("/{org_id}", func(r chi.Router) {
			r.Use(middleware.Audit(d.Audit))
			d.Members.OrgRoutes(r)
			d.Projects.OrgRoutes(r)
			d.Tasks.OrgRoutes(r)
			d.AuditLogs.OrgRoutes(r)
		})
	})

	r.With(authn).Delete("/projects/{project_id}", d.Projects.Delete)

	return r
}

package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShodmonX/taskflow-backend/internal/audit/domain"
)

// SentinelOrgID is the org_id used for audit events that have no org (e.g. login_failure, logout with invalid token).
const SentinelOrgID = "_system"

// Actions and resources recorded by the auth and membership code paths.
const (
	ActionRegister       = "register"
	ActionLoginSuccess   = "login_success"
	ActionLoginFailure   = "login_failure"
	ActionRefresh        = "refresh"
	ActionRefreshFailure = "refresh_failure"
	ActionLogout         = "logout"
	ActionInviteRedeemed = "invite_redeemed"
	ActionDelete         = "delete"

	ResourceUser    = "user"
	ResourceSession = "session"
	ResourceInvite  = "invite"
	ResourceProject = "project"
)

const writeTimeout = 5 * time.Second

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// Sink persists or forwards one audit entry.
type Sink func(ctx context.Context, entry *domain.AuditLog) error

// AuditLogger writes a single audit event with explicit action/resource. Used by auth and session code paths.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string)
}

// Logger implements AuditLogger by handing each entry to a sink.
type Logger struct {
	sink        Sink
	ipExtractor IPExtractor
	logger      *zap.Logger
	now         func() time.Time
}

// NewLogger returns an AuditLogger that writes to sink and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown". A nil sink
// discards events.
func NewLogger(sink Sink, ipExtractor IPExtractor, logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{sink: sink, ipExtractor: ipExtractor, logger: logger, now: time.Now}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
// The write outlives cancellation of ctx, bounded by a short timeout.
func (l *Logger) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	if l == nil || l.sink == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	if orgID == "" {
		orgID = SentinelOrgID
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: l.now().UTC(),
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := l.sink(writeCtx, entry); err != nil {
		l.logger.Warn("audit: failed to log event",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err),
		)
	}
}

// Fanout returns a Sink writing to every non-nil sink in order. All sinks are
// attempted; the first error is returned.
func Fanout(sinks ...Sink) Sink {
	return func(ctx context.Context, entry *domain.AuditLog) error {
		var first error
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s(ctx, entry); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
}

// Metadata encodes kv as a JSON object for AuditLog.Metadata. It returns ""
// for an empty map.
func Metadata(kv map[string]any) string {
	if len(kv) == 0 {
		return ""
	}
	b, err := json.Marshal(kv)
	if err != nil {
		return ""
	}
	return string(b)
}

// Package producer publishes audit events to Kafka for asynchronous persistence.
package producer

import (
	"context"

	"github.com/ShodmonX/taskflow-backend/internal/audit/domain"
)

// Producer emits audit events. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single audit event. Implementations may block briefly.
	Emit(ctx context.Context, entry *domain.AuditLog) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}

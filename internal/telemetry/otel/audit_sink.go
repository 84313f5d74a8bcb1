package otel

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"

	"github.com/ShodmonX/taskflow-backend/internal/audit"
	"github.com/ShodmonX/taskflow-backend/internal/audit/domain"
)

// RecordEmitter is the part of otellog.Logger used by the audit sink.
type RecordEmitter interface {
	Emit(ctx context.Context, record otellog.Record)
}

// NewAuditSink returns an audit sink that emits each entry as an OTel log
// record through logger, typically LoggerProvider.Logger(...). A nil logger
// yields a sink that does nothing.
func NewAuditSink(logger RecordEmitter) audit.Sink {
	if logger == nil {
		return func(context.Context, *domain.AuditLog) error { return nil }
	}
	return func(ctx context.Context, entry *domain.AuditLog) error {
		if entry == nil {
			return nil
		}
		rec := otellog.Record{}
		rec.SetTimestamp(entry.CreatedAt)
		rec.SetSeverity(otellog.SeverityInfo)
		rec.SetEventName("audit." + entry.Action)
		if entry.Metadata != "" {
			rec.SetBody(otellog.StringValue(entry.Metadata))
		}
		rec.AddAttributes(
			otellog.String("audit.id", entry.ID),
			otellog.String("org_id", entry.OrgID),
			otellog.String("action", entry.Action),
			otellog.String("resource", entry.Resource),
			otellog.String("client.address", entry.IP),
		)
		if entry.UserID != "" {
			rec.AddAttributes(otellog.String("user_id", entry.UserID))
		}
		logger.Emit(ctx, rec)
		return nil
	}
}

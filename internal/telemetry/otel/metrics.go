package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics counts authentication outcomes by operation (login, refresh,
// logout, register, join) and outcome (success, failure, error).
type AuthMetrics struct {
	outcomes metric.Int64Counter
}

// NewAuthMetrics creates the counter on mp.
func NewAuthMetrics(mp metric.MeterProvider) (*AuthMetrics, error) {
	c, err := mp.Meter(instrumentationName).Int64Counter("auth.outcomes",
		metric.WithDescription("Authentication outcomes by operation."),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}
	return &AuthMetrics{outcomes: c}, nil
}

// Record adds one outcome. Safe on a nil receiver.
func (m *AuthMetrics) Record(ctx context.Context, operation, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"", "   "} {
		providers, err := NewProviders(ctx, Options{Endpoint: endpoint, ServiceName: "test-service"})
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.LoggerProvider == nil {
			t.Fatalf("NewProviders(%q): nil provider in %+v", endpoint, providers)
		}
		if err := providers.Shutdown(ctx); err != nil {
			t.Errorf("shutdown should be no-op for empty endpoint, got error: %v", err)
		}
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name     string
		endpoint string
	}{
		{"invalid characters", "://invalid"},
		{"malformed URL", "http://[invalid"},
		{"missing host", "http://"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewProviders(ctx, Options{Endpoint: tc.endpoint, ServiceName: "test-service"}); err == nil {
				t.Errorf("NewProviders(%q) should return error", tc.endpoint)
			}
		})
	}
}

// OTLP gRPC exporters connect lazily, so construction succeeds without a
// collector and shutdown with an expired context only reports export errors.
func TestNewProviders_WithEndpoint(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"localhost:4317", "http://localhost:4317/v1/traces", "https://collector:4317"} {
		providers, err := NewProviders(ctx, Options{Endpoint: endpoint, ServiceName: "test-service", Insecure: true})
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if providers.Tracer() == nil {
			t.Errorf("NewProviders(%q): nil tracer", endpoint)
		}
		shutdownCtx, cancel := context.WithCancel(ctx)
		cancel()
		_ = providers.Shutdown(shutdownCtx)
	}
}

func TestSetGlobal(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	providers, err := NewProviders(context.Background(), Options{ServiceName: "test-service"})
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	providers.SetGlobal()

	if otel.GetTracerProvider() != providers.TracerProvider {
		t.Error("global TracerProvider not set")
	}
	if otel.GetMeterProvider() != providers.MeterProvider {
		t.Error("global MeterProvider not set")
	}
}

func TestNewProviders_ResourceAttributes(t *testing.T) {
	providers, err := NewProviders(context.Background(), Options{
		ServiceName:    "taskflow-api",
		ServiceVersion: "1.4.2",
		Environment:    "staging",
	})
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	want := map[attribute.Key]string{
		"service.name":                "taskflow-api",
		"service.version":             "1.4.2",
		"deployment.environment.name": "staging",
	}
	set := providers.Resource.Set()
	for key, value := range want {
		got, ok := set.Value(key)
		if !ok || got.AsString() != value {
			t.Errorf("%s = %q (present %v), want %q", key, got.AsString(), ok, value)
		}
	}
}

func TestNewProviders_OmitsUnsetAttributes(t *testing.T) {
	providers, err := NewProviders(context.Background(), Options{ServiceName: "taskflow-api"})
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	for _, key := range []attribute.Key{"service.version", "deployment.environment.name"} {
		if _, ok := providers.Resource.Set().Value(key); ok {
			t.Errorf("%s should be absent", key)
		}
	}
}

func TestGRPCTarget(t *testing.T) {
	tests := []struct {
		endpoint      string
		force         bool
		wantTarget    string
		wantPlaintext bool
	}{
		{"localhost:4317", false, "localhost:4317", true},
		{"http://collector:4317/v1/traces", false, "collector:4317", true},
		{"https://collector:4317", false, "collector:4317", false},
		{"https://collector:4317", true, "collector:4317", true},
	}
	for _, tt := range tests {
		target, plaintext, err := grpcTarget(tt.endpoint, tt.force)
		if err != nil {
			t.Fatalf("grpcTarget(%q): %v", tt.endpoint, err)
		}
		if target != tt.wantTarget || plaintext != tt.wantPlaintext {
			t.Errorf("grpcTarget(%q, %v) = %q, %v; want %q, %v", tt.endpoint, tt.force, target, plaintext, tt.wantTarget, tt.wantPlaintext)
		}
	}
}

package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"

	"github.com/ShodmonX/taskflow-backend/internal/audit/domain"
)

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec   otellog.Record
	calls int
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
	r.calls++
}

func TestNewAuditSink_NilLogger(t *testing.T) {
	sink := NewAuditSink(nil)
	if err := sink(context.Background(), &domain.AuditLog{ID: "a1"}); err != nil {
		t.Errorf("noop sink: %v", err)
	}
}

func TestAuditSink_NilEntry(t *testing.T) {
	cap := &recordCapture{}
	if err := NewAuditSink(cap)(context.Background(), nil); err != nil {
		t.Errorf("sink(nil): %v", err)
	}
	if cap.calls != 0 {
		t.Error("nil entry should not be emitted")
	}
}

func TestAuditSink_AttributeAndBodyMapping(t *testing.T) {
	cap := &recordCapture{}
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	entry := &domain.AuditLog{
		ID:        "a1",
		OrgID:     "org1",
		UserID:    "user1",
		Action:    "login_success",
		Resource:  "user",
		IP:        "10.0.0.1",
		Metadata:  `{"key":"value"}`,
		CreatedAt: at,
	}
	if err := NewAuditSink(cap)(context.Background(), entry); err != nil {
		t.Fatalf("sink: %v", err)
	}
	rec := cap.rec

	if got := rec.Body().AsString(); got != `{"key":"value"}` {
		t.Errorf("body = %q, want %q", got, entry.Metadata)
	}
	if !rec.Timestamp().Equal(at) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), at)
	}
	if rec.EventName() != "audit.login_success" {
		t.Errorf("event name = %q", rec.EventName())
	}

	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	want := map[string]string{
		"audit.id": "a1", "org_id": "org1", "user_id": "user1",
		"action": "login_success", "resource": "user", "client.address": "10.0.0.1",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attr %s = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestAuditSink_OmitsEmptyUser(t *testing.T) {
	cap := &recordCapture{}
	_ = NewAuditSink(cap)(context.Background(), &domain.AuditLog{ID: "a1", OrgID: "_system", Action: "login_failure"})

	cap.rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		if kv.Key == "user_id" {
			t.Error("user_id should be omitted when empty")
		}
		return true
	})
	if !cap.rec.Body().Empty() {
		t.Error("body should be empty without metadata")
	}
}

// Package consumer persists audit events read from Kafka.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ShodmonX/taskflow-backend/internal/audit/domain"
)

// messageReader is the subset of *kafka.Reader used by Consumer.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Store persists one audit entry. It must be idempotent on entry ID, since a
// crash between store and commit re-delivers the message.
type Store interface {
	Create(ctx context.Context, a *domain.AuditLog) error
}

// Consumer moves audit events from Kafka into the store.
type Consumer struct {
	reader messageReader
	store  Store
	logger *zap.Logger
}

// NewReader returns a group reader for the audit topic.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

func New(reader messageReader, store Store, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{reader: reader, store: store, logger: logger}
}

// Run consumes until ctx is canceled. A message is committed only after it is
// stored, or when it can never be stored because it does not decode.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("consumer: fetch: %w", err)
		}
		if err := c.Handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("audit event not stored; will be redelivered",
				zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Warn("commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// errPoison marks a message that can never be stored.
var errPoison = errors.New("undecodable audit event")

// Handle stores one message. Undecodable messages are logged and skipped.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) error {
	entry, err := decode(msg.Value)
	if err != nil {
		c.logger.Warn("skipping audit event", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}
	storeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.store.Create(storeCtx, entry)
}

func decode(value []byte) (*domain.AuditLog, error) {
	var entry domain.AuditLog
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", errPoison, err)
	}
	if entry.ID == "" || entry.OrgID == "" || entry.Action == "" {
		return nil, fmt.Errorf("%w: missing id, org_id or action", errPoison)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return &entry, nil
}

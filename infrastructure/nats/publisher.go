package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"taskboard/pkg/logger"
)

// Publisher publishes board events on core NATS subjects
type Publisher struct {
	client *Client
}

// NewPublisher สร้าง Publisher ใหม่
func NewPublisher(client *Client) *Publisher {
	return &Publisher{
		client: client,
	}
}

// PublishJSON ส่ง payload ไปที่ subject ของ task.
// Core NATS: at-most-once per subscriber; missed events are healed by resync.
func (p *Publisher) PublishJSON(ctx context.Context, taskID uuid.UUID, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := TaskEventSubject(taskID)
	if err := p.client.conn.Publish(subject, data); err != nil {
		logger.ErrorContext(ctx, "Failed to publish to NATS", "subject", subject, "error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logger.DebugContext(ctx, "Event published to NATS", "subject", subject, "bytes", len(data))
	return nil
}

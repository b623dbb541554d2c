package messaging

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taskboard/domain/dto"
	"taskboard/domain/ports"
	natspkg "taskboard/infrastructure/nats"
)

// NATSTaskEventPublisher implements TaskEventPublisherPort using NATS Pub/Sub
type NATSTaskEventPublisher struct {
	publisher *natspkg.Publisher
}

// NewNATSTaskEventPublisher สร้าง TaskEventPublisherPort adapter สำหรับ NATS
func NewNATSTaskEventPublisher(publisher *natspkg.Publisher) ports.TaskEventPublisherPort {
	return &NATSTaskEventPublisher{
		publisher: publisher,
	}
}

// PublishTaskEvent ส่ง event ไป subject board.events.{taskID}
func (p *NATSTaskEventPublisher) PublishTaskEvent(ctx context.Context, event *dto.TaskEvent) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	return p.publisher.PublishJSON(ctx, event.TaskID, event)
}

func validateEvent(event *dto.TaskEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.TaskID == uuid.Nil {
		return fmt.Errorf("task_id is required")
	}
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	return nil
}

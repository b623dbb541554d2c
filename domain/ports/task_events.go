package ports

import (
	"context"

	"taskboard/domain/dto"
)

// ═══════════════════════════════════════════════════════════════════════════════
// Task Event Ports - fan-out of committed mutations
// ═══════════════════════════════════════════════════════════════════════════════

// TaskEventPublisherPort publishes one event per committed mutation
type TaskEventPublisherPort interface {
	PublishTaskEvent(ctx context.Context, event *dto.TaskEvent) error
}

// TaskEventHandler - callback, called in delivery order
type TaskEventHandler func(event *dto.TaskEvent)

// TaskEventSubscriberPort delivers events to local observers
type TaskEventSubscriberPort interface {
	Subscribe(ctx context.Context, handler TaskEventHandler) error
	Unsubscribe() error
}

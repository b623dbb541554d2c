package messaging

import (
	"context"
	"encoding/json"

	"taskboard/domain/dto"
	"taskboard/domain/ports"
	natspkg "taskboard/infrastructure/nats"
	"taskboard/pkg/logger"
)

// NATSTaskEventSubscriber implements TaskEventSubscriberPort using NATS Pub/Sub
type NATSTaskEventSubscriber struct {
	subscriber *natspkg.Subscriber
	cancel     context.CancelFunc
}

// NewNATSTaskEventSubscriber สร้าง TaskEventSubscriberPort adapter สำหรับ NATS
func NewNATSTaskEventSubscriber(subscriber *natspkg.Subscriber) ports.TaskEventSubscriberPort {
	return &NATSTaskEventSubscriber{
		subscriber: subscriber,
	}
}

// Subscribe decode ทุก message แล้วส่งต่อให้ handler ตามลำดับที่ได้รับ
func (s *NATSTaskEventSubscriber) Subscribe(ctx context.Context, handler ports.TaskEventHandler) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.subscriber.OnMessage(func(subject string, data []byte) {
		if ctx.Err() != nil {
			return
		}

		var event dto.TaskEvent
		if err := json.Unmarshal(data, &event); err != nil {
			logger.Error("Failed to parse board event", "subject", subject, "error", err)
			return
		}
		if err := validateEvent(&event); err != nil {
			logger.Warn("Dropping invalid board event", "subject", subject, "error", err)
			return
		}

		handler(&event)
	})

	if !s.subscriber.IsRunning() {
		return s.subscriber.Start()
	}
	return nil
}

// Unsubscribe หยุด listen
func (s *NATSTaskEventSubscriber) Unsubscribe() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.subscriber.Stop()
}

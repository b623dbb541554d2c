package messaging

import (
	"context"
	"sync"

	"taskboard/domain/dto"
	"taskboard/domain/ports"
	"taskboard/pkg/logger"
)

// LocalEventBus in-process fan-out ใช้แทน NATS เมื่อรัน instance เดียว
// หรือ NATS ไม่พร้อม. Delivery is synchronous in publish order.
type LocalEventBus struct {
	mu       sync.Mutex
	handlers map[int]ports.TaskEventHandler
	order    []int
	nextID   int
}

// NewLocalEventBus สร้าง bus ที่เป็นทั้ง publisher และ subscriber
func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{
		handlers: make(map[int]ports.TaskEventHandler),
	}
}

// Publisher view of the bus
func (b *LocalEventBus) Publisher() ports.TaskEventPublisherPort {
	return b
}

// Subscriber returns a subscription handle; each handle unsubscribes only itself
func (b *LocalEventBus) Subscriber() ports.TaskEventSubscriberPort {
	return &localSubscription{bus: b, id: -1}
}

func (b *LocalEventBus) PublishTaskEvent(ctx context.Context, event *dto.TaskEvent) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	// mu ถูกถือระหว่าง deliver เพื่อให้ทุก subscriber เห็นลำดับเดียวกัน
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, id := range b.order {
		deliver(b.handlers[id], event)
	}
	return nil
}

func deliver(handler ports.TaskEventHandler, event *dto.TaskEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Board event handler panicked", "event_id", event.ID, "error", r)
		}
	}()
	handler(event)
}

func (b *LocalEventBus) add(handler ports.TaskEventHandler) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.order = append(b.order, id)
	return id
}

func (b *LocalEventBus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.handlers, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

type localSubscription struct {
	bus *LocalEventBus
	id  int
}

func (s *localSubscription) Subscribe(ctx context.Context, handler ports.TaskEventHandler) error {
	if s.id >= 0 {
		s.bus.remove(s.id)
	}
	s.id = s.bus.add(handler)
	return nil
}

func (s *localSubscription) Unsubscribe() error {
	if s.id >= 0 {
		s.bus.remove(s.id)
		s.id = -1
	}
	return nil
}

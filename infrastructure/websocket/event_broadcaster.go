package websocket

import (
	"context"
	"sync"

	"taskboard/domain/dto"
	"taskboard/domain/ports"
	"taskboard/pkg/logger"
)

// MessageTypeTaskEvent websocket envelope type for board events
const MessageTypeTaskEvent = "task_event"

// ProjectRoom room name ของ project
func ProjectRoom(projectID string) string {
	return "project:" + projectID
}

// EventBroadcaster รับ task events จาก messaging แล้ว broadcast ไปยัง WebSocket clients
// ใช้ ports.TaskEventSubscriberPort เพื่อ decouple จาก NATS implementation
type EventBroadcaster struct {
	eventSub  ports.TaskEventSubscriberPort
	manager   *WebSocketManager
	running   bool
	runningMu sync.Mutex
	cancelCtx context.CancelFunc
}

// NewEventBroadcaster สร้าง EventBroadcaster ใหม่
func NewEventBroadcaster(eventSub ports.TaskEventSubscriberPort, manager *WebSocketManager) *EventBroadcaster {
	return &EventBroadcaster{
		eventSub: eventSub,
		manager:  manager,
	}
}

// Start เริ่ม broadcaster
func (eb *EventBroadcaster) Start() error {
	eb.runningMu.Lock()
	defer eb.runningMu.Unlock()
	if eb.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := eb.eventSub.Subscribe(ctx, eb.handleTaskEvent); err != nil {
		cancel()
		return err
	}
	eb.cancelCtx = cancel
	eb.running = true

	logger.Info("Board event broadcaster started")
	return nil
}

func (eb *EventBroadcaster) handleTaskEvent(event *dto.TaskEvent) {
	if event == nil {
		logger.Warn("Nil board event received")
		return
	}

	// a task moving A -> B must also reach room A, or its observers keep it
	projects, scoped := event.ProjectIDs()
	if scoped {
		rooms := make([]string, 0, len(projects))
		for _, id := range projects {
			rooms = append(rooms, ProjectRoom(id.String()))
		}
		eb.manager.BroadcastToRooms(rooms, MessageTypeTaskEvent, event)
	} else {
		eb.manager.BroadcastToAll(MessageTypeTaskEvent, event)
	}

	logger.Debug("Board event broadcasted to WebSocket",
		"event_id", event.ID,
		"type", event.Type,
		"task_id", event.TaskID,
		"clients_count", eb.manager.GetTotalClients(),
	)
}

// Stop หยุด broadcaster
func (eb *EventBroadcaster) Stop() {
	eb.runningMu.Lock()
	defer eb.runningMu.Unlock()

	if !eb.running {
		return
	}
	eb.running = false

	if eb.cancelCtx != nil {
		eb.cancelCtx()
	}
	if err := eb.eventSub.Unsubscribe(); err != nil {
		logger.Warn("Failed to unsubscribe board events", "error", err)
	}

	logger.Info("Board event broadcaster stopped")
}

// IsRunning ตรวจสอบว่า broadcaster กำลังทำงานอยู่หรือไม่
func (eb *EventBroadcaster) IsRunning() bool {
	eb.runningMu.Lock()
	defer eb.runningMu.Unlock()
	return eb.running
}

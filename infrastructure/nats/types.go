package nats

import (
	"fmt"

	"github.com/google/uuid"
)

// Subjects
const (
	// SubjectTaskEvents prefix; one token per task: board.events.{task_id}
	SubjectTaskEvents = "board.events"

	// QueueGroupNone every API instance gets every event (fan-out, no queue group)
	QueueGroupNone = ""
)

// TaskEventSubject subject ของ task เดียว; per-task order = publish order
func TaskEventSubject(taskID uuid.UUID) string {
	return fmt.Sprintf("%s.%s", SubjectTaskEvents, taskID)
}

// AllTaskEventsSubject wildcard ที่ API instance ใช้ subscribe
func AllTaskEventsSubject() string {
	return SubjectTaskEvents + ".*"
}

// ═══════════════════════════════════════════════════════════════════════════════
// Connection Status - สำหรับ health endpoint
// ═══════════════════════════════════════════════════════════════════════════════
type ConnectionStatus struct {
	Connected  bool   `json:"connected"`
	URL        string `json:"url,omitempty"`
	InMsgs     uint64 `json:"inMsgs"`
	OutMsgs    uint64 `json:"outMsgs"`
	Reconnects uint64 `json:"reconnects"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxEffortHours = 100.0

// EffortLog append-only time record for a task
type EffortLog struct {
	ID         uuid.UUID `gorm:"primaryKey;type:uuid"`
	TaskID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	HoursSpent float64   `gorm:"not null"`
	Comment    string    `gorm:"type:text"`
	CreatedAt  time.Time
}

func (EffortLog) TableName() string {
	return "task_effort_logs"
}

func (l *EffortLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ValidEffortHours hours ต้องมากกว่า 0 และไม่เกิน 100
func ValidEffortHours(hours float64) bool {
	return hours > 0 && hours <= MaxEffortHours
}

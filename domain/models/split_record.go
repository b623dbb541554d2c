package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SplitRecord audit link parent -> child, written once at split time
type SplitRecord struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid"`
	ParentTaskID uuid.UUID `gorm:"type:uuid;not null;index"`
	ChildTaskID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ActorID      uuid.UUID `gorm:"type:uuid;not null"`
	Position     int       `gorm:"not null"`
	CreatedAt    time.Time
}

func (SplitRecord) TableName() string {
	return "task_split_records"
}

func (r *SplitRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Task struct {
	ID                uuid.UUID      `gorm:"primaryKey;type:uuid"`
	Title             string         `gorm:"size:255;not null"`
	Goal              *string        `gorm:"type:text"`
	Description       string         `gorm:"type:text"`
	ExternalLink      *string        `gorm:"size:500"`
	ProjectID         *uuid.UUID     `gorm:"type:uuid;index"`
	ExternalProjectID *uuid.UUID     `gorm:"type:uuid;index"`
	Status            TaskStatus     `gorm:"size:20;not null;default:'unassigned';index"`
	Priority          TaskPriority   `gorm:"size:10;not null;default:'medium'"`
	Complexity        TaskComplexity `gorm:"size:10;not null;default:'medium'"`
	Deadline          time.Time      `gorm:"not null"`
	CreatorID         uuid.UUID      `gorm:"type:uuid;not null;index"`

	// RoleAssignments maps a board role name (e.g. "developer", "reviewer")
	// to a bool flag or an assignee id
	RoleAssignments datatypes.JSONMap `gorm:"type:json"`

	ParentTaskID *uuid.UUID `gorm:"type:uuid;index"`
	IsSubtask    bool       `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	Assignees []TaskAssignee `gorm:"foreignKey:TaskID"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// AssigneeIDs returns the assignee set as ids
func (t *Task) AssigneeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		ids = append(ids, a.UserID)
	}
	return ids
}

// HasAssignee ตรวจสอบว่า user อยู่ใน assignee set หรือไม่
func (t *Task) HasAssignee(userID uuid.UUID) bool {
	for _, a := range t.Assignees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// TaskAssignee is one row of a task's assignee set
type TaskAssignee struct {
	TaskID    uuid.UUID `gorm:"primaryKey;type:uuid"`
	UserID    uuid.UUID `gorm:"primaryKey;type:uuid;index"`
	CreatedAt time.Time
}

func (TaskAssignee) TableName() string {
	return "task_assignees"
}

// TaskFilter for board listing
type TaskFilter struct {
	ProjectID       *uuid.UUID
	Status          TaskStatus
	IncludeArchived bool
}

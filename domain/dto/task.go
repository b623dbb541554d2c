package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title             string                 `json:"title" validate:"required,min=1,max=255"`
	Goal              *string                `json:"goal" validate:"omitempty,max=2000"`
	Description       string                 `json:"description" validate:"omitempty,max=10000"`
	ExternalLink      *string                `json:"externalLink" validate:"omitempty,url,max=500"`
	ProjectID         *uuid.UUID             `json:"projectId"`
	ExternalProjectID *uuid.UUID             `json:"externalProjectId"`
	Priority          string                 `json:"priority" validate:"omitempty,oneof=low medium high"`
	Complexity        string                 `json:"complexity" validate:"omitempty,oneof=easy medium hard expert"`
	Deadline          *time.Time             `json:"deadline" validate:"required"`
	AssigneeIDs       []uuid.UUID            `json:"assigneeIds"`
	RoleAssignments   map[string]interface{} `json:"roleAssignments"`
}

// UpdateTaskRequest partial update; nil fields are left untouched
type UpdateTaskRequest struct {
	Title             *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Goal              *string    `json:"goal" validate:"omitempty,max=2000"`
	Description       *string    `json:"description" validate:"omitempty,max=10000"`
	ExternalLink      *string    `json:"externalLink" validate:"omitempty,url,max=500"`
	ProjectID         *uuid.UUID `json:"projectId"`
	ExternalProjectID *uuid.UUID `json:"externalProjectId"`
	Priority          *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Complexity        *string    `json:"complexity" validate:"omitempty,oneof=easy medium hard expert"`
	Deadline          *time.Time `json:"deadline"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=unassigned in_progress developed review deploy done archived"`
}

// AssignRequest replaces the assignee set and role map wholesale
type AssignRequest struct {
	AssigneeIDs     []uuid.UUID            `json:"assigneeIds"`
	RoleAssignments map[string]interface{} `json:"roleAssignments"`
}

type SubtaskSpec struct {
	Title             string     `json:"title" validate:"required,min=1,max=255"`
	Goal              *string    `json:"goal"`
	Description       string     `json:"description"`
	ProjectID         *uuid.UUID `json:"projectId"`
	ExternalProjectID *uuid.UUID `json:"externalProjectId"`
	Priority          string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	Complexity        string     `json:"complexity" validate:"omitempty,oneof=easy medium hard expert"`
	Deadline          *time.Time `json:"deadline" validate:"required"`
}

type SplitTaskRequest struct {
	Subtasks []SubtaskSpec `json:"subtasks" validate:"required,min=1,dive"`
}

type AddCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

// LogEffortRequest time-gate: log hours, then move to Status when given
type LogEffortRequest struct {
	Hours   float64 `json:"hours" validate:"required,gt=0,lte=100"`
	Comment string  `json:"comment" validate:"omitempty,max=2000"`
	Status  string  `json:"status" validate:"omitempty,oneof=unassigned in_progress developed review deploy done archived"`
}

type TaskFilterRequest struct {
	ProjectID       string `query:"projectId" validate:"omitempty,uuid"`
	Status          string `query:"status" validate:"omitempty,oneof=unassigned in_progress developed review deploy done archived"`
	IncludeArchived bool   `query:"includeArchived"`
}

// TaskResponse is the full task snapshot, also used as event payload
type TaskResponse struct {
	ID                uuid.UUID              `json:"id"`
	Title             string                 `json:"title"`
	Goal              *string                `json:"goal,omitempty"`
	Description       string                 `json:"description"`
	ExternalLink      *string                `json:"externalLink,omitempty"`
	ProjectID         *uuid.UUID             `json:"projectId,omitempty"`
	ExternalProjectID *uuid.UUID             `json:"externalProjectId,omitempty"`
	Status            string                 `json:"status"`
	Priority          string                 `json:"priority"`
	Complexity        string                 `json:"complexity"`
	Deadline          time.Time              `json:"deadline"`
	CreatorID         uuid.UUID              `json:"creatorId"`
	AssigneeIDs       []uuid.UUID            `json:"assigneeIds"`
	RoleAssignments   map[string]interface{} `json:"roleAssignments,omitempty"`
	ParentTaskID      *uuid.UUID             `json:"parentTaskId,omitempty"`
	IsSubtask         bool                   `json:"isSubtask"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

type EffortLogResponse struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"taskId"`
	ActorID    uuid.UUID `json:"actorId"`
	HoursSpent float64   `json:"hoursSpent"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TimeGateResponse result of log-then-transition
type TimeGateResponse struct {
	EffortLog EffortLogResponse `json:"effortLog"`
	Task      *TaskResponse     `json:"task,omitempty"`
}

type SplitRecordResponse struct {
	ParentTaskID uuid.UUID `json:"parentTaskId"`
	ChildTaskID  uuid.UUID `json:"childTaskId"`
	ActorID      uuid.UUID `json:"actorId"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"taskId"`
	AuthorID  uuid.UUID `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

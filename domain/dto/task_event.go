package dto

import (
	"time"

	"github.com/google/uuid"
)

// Event types broadcast after a committed mutation
const (
	EventTaskCreated      = "task_created"
	EventTaskUpdated      = "task_updated"
	EventStatusChanged    = "status_changed"
	EventAssigneesChanged = "assignees_changed"
	EventTaskDeleted      = "task_deleted"
	EventCommentAdded     = "comment_added"
	EventTaskSplit        = "task_split"
)

type EventActor struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

// TaskEvent carries the full resulting state of the task, never a diff.
// Applying the same event twice gives the same mirror state.
type TaskEvent struct {
	ID         uuid.UUID     `json:"id"`
	Type       string        `json:"type"`
	TaskID     uuid.UUID     `json:"taskId"`
	Task       *TaskResponse `json:"task,omitempty"`
	Actor      EventActor    `json:"actor"`
	OccurredAt time.Time     `json:"occurredAt"`

	// status_changed
	OldStatus string `json:"oldStatus,omitempty"`
	NewStatus string `json:"newStatus,omitempty"`

	// assignees_changed
	OldAssignees []uuid.UUID `json:"oldAssignees,omitempty"`
	NewAssignees []uuid.UUID `json:"newAssignees,omitempty"`

	// task_updated: project the task left, set only when the project changed
	PreviousProjectID *uuid.UUID `json:"previousProjectId,omitempty"`

	// comment_added
	Comment *CommentResponse `json:"comment,omitempty"`

	// task_split: Task is the parent snapshot
	ParentID *uuid.UUID     `json:"parentId,omitempty"`
	ChildIDs []uuid.UUID    `json:"childIds,omitempty"`
	Children []TaskResponse `json:"children,omitempty"`
}

// ProjectIDs lists every project the event concerns: the snapshots'
// projects and the project a task moved out of. scoped is false when some
// snapshot has no project or there is no snapshot at all (delete); such an
// event has to reach every observer.
func (e *TaskEvent) ProjectIDs() (ids []uuid.UUID, scoped bool) {
	seen := map[uuid.UUID]bool{}
	add := func(id *uuid.UUID) {
		if id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}

	scoped = e.Task != nil
	if e.Task != nil {
		if e.Task.ProjectID == nil {
			scoped = false
		}
		add(e.Task.ProjectID)
	}
	for i := range e.Children {
		if e.Children[i].ProjectID == nil {
			scoped = false
		}
		add(e.Children[i].ProjectID)
	}
	add(e.PreviousProjectID)
	return ids, scoped
}

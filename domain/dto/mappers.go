package dto

import (
	"time"

	"taskboard/domain/models"

	"github.com/google/uuid"
)

func TaskToTaskResponse(task *models.Task) *TaskResponse {
	if task == nil {
		return nil
	}
	resp := &TaskResponse{
		ID:                task.ID,
		Title:             task.Title,
		Goal:              task.Goal,
		Description:       task.Description,
		ExternalLink:      task.ExternalLink,
		ProjectID:         task.ProjectID,
		ExternalProjectID: task.ExternalProjectID,
		Status:            string(task.Status),
		Priority:          string(task.Priority),
		Complexity:        string(task.Complexity),
		Deadline:          task.Deadline,
		CreatorID:         task.CreatorID,
		AssigneeIDs:       task.AssigneeIDs(),
		ParentTaskID:      task.ParentTaskID,
		IsSubtask:         task.IsSubtask,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}
	if len(task.RoleAssignments) > 0 {
		resp.RoleAssignments = map[string]interface{}(task.RoleAssignments)
	}
	return resp
}

func TasksToTaskResponses(tasks []*models.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *TaskToTaskResponse(t))
	}
	return out
}

func CreateTaskRequestToTask(req *CreateTaskRequest) *models.Task {
	task := &models.Task{
		Title:             req.Title,
		Goal:              req.Goal,
		Description:       req.Description,
		ExternalLink:      req.ExternalLink,
		ProjectID:         req.ProjectID,
		ExternalProjectID: req.ExternalProjectID,
		Priority:          models.TaskPriority(req.Priority),
		Complexity:        models.TaskComplexity(req.Complexity),
	}
	if req.Deadline != nil {
		task.Deadline = *req.Deadline
	}
	if req.RoleAssignments != nil {
		task.RoleAssignments = req.RoleAssignments
	}
	return task
}

func SubtaskSpecToTask(spec *SubtaskSpec) *models.Task {
	task := &models.Task{
		Title:             spec.Title,
		Goal:              spec.Goal,
		Description:       spec.Description,
		ProjectID:         spec.ProjectID,
		ExternalProjectID: spec.ExternalProjectID,
		Priority:          models.TaskPriority(spec.Priority),
		Complexity:        models.TaskComplexity(spec.Complexity),
	}
	if spec.Deadline != nil {
		task.Deadline = *spec.Deadline
	}
	return task
}

func EffortLogToResponse(log *models.EffortLog) EffortLogResponse {
	return EffortLogResponse{
		ID:         log.ID,
		TaskID:     log.TaskID,
		ActorID:    log.ActorID,
		HoursSpent: log.HoursSpent,
		Comment:    log.Comment,
		CreatedAt:  log.CreatedAt,
	}
}

func SplitRecordToResponse(r *models.SplitRecord) SplitRecordResponse {
	return SplitRecordResponse{
		ParentTaskID: r.ParentTaskID,
		ChildTaskID:  r.ChildTaskID,
		ActorID:      r.ActorID,
		Position:     r.Position,
		CreatedAt:    r.CreatedAt,
	}
}

func CommentToResponse(c *models.Comment) *CommentResponse {
	if c == nil {
		return nil
	}
	return &CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

// NewTaskEvent stamps id, actor and time on an event
func NewTaskEvent(eventType string, taskID uuid.UUID, task *models.Task, actor *models.Principal) *TaskEvent {
	ev := &TaskEvent{
		ID:         uuid.New(),
		Type:       eventType,
		TaskID:     taskID,
		Task:       TaskToTaskResponse(task),
		OccurredAt: time.Now().UTC(),
	}
	if actor != nil {
		ev.Actor = EventActor{ID: actor.ID, Role: string(actor.Role)}
	}
	return ev
}

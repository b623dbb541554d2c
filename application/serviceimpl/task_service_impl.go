package serviceimpl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/domain/dto"
	"taskboard/domain/models"
	"taskboard/domain/ports"
	"taskboard/domain/repositories"
	"taskboard/domain/services"
	"taskboard/pkg/apperror"
	"taskboard/pkg/logger"
)

type TaskServiceImpl struct {
	taskRepo  repositories.TaskRepository
	userRepo  repositories.UserRepository
	publisher ports.TaskEventPublisherPort
	cache     ports.BoardCachePort // optional
	cacheTTL  time.Duration
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	userRepo repositories.UserRepository,
	publisher ports.TaskEventPublisherPort,
	cache ports.BoardCachePort,
	cacheTTL time.Duration,
) services.TaskService {
	return &TaskServiceImpl{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		publisher: publisher,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// Create / Read
// ═══════════════════════════════════════════════════════════════════════════════

func (s *TaskServiceImpl) CreateTask(ctx context.Context, actor *models.Principal, req *dto.CreateTaskRequest) (*models.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperror.InvalidArgument("title is required")
	}
	if req.Deadline == nil || req.Deadline.IsZero() {
		return nil, apperror.InvalidArgument("deadline is required")
	}

	task := dto.CreateTaskRequestToTask(req)
	task.Title = strings.TrimSpace(task.Title)
	if err := normalizeEnums(task); err != nil {
		return nil, err
	}
	task.Status = models.StatusUnassigned
	task.CreatorID = actor.ID
	ctx = logger.WithActor(ctx, actor.ID)

	assignees, err := s.validateAssignees(ctx, req.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range assignees {
		task.Assignees = append(task.Assignees, models.TaskAssignee{UserID: id})
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		logger.ErrorContext(ctx, "Failed to create task", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Task created", "task_id", task.ID)

	s.emit(ctx, dto.NewTaskEvent(dto.EventTaskCreated, task.ID, task, actor))
	return task, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	return s.taskRepo.GetByID(ctx, taskID)
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, filter models.TaskFilter) ([]dto.TaskResponse, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperror.InvalidArgument("unknown status %q", filter.Status)
	}

	load := func() ([]dto.TaskResponse, error) {
		tasks, err := s.taskRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return dto.TasksToTaskResponses(tasks), nil
	}

	if s.cache == nil {
		return load()
	}
	return s.cache.GetOrLoad(ctx, boardCacheKey(filter), s.cacheTTL, load)
}

func boardCacheKey(filter models.TaskFilter) string {
	project := "all"
	if filter.ProjectID != nil {
		project = filter.ProjectID.String()
	}
	return fmt.Sprintf("%s:%s:%t", project, filter.Status, filter.IncludeArchived)
}

// ═══════════════════════════════════════════════════════════════════════════════
// Update
// ═══════════════════════════════════════════════════════════════════════════════

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, actor *models.Principal, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fields, err := updateFields(req)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithTask(ctx, taskID, actor.ID)

	before, after, err := s.taskRepo.Update(ctx, taskID, func(current *models.Task) (map[string]interface{}, error) {
		if !canEdit(actor, current) {
			return nil, apperror.Forbidden("only the creator or a task manager can edit this task")
		}
		return fields, nil
	})
	if err != nil {
		logger.WarnContext(ctx, "Task update rejected", "error", err)
		return nil, err
	}

	if len(fields) > 0 {
		logger.InfoContext(ctx, "Task updated")
		ev := dto.NewTaskEvent(dto.EventTaskUpdated, taskID, after, actor)
		if !sameProject(before.ProjectID, after.ProjectID) {
			ev.PreviousProjectID = before.ProjectID
		}
		s.emit(ctx, ev)
	}
	return after, nil
}

func sameProject(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// updateFields แปลง partial request เป็น column map; field ที่เป็น nil ไม่ถูกแตะ
func updateFields(req *dto.UpdateTaskRequest) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperror.InvalidArgument("title cannot be empty")
		}
		fields["title"] = title
	}
	if req.Goal != nil {
		fields["goal"] = *req.Goal
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ExternalLink != nil {
		fields["external_link"] = *req.ExternalLink
	}
	if req.ProjectID != nil {
		fields["project_id"] = *req.ProjectID
	}
	if req.ExternalProjectID != nil {
		fields["external_project_id"] = *req.ExternalProjectID
	}
	if req.Priority != nil {
		p := models.TaskPriority(*req.Priority)
		if !p.IsValid() {
			return nil, apperror.InvalidArgument("unknown priority %q", *req.Priority)
		}
		fields["priority"] = p
	}
	if req.Complexity != nil {
		c := models.TaskComplexity(*req.Complexity)
		if !c.IsValid() {
			return nil, apperror.InvalidArgument("unknown complexity %q", *req.Complexity)
		}
		fields["complexity"] = c
	}
	if req.Deadline != nil {
		if req.Deadline.IsZero() {
			return nil, apperror.InvalidArgument("deadline cannot be cleared")
		}
		fields["deadline"] = *req.Deadline
	}
	return fields, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// Status transitions
// ═══════════════════════════════════════════════════════════════════════════════

func (s *TaskServiceImpl) TransitionStatus(ctx context.Context, actor *models.Principal, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	return s.transition(ctx, actor, taskID, status, nil)
}

func (s *TaskServiceImpl) ArchiveTask(ctx context.Context, actor *models.Principal, taskID uuid.UUID) (*models.Task, error) {
	return s.transition(ctx, actor, taskID, models.StatusArchived, func(from models.TaskStatus) error {
		if from != models.StatusDone && from != models.StatusArchived {
			return apperror.InvalidArgument("only done tasks can be archived (current: %s)", from)
		}
		return nil
	})
}

func (s *TaskServiceImpl) UnarchiveTask(ctx context.Context, actor *models.Principal, taskID uuid.UUID) (*models.Task, error) {
	return s.transition(ctx, actor, taskID, models.StatusDone, func(from models.TaskStatus) error {
		if from != models.StatusArchived {
			return apperror.InvalidArgument("task is not archived (current: %s)", from)
		}
		return nil
	})
}

// transition runs the state machine on the locked row. Permission is checked
// before transition validity. A same-status request commits nothing.
func (s *TaskServiceImpl) transition(ctx context.Context, actor *models.Principal, taskID uuid.UUID, to models.TaskStatus, precondition func(from models.TaskStatus) error) (*models.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !to.IsValid() {
		return nil, apperror.InvalidArgument("unknown status %q", to)
	}
	ctx = logger.WithTask(ctx, taskID, actor.ID)

	var changed bool
	before, after, err := s.taskRepo.Update(ctx, taskID, func(current *models.Task) (map[string]interface{}, error) {
		touchesArchive := current.Status == models.StatusArchived || to == models.StatusArchived
		if touchesArchive {
			if !actor.CanManageTasks() {
				return nil, apperror.Forbidden("archive and unarchive need manage_tasks")
			}
		} else if !canTransition(actor, current) {
			return nil, apperror.Forbidden("only assignees or task managers can move this task")
		}

		if precondition != nil {
			if err := precondition(current.Status); err != nil {
				return nil, err
			}
		}

		switch models.ClassifyTransition(current.Status, to) {
		case models.TransitionNoop:
			return nil, nil
		case models.TransitionInvalid:
			return nil, apperror.InvalidArgument("cannot move task from %s to %s", current.Status, to)
		}
		changed = true
		return map[string]interface{}{"status": to}, nil
	})
	if err != nil {
		logger.WarnContext(ctx, "Status transition rejected", "to", to, "error", err)
		return nil, err
	}
	if !changed {
		return after, nil
	}

	logger.InfoContext(ctx, "Task status changed", "from", before.Status, "to", after.Status)

	ev := dto.NewTaskEvent(dto.EventStatusChanged, taskID, after, actor)
	ev.OldStatus = string(before.Status)
	ev.NewStatus = string(after.Status)
	s.emit(ctx, ev)
	return after, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// Assign
// ═══════════════════════════════════════════════════════════════════════════════

func (s *TaskServiceImpl) AssignTask(ctx context.Context, actor *models.Principal, taskID uuid.UUID, req *dto.AssignRequest) (*models.Task, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	ctx = logger.WithTask(ctx, taskID, actor.ID)

	// permission ก่อน validate assignee เพื่อไม่ให้คนนอกไล่เช็ค user id ได้
	current, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	check := func(t *models.Task) error {
		if !canEdit(actor, t) {
			return apperror.Forbidden("only the creator or a task manager can assign this task")
		}
		return nil
	}
	if err := check(current); err != nil {
		return nil, err
	}

	assignees, err := s.validateAssignees(ctx, req.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	before, after, err := s.taskRepo.ReplaceAssignees(ctx, taskID, check, assignees, req.RoleAssignments)
	if err != nil {
		logger.WarnContext(ctx, "Assign rejected", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Task assignees replaced", "count", len(assignees))

	ev := dto.NewTaskEvent(dto.EventAssigneesChanged, taskID, after, actor)
	ev.OldAssignees = before.AssigneeIDs()
	ev.NewAssignees = after.AssigneeIDs()
	s.emit(ctx, ev)
	return after, nil
}

// validateAssignees dedupes ids and requires each to be an active user
func (s *TaskServiceImpl) validateAssignees(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return unique, nil
	}

	users, err := s.userRepo.ListActiveByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	active := make(map[uuid.UUID]bool, len(users))
	for _, u := range users {
		active[u.ID] = true
	}
	for _, id := range unique {
		if !active[id] {
			return nil, apperror.InvalidArgument("assignee %s is not an active user", id)
		}
	}
	return unique, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// Split
// ═══════════════════════════════════════════════════════════════════════════════

func (s *TaskServiceImpl) SplitTask(ctx context.Context, actor *models.Principal, parentID uuid.UUID, specs []dto.SubtaskSpec) ([]uuid.UUID, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, apperror.InvalidArgument("at least one subtask is required")
	}

	children := make([]*models.Task, 0, len(specs))
	for i := range specs {
		spec := &specs[i]
		if strings.TrimSpace(spec.Title) == "" {
			return nil, apperror.InvalidArgument("subtask %d: title is required", i)
		}
		if spec.Deadline == nil || spec.Deadline.IsZero() {
			return nil, apperror.InvalidArgument("subtask %d: deadline is required", i)
		}
		child := dto.SubtaskSpecToTask(spec)
		child.Title = strings.TrimSpace(child.Title)
		if err := normalizeEnums(child); err != nil {
			return nil, fmt.Errorf("subtask %d: %w", i, err)
		}
		children = append(children, child)
	}

	check := func(parent *models.Task) error {
		if !canSplit(actor, parent) {
			return apperror.Forbidden("only the creator, an assignee or a task manager can split this task")
		}
		if parent.Status == models.StatusArchived {
			return apperror.InvalidArgument("archived tasks cannot be split")
		}
		return nil
	}

	ctx = logger.WithTask(ctx, parentID, actor.ID)
	parent, created, err := s.taskRepo.Split(ctx, parentID, actor.ID, check, children)
	if err != nil {
		logger.WarnContext(ctx, "Split failed", "error", err)
		return nil, err
	}

	childIDs := make([]uuid.UUID, 0, len(created))
	for _, c := range created {
		childIDs = append(childIDs, c.ID)
	}

	logger.InfoContext(ctx, "Task split", "children", len(childIDs))

	ev := dto.NewTaskEvent(dto.EventTaskSplit, parentID, parent, actor)
	ev.ParentID = &parent.ID
	ev.ChildIDs = childIDs
	ev.Children = dto.TasksToTaskResponses(created)
	s.emit(ctx, ev)
	return childIDs, nil
}

func (s *TaskServiceImpl) ListSplitRecords(ctx context.Context, parentID uuid.UUID) ([]*models.SplitRecord, error) {
	if _, err := s.taskRepo.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListSplitRecords(ctx, parentID)
}

// ═══════════════════════════════════════════════════════════════════════════════
// Delete / Comment
// ═══════════════════════════════════════════════════════════════════════════════

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, actor *models.Principal, taskID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	ctx = logger.WithTask(ctx, taskID, actor.ID)
	deleted, detached, err := s.taskRepo.Delete(ctx, taskID, func(current *models.Task) error {
		if !actor.CanManageTasks() {
			return apperror.Forbidden("only task managers can delete tasks")
		}
		return nil
	})
	if err != nil {
		logger.WarnContext(ctx, "Delete rejected", "error", err)
		return err
	}

	logger.InfoContext(ctx, "Task deleted", "detached", len(detached))

	ev := dto.NewTaskEvent(dto.EventTaskDeleted, deleted.ID, nil, actor)
	if len(detached) > 0 {
		ev.Children = dto.TasksToTaskResponses(detached)
	}
	s.emit(ctx, ev)
	return nil
}

func (s *TaskServiceImpl) AddComment(ctx context.Context, actor *models.Principal, taskID uuid.UUID, body string) (*models.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.InvalidArgument("comment body is required")
	}

	ctx = logger.WithTask(ctx, taskID, actor.ID)
	comment := &models.Comment{TaskID: taskID, AuthorID: actor.ID, Body: body}
	task, err := s.taskRepo.AddComment(ctx, comment)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Comment added", "comment_id", comment.ID)

	ev := dto.NewTaskEvent(dto.EventCommentAdded, taskID, task, actor)
	ev.Comment = dto.CommentToResponse(comment)
	s.emit(ctx, ev)
	return comment, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// Helpers
// ═══════════════════════════════════════════════════════════════════════════════

// emit runs after commit: drop cached boards, then publish.
// Failures are logged only; the mutation is already durable.
// The row lock is already released here, so two commits on one task may
// publish out of order. Mirrors keep per-task order by ignoring a snapshot
// older (updatedAt) than the one they hold.
func (s *TaskServiceImpl) emit(ctx context.Context, ev *dto.TaskEvent) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to invalidate board cache", "error", err)
		}
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTaskEvent(ctx, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish task event", "event_id", ev.ID, "type", ev.Type, "error", err)
	}
}

func normalizeEnums(task *models.Task) error {
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if !task.Priority.IsValid() {
		return apperror.InvalidArgument("unknown priority %q", task.Priority)
	}
	if task.Complexity == "" {
		task.Complexity = models.ComplexityMedium
	}
	if !task.Complexity.IsValid() {
		return apperror.InvalidArgument("unknown complexity %q", task.Complexity)
	}
	return nil
}

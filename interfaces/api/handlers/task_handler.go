package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"taskboard/domain/dto"
	"taskboard/domain/models"
	"taskboard/domain/services"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

type TaskHandler struct {
	taskService     services.TaskService
	timeGateService services.TimeGateService
}

func NewTaskHandler(taskService services.TaskService, timeGateService services.TimeGateService) *TaskHandler {
	return &TaskHandler{
		taskService:     taskService,
		timeGateService: timeGateService,
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// Request helpers
// ═══════════════════════════════════════════════════════════════════════════════

func taskIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil || id == uuid.Nil {
		logger.WarnContext(c.UserContext(), "Invalid task ID", "task_id", c.Params("id"))
		return uuid.Nil, utils.BadRequestResponse(c, "Invalid task ID")
	}
	return id, nil
}

// parseBody BodyParser + validator; returns false when a response was already written
func parseBody(c *fiber.Ctx, req any) (bool, error) {
	ctx := c.UserContext()
	if err := c.BodyParser(req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return false, utils.BadRequestResponse(c, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		errors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", errors)
		return false, utils.ValidationErrorResponse(c, errors)
	}
	return true, nil
}

func principal(c *fiber.Ctx) (*models.Principal, error) {
	p, err := utils.GetPrincipal(c)
	if err != nil {
		logger.WarnContext(c.UserContext(), "Unauthorized access attempt")
		return nil, utils.UnauthorizedResponse(c, "")
	}
	return p, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// Reads
// ═══════════════════════════════════════════════════════════════════════════════

// ListTasks GET /tasks?projectId=&status=&includeArchived=
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var q dto.TaskFilterRequest
	if err := c.QueryParser(&q); err != nil {
		return utils.BadRequestResponse(c, "Invalid query")
	}
	if err := utils.ValidateStruct(&q); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}

	filter := models.TaskFilter{
		Status:          models.TaskStatus(q.Status),
		IncludeArchived: q.IncludeArchived,
	}
	if q.ProjectID != "" {
		pid := uuid.MustParse(q.ProjectID)
		filter.ProjectID = &pid
	}

	tasks, err := h.taskService.ListTasks(ctx, filter)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list tasks", "error", err)
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, tasks)
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	task, err := h.taskService.GetTask(c.UserContext(), taskID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) ListEffortLogs(c *fiber.Ctx) error {
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	logs, err := h.timeGateService.ListEffortLogs(c.UserContext(), taskID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	out := make([]dto.EffortLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.EffortLogToResponse(l))
	}
	return utils.SuccessResponse(c, out)
}

func (h *TaskHandler) ListSplitRecords(c *fiber.Ctx) error {
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	records, err := h.taskService.ListSplitRecords(c.UserContext(), taskID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	out := make([]dto.SplitRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.SplitRecordToResponse(r))
	}
	return utils.SuccessResponse(c, out)
}

// ═══════════════════════════════════════════════════════════════════════════════
// Mutations
// ═══════════════════════════════════════════════════════════════════════════════

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actor, err := principal(c)
	if actor == nil {
		return err
	}

	var req dto.CreateTaskRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	task, err := h.taskService.CreateTask(ctx, actor, &req)
	if err != nil {
		logger.WarnContext(logger.WithActor(ctx, actor.ID), "Task creation failed", "error", err)
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.CreatedResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	actor, err := principal(c)
	if actor == nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	var req dto.UpdateTaskRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	task, err := h.taskService.UpdateTask(c.UserContext(), actor, taskID, &req)
	if err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

// TransitionStatus PUT /tasks/:id/status (transition without logging)
func (h *TaskHandler) TransitionStatus(c *fiber.Ctx) error {
	actor, err := principal(c)
	if actor == nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	var req dto.StatusRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	task, err := h.timeGateService.TransitionWithoutLogging(c.UserContext(), actor, taskID, models.TaskStatus(req.Status))
	if err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) ArchiveTask(c *fiber.Ctx) error {
	actor, err := principal(c)
	if actor == nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	task, err := h.taskService.ArchiveTask(c.UserContext(), actor, taskID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) UnarchiveTask(c *fiber.Ctx) error {
	actor, err := principal(c)
	if actor == nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	task, err := h.taskService.UnarchiveTask(c.UserContext(), actor, taskID)
	if err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) AssignTask(c *fiber.Ctx) error {
	actor, err := principal(c)
	if actor == nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	var req dto.AssignRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	task, err := h.taskService.AssignTask(c.UserContext(), actor, taskID, &req)
	if err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

// SplitTask POST /tasks/:id/split -> ordered child ids
func (h *TaskHandler) SplitTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actor, err := principal(c)
	if actor == nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	var req dto.SplitTaskRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	ids, err := h.taskService.SplitTask(ctx, actor, taskID, req.Subtasks)
	if err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.CreatedResponse(c, dto.IDListResponse{IDs: ids})
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	actor, err := principal(c)
	if actor == nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.UserContext(), actor, taskID); err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.NoContentResponse(c)
}

func (h *TaskHandler) AddComment(c *fiber.Ctx) error {
	actor, err := principal(c)
	if actor == nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	var req dto.AddCommentRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	comment, err := h.taskService.AddComment(c.UserContext(), actor, taskID, req.Body)
	if err != nil {
		return utils.ServiceErrorResponse(c, err)
	}
	return utils.CreatedResponse(c, dto.CommentToResponse(comment))
}

// LogEffort POST /tasks/:id/effort: log, then move when status is given.
// A failed move still returns the stored log alongside the error.
func (h *TaskHandler) LogEffort(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actor, err := principal(c)
	if actor == nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if taskID == uuid.Nil {
		return err
	}

	var req dto.LogEffortRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	entry, task, err := h.timeGateService.LogEffortAndTransition(ctx, actor, taskID, req.Hours, req.Comment, models.TaskStatus(req.Status))
	if err != nil {
		if entry != nil {
			logger.WarnContext(logger.WithTask(ctx, taskID, actor.ID), "Effort logged but transition failed", "effort_id", entry.ID, "error", err)
			return utils.ServiceErrorDetailsResponse(c, err, fiber.Map{
				"effortLog": dto.EffortLogToResponse(entry),
			})
		}
		return utils.ServiceErrorResponse(c, err)
	}

	return utils.CreatedResponse(c, dto.TimeGateResponse{
		EffortLog: dto.EffortLogToResponse(entry),
		Task:      dto.TaskToTaskResponse(task),
	})
}

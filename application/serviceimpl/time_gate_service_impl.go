package serviceimpl

import (
	"context"

	"github.com/google/uuid"

	"taskboard/domain/models"
	"taskboard/domain/repositories"
	"taskboard/domain/services"
	"taskboard/pkg/apperror"
	"taskboard/pkg/logger"
)

type TimeGateServiceImpl struct {
	taskService services.TaskService
	taskRepo    repositories.TaskRepository
	effortRepo  repositories.EffortLogRepository
}

func NewTimeGateService(
	taskService services.TaskService,
	taskRepo repositories.TaskRepository,
	effortRepo repositories.EffortLogRepository,
) services.TimeGateService {
	return &TimeGateServiceImpl{
		taskService: taskService,
		taskRepo:    taskRepo,
		effortRepo:  effortRepo,
	}
}

func (s *TimeGateServiceImpl) LogEffort(ctx context.Context, actor *models.Principal, taskID uuid.UUID, hours float64, comment string) (*models.EffortLog, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !models.ValidEffortHours(hours) {
		return nil, apperror.InvalidArgument("hours must be > 0 and <= %v, got %v", models.MaxEffortHours, hours)
	}

	ctx = logger.WithTask(ctx, taskID, actor.ID)

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !canLogEffort(actor, task) {
		return nil, apperror.Forbidden("not allowed to log effort on this task")
	}

	entry := &models.EffortLog{
		TaskID:     taskID,
		ActorID:    actor.ID,
		HoursSpent: hours,
		Comment:    comment,
	}
	if err := s.effortRepo.Create(ctx, entry); err != nil {
		logger.ErrorContext(ctx, "Failed to record effort", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Effort recorded", "hours", hours)
	return entry, nil
}

// LogEffortAndTransition records effort, then moves the task. The log is kept
// when the move fails; the caller gets both the log and the error.
func (s *TimeGateServiceImpl) LogEffortAndTransition(ctx context.Context, actor *models.Principal, taskID uuid.UUID, hours float64, comment string, status models.TaskStatus) (*models.EffortLog, *models.Task, error) {
	entry, err := s.LogEffort(ctx, actor, taskID, hours, comment)
	if err != nil {
		return nil, nil, err
	}
	if status == "" {
		return entry, nil, nil
	}

	task, err := s.taskService.TransitionStatus(ctx, actor, taskID, status)
	if err != nil {
		logger.WarnContext(logger.WithTask(ctx, taskID, actor.ID), "Transition after effort log failed, log kept",
			"effort_id", entry.ID, "status", status, "error", err)
		return entry, nil, err
	}
	return entry, task, nil
}

func (s *TimeGateServiceImpl) TransitionWithoutLogging(ctx context.Context, actor *models.Principal, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	return s.taskService.TransitionStatus(ctx, actor, taskID, status)
}

func (s *TimeGateServiceImpl) ListEffortLogs(ctx context.Context, taskID uuid.UUID) ([]*models.EffortLog, error) {
	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.effortRepo.ListByTask(ctx, taskID)
}

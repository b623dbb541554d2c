package services

import (
	"context"

	"taskboard/domain/models"

	"github.com/google/uuid"
)

// TimeGateService records effort before a status transition.
// The two steps are not atomic: a failed transition keeps the log.
type TimeGateService interface {
	LogEffort(ctx context.Context, actor *models.Principal, taskID uuid.UUID, hours float64, comment string) (*models.EffortLog, error)
	LogEffortAndTransition(ctx context.Context, actor *models.Principal, taskID uuid.UUID, hours float64, comment string, status models.TaskStatus) (*models.EffortLog, *models.Task, error)
	TransitionWithoutLogging(ctx context.Context, actor *models.Principal, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error)
	ListEffortLogs(ctx context.Context, taskID uuid.UUID) ([]*models.EffortLog, error)
}

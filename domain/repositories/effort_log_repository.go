package repositories

import (
	"context"

	"taskboard/domain/models"

	"github.com/google/uuid"
)

type EffortLogRepository interface {
	Create(ctx context.Context, log *models.EffortLog) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.EffortLog, error)
}

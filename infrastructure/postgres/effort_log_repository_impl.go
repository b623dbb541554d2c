package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/domain/models"
	"taskboard/domain/repositories"
)

type EffortLogRepositoryImpl struct {
	db *gorm.DB
}

func NewEffortLogRepository(db *gorm.DB) repositories.EffortLogRepository {
	return &EffortLogRepositoryImpl{db: db}
}

func (r *EffortLogRepositoryImpl) Create(ctx context.Context, log *models.EffortLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *EffortLogRepositoryImpl) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.EffortLog, error) {
	var logs []*models.EffortLog
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

package repositories

import (
	"context"

	"taskboard/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ListActiveByIDs returns the subset of ids that exist and are active
	ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
}

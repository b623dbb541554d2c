package ports

import (
	"context"
	"time"

	"taskboard/domain/dto"
)

// BoardCachePort caches full board listings used for client resync
type BoardCachePort interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func() ([]dto.TaskResponse, error)) ([]dto.TaskResponse, error)
	// Invalidate drops every cached listing
	Invalidate(ctx context.Context) error
}

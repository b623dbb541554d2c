package redis

import (
	"context"
	"fmt"
	"time"

	"taskboard/domain/dto"
	"taskboard/domain/ports"
	"taskboard/pkg/logger"
)

const (
	boardCachePrefix     = "board"
	boardGenerationKey   = "board:generation"
	defaultBoardCacheTTL = 30 * time.Second
)

// boardStore is the subset of Client the board cache needs
type boardStore interface {
	GetInt(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
	GetOrSet(ctx context.Context, key string, target interface{}, ttl time.Duration, getter func() (interface{}, error)) error
	ScanAndDelete(ctx context.Context, pattern string) (int64, error)
}

// BoardCache caches board listings under a generation number.
// Invalidate bumps the generation, so a listing loaded before a commit can
// never be served after it.
type BoardCache struct {
	store boardStore
}

// NewBoardCache สร้าง BoardCachePort adapter สำหรับ Redis
func NewBoardCache(client *Client) ports.BoardCachePort {
	return &BoardCache{store: client}
}

func (b *BoardCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func() ([]dto.TaskResponse, error)) ([]dto.TaskResponse, error) {
	if ttl <= 0 {
		ttl = defaultBoardCacheTTL
	}

	gen, err := b.store.GetInt(ctx, boardGenerationKey)
	if err != nil {
		// redis ล่มไม่ควรทำให้ board โหลดไม่ได้
		logger.WarnContext(ctx, "Board cache unavailable, loading from store", "error", err)
		return load()
	}

	var tasks []dto.TaskResponse
	var loadErr error
	err = b.store.GetOrSet(ctx, generationKey(gen, key), &tasks, ttl, func() (interface{}, error) {
		result, err := load()
		loadErr = err
		return result, err
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if err != nil {
		logger.WarnContext(ctx, "Board cache lookup failed, loading from store", "key", key, "error", err)
		return load()
	}
	return tasks, nil
}

func (b *BoardCache) Invalidate(ctx context.Context) error {
	gen, err := b.store.Incr(ctx, boardGenerationKey)
	if err != nil {
		return fmt.Errorf("bump board generation: %w", err)
	}

	// entries of the old generation are unreachable; clean them up eagerly
	if _, err := b.store.ScanAndDelete(ctx, fmt.Sprintf("%s:v%d:*", boardCachePrefix, gen-1)); err != nil {
		logger.WarnContext(ctx, "Failed to purge stale board cache", "generation", gen-1, "error", err)
	}
	return nil
}

func generationKey(gen int64, key string) string {
	return fmt.Sprintf("%s:v%d:%s", boardCachePrefix, gen, key)
}

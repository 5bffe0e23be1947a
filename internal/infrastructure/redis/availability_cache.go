package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityCacheInterface はアプリケーション層から見たキャッシュの抽象
type AvailabilityCacheInterface interface {
	GetTotalAvailable(ctx context.Context, eventID string) (int, error)
	SetTotalAvailable(ctx context.Context, eventID string, total int, ttl time.Duration) error
	Invalidate(ctx context.Context, eventID string) error
}

// AvailabilityCache はイベントごとの残数合計のキャッシュを管理する
// 在庫の正はあくまでDBであり、ここは一覧表示向けの短命なスナップショット
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// GetTotalAvailable はイベントの残数合計をキャッシュから取得する
func (c *AvailabilityCache) GetTotalAvailable(ctx context.Context, eventID string) (int, error) {
	key := c.totalAvailableKey(eventID)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetTotalAvailable はイベントの残数合計をキャッシュに保存する
func (c *AvailabilityCache) SetTotalAvailable(ctx context.Context, eventID string, total int, ttl time.Duration) error {
	key := c.totalAvailableKey(eventID)
	if err := c.client.Set(ctx, key, total, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベントのキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context, eventID string) error {
	key := c.totalAvailableKey(eventID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) totalAvailableKey(eventID string) string {
	return fmt.Sprintf("availability:total:%s", eventID)
}

var _ AvailabilityCacheInterface = (*AvailabilityCache)(nil)

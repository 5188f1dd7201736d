package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vidhub-go/internal/events"
	"vidhub-go/internal/metrics"
	"vidhub-go/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cachePrefix = "vidhub:"

// CacheService Redis 读穿缓存。client 为 nil 时所有读取都视为未命中，写入直接忽略。
// 缓存只是加速手段，任何 Redis 错误都只记录日志。
type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

// Enabled 是否连接了 Redis
func (s *CacheService) Enabled() bool {
	return s != nil && s.client != nil
}

// GetJSON 读取并反序列化到 dst，返回是否命中
func (s *CacheService) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if !s.Enabled() {
		return false
	}
	raw, err := s.client.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Cache get failed", zap.String("key", key), zap.Error(err))
		}
		metrics.CacheMisses.Inc()
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("Cache payload corrupted", zap.String("key", key), zap.Error(err))
		metrics.CacheMisses.Inc()
		return false
	}
	metrics.CacheHits.Inc()
	return true
}

// SetJSON 序列化后写入，ttl<=0 时不写
func (s *CacheService) SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) {
	if !s.Enabled() || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		logger.Warn("Cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.client.Set(ctx, cachePrefix+key, raw, ttl).Err(); err != nil {
		logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete 删除若干 key
func (s *CacheService) Delete(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = cachePrefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		logger.Warn("Cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// 缓存 key
const keyFilterOptions = "search:filters"

func keyLikedBy(videoID string, userID int64) string {
	return fmt.Sprintf("likes:user:%s:%d", videoID, userID)
}

// InvalidationHandler 事件总线订阅者：视频增删改后清理过滤候选项，点赞变化后清理该用户的点赞状态
func (s *CacheService) InvalidationHandler() events.Handler {
	return func(ctx context.Context, ev events.Event) error {
		if !s.Enabled() {
			return nil
		}
		var keys []string
		if ev.Type.AffectsFilterOptions() {
			keys = append(keys, keyFilterOptions)
		}
		if (ev.Type == events.VideoLiked || ev.Type == events.VideoUnliked) && ev.UserID > 0 {
			keys = append(keys, keyLikedBy(ev.VideoID, ev.UserID))
		}
		s.Delete(ctx, keys...)
		return nil
	}
}

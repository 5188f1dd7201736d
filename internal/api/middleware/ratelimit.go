package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"vidhub-go/internal/api/response"
	"vidhub-go/internal/config"
	"vidhub-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter 按 key 计数的限流器，返回是否放行以及被拒绝时建议的等待时间
type Limiter interface {
	Allow(ctx context.Context, key string, rule config.RateRule) (bool, time.Duration, error)
}

// MemoryLimiter 进程内令牌桶，每个 key 一个 rate.Limiter
type MemoryLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const visitorIdle = 30 * time.Minute

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *MemoryLimiter) getLimiter(key string, rule config.RateRule, now time.Time) *rate.Limiter {
	if now.Sub(l.lastSweep) > time.Minute {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorIdle {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		every := rule.WindowDuration() / time.Duration(rule.Max)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), rule.Max)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Allow 令牌桶容量为 max，每 window/max 补充一个令牌
func (l *MemoryLimiter) Allow(_ context.Context, key string, rule config.RateRule) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	r := l.getLimiter(key, rule, now).ReserveN(now, 1)
	if !r.OK() {
		return false, rule.WindowDuration(), nil
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d, nil
	}
	return true, 0, nil
}

// RedisLimiter 固定窗口计数（INCR + EXPIRE），多实例共享额度
// Redis 出错时退回进程内限流
type RedisLimiter struct {
	client   *redis.Client
	fallback *MemoryLimiter
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, fallback: NewMemoryLimiter()}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, rule config.RateRule) (bool, time.Duration, error) {
	redisKey := "vidhub:ratelimit:" + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		logger.Warn("Redis rate limiter unavailable, using in-process limiter", zap.Error(err))
		return l.fallback.Allow(ctx, key, rule)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, rule.WindowDuration()).Err(); err != nil {
			logger.Warn("Set rate limit window failed", zap.String("key", redisKey), zap.Error(err))
		}
	}

	if count <= int64(rule.Max) {
		return true, 0, nil
	}
	wait, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil || wait <= 0 {
		wait = rule.WindowDuration()
		if err == nil {
			// 窗口丢失过期时间时补上，否则该 IP 会被永久拒绝
			_ = l.client.Expire(ctx, redisKey, wait).Err()
		}
	}
	return false, wait, nil
}

// RateLimit 按客户端 IP 限流，name 区分不同的规则桶
func RateLimit(limiter Limiter, name string, rule config.RateRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || rule.Max <= 0 || rule.Window <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		allowed, wait, err := limiter.Allow(c.Request.Context(), fmt.Sprintf("%s:%s", name, ip), rule)
		if err != nil {
			logger.Warn("Rate limiter failed", zap.String("rule", name), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("rule", name),
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
			)
			response.TooManyRequests(c, "请求过于频繁，请稍后再试", int(math.Ceil(wait.Seconds())))
			c.Abort()
			return
		}
		c.Next()
	}
}

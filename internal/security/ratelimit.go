package security

import (
	"context"
	"fmt"
	"time"

	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/database"
	"github.com/goadmin/pkg/logger"
	"go.uber.org/zap"
)

// RateLimiter 固定窗口限流器。
// 以 Redis 原子自增实现计数，首次命中设置窗口过期；
// 计数与过期都由存储端原子原语完成，不做读改写。
type RateLimiter struct {
	cache  *database.Cache
	max    int64
	window time.Duration
}

// NewRateLimiter 创建限流器
func NewRateLimiter(cfg *config.RateLimitConfig, cache *database.Cache) *RateLimiter {
	max := cfg.Max
	if max <= 0 {
		max = 100
	}
	window := time.Duration(cfg.Window) * time.Second
	if window <= 0 {
		window = time.Minute
	}

	return &RateLimiter{
		cache:  cache,
		max:    max,
		window: window,
	}
}

// Key 构建限流key：主体身份（或IP）+ 请求路径
func (l *RateLimiter) Key(identity, path string) string {
	return fmt.Sprintf("%s:%s", identity, path)
}

// Allow 判断本次请求是否放行。
// 限流存储不可用时放行并记录告警，限流降级不应放大故障。
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	count, err := l.cache.Incr(ctx, key)
	if err != nil {
		logger.Warn("限流计数失败，本次放行", zap.String("key", key), zap.Error(err))
		return true
	}

	if count == 1 {
		if err := l.cache.Expire(ctx, key, l.window); err != nil {
			logger.Warn("限流窗口设置失败", zap.String("key", key), zap.Error(err))
		}
	}

	return count <= l.max
}

// Max 窗口内最大请求数
func (l *RateLimiter) Max() int64 {
	return l.max
}

// Window 窗口长度
func (l *RateLimiter) Window() time.Duration {
	return l.window
}

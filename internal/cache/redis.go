package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fortune-backend/internal/config"
	"fortune-backend/internal/logger"
)

// RedisProvider Redis 缓存
type RedisProvider struct {
	rdb *redis.Client
}

// NewRedisProvider 连接并 Ping，失败时返回错误
func NewRedisProvider(ctx context.Context, cfg config.CacheConfig) (*RedisProvider, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	logger.Named("Cache").Info().Str("addr", cfg.RedisAddr).Msg("Redis连接成功")
	return &RedisProvider{rdb: rdb}, nil
}

func (p *RedisProvider) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return p.rdb.Set(ctx, key, data, expiration).Err()
}

func (p *RedisProvider) Get(ctx context.Context, key string, dest any) error {
	data, err := p.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (p *RedisProvider) Delete(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

func (p *RedisProvider) Close() error {
	return p.rdb.Close()
}

// Open 按配置选择后端：未启用返回 nil；Redis 不可用时退回内存缓存
func Open(ctx context.Context, cfg config.CacheConfig) Provider {
	if !cfg.Enabled {
		return nil
	}
	if cfg.RedisAddr == "" {
		return NewMemoryProvider()
	}
	p, err := NewRedisProvider(ctx, cfg)
	if err != nil {
		logger.Named("Cache").Warn().Err(err).Msg("Redis不可用，使用内存缓存")
		return NewMemoryProvider()
	}
	return p
}

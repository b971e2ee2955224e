// Package cache 解读结果缓存：Redis 或进程内存
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ErrMiss 未命中（含已过期）
var ErrMiss = errors.New("cache miss")

// Provider 缓存后端，值以 JSON 存取
type Provider interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const keyPrefix = "fortune:interp:"

// Key 由主题和若干组成部分生成缓存键；内容过长，取 sha256
func Key(topic string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return keyPrefix + strings.ToLower(topic) + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}

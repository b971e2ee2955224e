package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// 写入时最多每隔 sweepInterval 清理一次过期项
const sweepInterval = time.Minute

// MemoryProvider 进程内缓存，未配置 Redis 时使用
type MemoryProvider struct {
	mu        sync.RWMutex
	items     map[string]memoryItem
	now       func() time.Time
	nextSweep time.Time
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{items: map[string]memoryItem{}, now: time.Now}
}

func (p *MemoryProvider) Get(_ context.Context, key string, dest any) error {
	p.mu.RLock()
	item, ok := p.items[key]
	p.mu.RUnlock()
	if !ok || len(item.data) == 0 {
		return ErrMiss
	}
	if !item.expiresAt.IsZero() && p.now().After(item.expiresAt) {
		p.mu.Lock()
		delete(p.items, key)
		p.mu.Unlock()
		return ErrMiss
	}
	return json.Unmarshal(item.data, dest)
}

func (p *MemoryProvider) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	now := p.now()
	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = now.Add(expiration)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !now.Before(p.nextSweep) {
		p.sweepLocked(now)
	}
	p.items[key] = memoryItem{data: b, expiresAt: expiresAt}
	return nil
}

func (p *MemoryProvider) sweepLocked(now time.Time) {
	for k, item := range p.items {
		if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
			delete(p.items, k)
		}
	}
	p.nextSweep = now.Add(sweepInterval)
}

func (p *MemoryProvider) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.items, key)
	p.mu.Unlock()
	return nil
}

// Len 当前条目数（含未清理的过期项）
func (p *MemoryProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

func (p *MemoryProvider) Close() error { return nil }

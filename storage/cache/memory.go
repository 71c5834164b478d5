package cache

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/foyer/core"
)

type memoryItem struct {
	value     string
	expiresAt time.Time // zero: never
}

// MemoryKV is a process-local Cache with per key expiry.
type MemoryKV struct {
	mutex sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string]memoryItem), now: time.Now}
}

func (kv *MemoryKV) Get(_ context.Context, key string) (string, error) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	item, ok := kv.items[key]
	if !ok {
		return "", core.ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && !kv.now().Before(item.expiresAt) {
		delete(kv.items, key)
		return "", core.ErrCacheMiss
	}
	return item.value, nil
}

func (kv *MemoryKV) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = kv.now().Add(ttl)
	}
	kv.items[key] = item
	return nil
}

func (kv *MemoryKV) Delete(_ context.Context, keys ...string) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	for _, k := range keys {
		delete(kv.items, k)
	}
	return nil
}

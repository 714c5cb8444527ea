package store

import (
	"container/list"
	"context"
	"sync"
	"time"

	"artlens-core/internal/domain/entity"
)

type responseItem struct {
	key       string
	content   *entity.GeneratedContent
	expiresAt time.Time
}

type kindShard struct {
	items map[string]*list.Element
	order *list.List
}

// MemoryResponseCache holds generated content with a uniform TTL. The shared
// capacity is split into per-kind shards so a hot kind (e.g. chat primers)
// cannot evict every description out of the cache.
type MemoryResponseCache struct {
	mu         sync.Mutex
	perKindCap int
	now        func() time.Time
	shards     map[entity.ContentKind]*kindShard
}

func NewMemoryResponseCache(capacity int) *MemoryResponseCache {
	perKind := capacity / len(entity.ContentKinds)
	if perKind < 1 {
		perKind = 1
	}
	shards := make(map[entity.ContentKind]*kindShard, len(entity.ContentKinds))
	for _, k := range entity.ContentKinds {
		shards[k] = &kindShard{items: make(map[string]*list.Element), order: list.New()}
	}
	return &MemoryResponseCache{
		perKindCap: perKind,
		now:        time.Now,
		shards:     shards,
	}
}

// Get returns the cached payload, or ErrNotFound once the entry expired.
// Expired entries are removed lazily here.
func (c *MemoryResponseCache) Get(_ context.Context, sig entity.ContentSignature) (*entity.GeneratedContent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	shard, ok := c.shards[sig.Kind]
	if !ok {
		return nil, entity.ErrNotFound
	}
	el, ok := shard.items[sig.Key()]
	if !ok {
		return nil, entity.ErrNotFound
	}
	item := el.Value.(*responseItem)
	if !c.now().Before(item.expiresAt) {
		shard.order.Remove(el)
		delete(shard.items, item.key)
		return nil, entity.ErrNotFound
	}
	shard.order.MoveToFront(el)
	return item.content, nil
}

// Put overwrites any existing entry for the signature (last-writer-wins).
func (c *MemoryResponseCache) Put(_ context.Context, sig entity.ContentSignature, content *entity.GeneratedContent, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	shard, ok := c.shards[sig.Kind]
	if !ok {
		return entity.ErrInvalidInput
	}
	key := sig.Key()
	item := &responseItem{key: key, content: content, expiresAt: c.now().Add(ttl)}
	if el, ok := shard.items[key]; ok {
		el.Value = item
		shard.order.MoveToFront(el)
		return nil
	}
	shard.items[key] = shard.order.PushFront(item)
	for shard.order.Len() > c.perKindCap {
		back := shard.order.Back()
		evicted := back.Value.(*responseItem)
		shard.order.Remove(back)
		delete(shard.items, evicted.key)
	}
	return nil
}

package memo

import (
	"container/list"
	"context"
	"sync"
)

// LRUBackend is an in-process backend with least-recently-used eviction.
// Bounded capacity keeps long-running servers from leaking uploads.
type LRUBackend struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used

	hits   int64
	misses int64
}

type lruEntry struct {
	key string
	res *Result
}

// NewLRUBackend creates a backend holding at most capacity results.
func NewLRUBackend(capacity int) *LRUBackend {
	if capacity <= 0 {
		capacity = 16
	}
	return &LRUBackend{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Name implements Backend.
func (b *LRUBackend) Name() string { return "lru" }

// Get implements Backend.
func (b *LRUBackend) Get(_ context.Context, key string) (*Result, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	el, ok := b.entries[key]
	if !ok {
		b.misses++
		return nil, false
	}
	b.order.MoveToFront(el)
	b.hits++
	return el.Value.(*lruEntry).res, true
}

// Put implements Backend.
func (b *LRUBackend) Put(_ context.Context, key string, res *Result) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if el, ok := b.entries[key]; ok {
		el.Value.(*lruEntry).res = res
		b.order.MoveToFront(el)
		return nil
	}

	for len(b.entries) >= b.capacity {
		oldest := b.order.Back()
		if oldest == nil {
			break
		}
		b.order.Remove(oldest)
		delete(b.entries, oldest.Value.(*lruEntry).key)
	}

	b.entries[key] = b.order.PushFront(&lruEntry{key: key, res: res})
	return nil
}

// Stats contains cache statistics.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
	HitRate float64
}

// Stats returns cache statistics.
func (b *LRUBackend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Stats{Entries: len(b.entries), Hits: b.hits, Misses: b.misses}
	if total := b.hits + b.misses; total > 0 {
		s.HitRate = float64(b.hits) / float64(total)
	}
	return s
}

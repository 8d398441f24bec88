package cmap

import (
	"sync"

	"github.com/yndnr/hashguard/pkg/securemap"
)

// DefaultShardCount is the default number of shards.
const DefaultShardCount = 16

// Map is a concurrent-safe sharded map from string keys to V.
type Map[V any] struct {
	shards    []*shard[V]
	shardMask uint64
	seed      securemap.Seed
}

type shard[V any] struct {
	mu    sync.RWMutex
	items *securemap.Map[V]
}

// New creates a sharded map with the default shard count. cfg and opts are
// applied to every shard.
func New[V any](cfg securemap.Config, opts ...securemap.Option) (*Map[V], error) {
	return NewWithShards[V](DefaultShardCount, cfg, opts...)
}

// NewWithShards creates a sharded map with the specified shard count.
// shardCount must be a power of 2; other values select DefaultShardCount.
// The routing seed and the shard seeds are drawn from the entropy source
// selected by opts.
func NewWithShards[V any](shardCount int, cfg securemap.Config, opts ...securemap.Option) (*Map[V], error) {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultShardCount
	}

	seed, err := securemap.NewSeed(securemap.EntropySource(opts...))
	if err != nil {
		return nil, err
	}

	m := &Map[V]{
		shards:    make([]*shard[V], shardCount),
		shardMask: uint64(shardCount - 1),
		seed:      seed,
	}

	for i := 0; i < shardCount; i++ {
		items, err := securemap.New[V](cfg, opts...)
		if err != nil {
			return nil, err
		}
		m.shards[i] = &shard[V]{items: items}
	}

	return m, nil
}

func (m *Map[V]) getShard(key string) *shard[V] {
	return m.shards[securemap.Sum64String(m.seed, key)&m.shardMask]
}

// Get retrieves a value by key.
func (m *Map[V]) Get(key string) (V, bool) {
	shard := m.getShard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	return shard.items.Get(key)
}

// Set stores a key-value pair. It fails only when the shard had to rehash
// and no entropy was available.
func (m *Map[V]) Set(key string, value V) error {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.items.Set(key, value)
}

// Delete removes a key and reports whether it was present.
func (m *Map[V]) Delete(key string) bool {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.items.Delete(key)
}

// Has checks if a key exists.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Count returns the total number of items.
func (m *Map[V]) Count() int {
	count := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		count += shard.items.Len()
		shard.mu.RUnlock()
	}
	return count
}

// Clear removes all items. Shard seeds and capacities are kept.
func (m *Map[V]) Clear() {
	for _, shard := range m.shards {
		shard.mu.Lock()
		shard.items.Clear()
		shard.mu.Unlock()
	}
}

// RehashAll reseeds every shard. It stops at the first shard that cannot
// draw a seed; shards already reseeded stay reseeded.
func (m *Map[V]) RehashAll() error {
	for _, shard := range m.shards {
		shard.mu.Lock()
		err := shard.items.RehashWithNewSeed()
		shard.mu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

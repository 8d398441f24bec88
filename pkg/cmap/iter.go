package cmap

import "github.com/yndnr/hashguard/pkg/securemap"

// Range calls fn for each key-value pair until fn returns false. Each shard
// is read-locked while it is visited; fn must not write to the map.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, shard := range m.shards {
		shard.mu.RLock()
		cont := true
		shard.items.Range(func(k string, v V) bool {
			cont = fn(k, v)
			return cont
		})
		shard.mu.RUnlock()
		if !cont {
			return
		}
	}
}

// Keys returns all keys.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Count())
	m.Range(func(key string, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// RangeWithLimit iterates over at most limit pairs and returns how many
// were visited.
func (m *Map[V]) RangeWithLimit(limit int, fn func(key string, value V) bool) int {
	count := 0
	m.Range(func(k string, v V) bool {
		if count >= limit || !fn(k, v) {
			return false
		}
		count++
		return true
	})
	return count
}

// GetOrSet returns the existing value for a key, or sets and returns the
// given value if absent. loaded reports whether the value already existed.
func (m *Map[V]) GetOrSet(key string, value V) (actual V, loaded bool, err error) {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if existing, ok := shard.items.Get(key); ok {
		return existing, true, nil
	}
	if err := shard.items.Set(key, value); err != nil {
		return value, false, err
	}
	return value, false, nil
}

// Update atomically replaces the value of key with fn(current, exists).
func (m *Map[V]) Update(key string, fn func(value V, exists bool) V) (V, error) {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	existing, exists := shard.items.Get(key)
	newValue := fn(existing, exists)
	return newValue, shard.items.Set(key, newValue)
}

// Pop removes a key and returns its value.
func (m *Map[V]) Pop(key string) (V, bool) {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	val, ok := shard.items.Get(key)
	if ok {
		shard.items.Delete(key)
	}
	return val, ok
}

// ShardCount returns the number of shards.
func (m *Map[V]) ShardCount() int {
	return len(m.shards)
}

// ShardStats holds the statistics of one shard.
type ShardStats struct {
	Index int `json:"index"`
	securemap.Stats
}

// Stats returns statistics about all shards.
func (m *Map[V]) Stats() []ShardStats {
	stats := make([]ShardStats, len(m.shards))
	for i, shard := range m.shards {
		shard.mu.RLock()
		stats[i] = ShardStats{Index: i, Stats: shard.items.Stats()}
		shard.mu.RUnlock()
	}
	return stats
}

// Totals aggregates the shard statistics. MaxChain is the longest chain of
// any shard; ratios are computed over the summed size and capacity.
func (m *Map[V]) Totals() securemap.Stats {
	var t securemap.Stats
	for _, s := range m.Stats() {
		t.Size += s.Size
		t.Capacity += s.Capacity
		t.MaxChain = max(t.MaxChain, s.MaxChain)
		t.CollisionEvents += s.CollisionEvents
		t.CollisionsTotal += s.CollisionsTotal
		t.AttacksDetected += s.AttacksDetected
		t.RehashCount += s.RehashCount
	}
	if t.Capacity > 0 {
		t.LoadFactor = float64(t.Size) / float64(t.Capacity)
		t.AvgChain = t.LoadFactor
	}
	return t
}

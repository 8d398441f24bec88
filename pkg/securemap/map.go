package securemap

import (
	"crypto/subtle"
	"io"
)

type entry[V any] struct {
	key    string
	digest [DigestSize]byte
	value  V
}

// table is one generation of the bucket array. A rehash builds a new table
// and swaps it in; a table is never redistributed in place.
type table[V any] struct {
	seed    Seed
	buckets [][]entry[V]
	size    int
}

func newTable[V any](capacity int, seed Seed) *table[V] {
	return &table[V]{
		seed:    seed,
		buckets: make([][]entry[V], capacity),
	}
}

func (t *table[V]) index(hash HashFunc, key string) int {
	return int(hash(t.seed, key) % uint64(len(t.buckets)))
}

// Map is a flood-resistant hash map from string keys to values of type V.
type Map[V any] struct {
	cfg     Config
	tab     *table[V]
	hash    HashFunc
	cmp     Comparator
	entropy io.Reader
	logger  Logger
	monitor *collisionMonitor

	rehashCount     int
	collisionsTotal uint64
	attacksDetected uint64
}

// New creates a Map with a freshly drawn seed. It fails only when the
// entropy source cannot produce one.
func New[V any](cfg Config, opts ...Option) (*Map[V], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg = cfg.withDefaults()

	seed, err := drawSeed(o.entropy)
	if err != nil {
		return nil, err
	}

	return &Map[V]{
		cfg:     cfg,
		tab:     newTable[V](cfg.Capacity, seed),
		hash:    o.hash,
		cmp:     NewComparator(o.digest),
		entropy: o.entropy,
		logger:  o.logger,
		monitor: newCollisionMonitor(o.clock, cfg),
	}, nil
}

// scan compares d against every slot of b. found is 1 when a slot matched
// and pos is that slot; the loop never exits early.
func scan[V any](b []entry[V], d *[DigestSize]byte) (pos, found int) {
	for i := range b {
		eq := digestsEqual(&b[i].digest, d)
		pos = subtle.ConstantTimeSelect(eq, i, pos)
		found |= eq
	}
	return pos, found
}

// Get returns the value stored for key.
func (m *Map[V]) Get(key string) (V, bool) {
	d := m.cmp.Digest([]byte(key))
	t := m.tab
	b := t.buckets[t.index(m.hash, key)]

	pos, found := scan(b, &d)

	var v V
	if len(b) > 0 {
		v = b[pos].value
	}
	// Only the returned result depends on found here; the scan is complete.
	if found == 0 {
		var zero V
		v = zero
	}
	return v, found == 1
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key, replacing any previous value.
//
// Set only fails when a rehash it had to perform could not draw a fresh
// seed. The map is then left as it was before the rehash attempt.
func (m *Map[V]) Set(key string, value V) error {
	d := m.cmp.Digest([]byte(key))

	retried := false
	for {
		t := m.tab
		idx := t.index(m.hash, key)
		b := t.buckets[idx]

		recorded, attack := m.monitor.observe(len(b))
		if recorded {
			m.collisionsTotal++
			m.logger.Warn("potential collision detected",
				"bucket_index", idx,
				"bucket_length", len(b),
				"recent_collisions", len(m.monitor.events),
			)
		}
		if attack && !retried {
			m.attacksDetected++
			m.logger.Error("high-rate collision attack detected, expanding map",
				"capacity", len(t.buckets),
				"recent_collisions", len(m.monitor.events),
			)
			if err := m.Expand(); err != nil {
				return err
			}
			m.monitor.reset()
			retried = true
			continue
		}

		pos, found := scan(b, &d)

		// Blind write: the slot past the end is always reserved, the entry
		// lands on the match or on that slot, and the reservation is then
		// dropped again when it was not needed.
		n := len(b)
		b = append(b, entry[V]{})
		target := subtle.ConstantTimeSelect(found, pos, n)
		b[target] = entry[V]{key: key, digest: d, value: value}
		b = b[:n+1-found]

		t.buckets[idx] = b
		t.size += 1 - found
		break
	}

	if m.LoadFactor() >= m.cfg.ExpandThreshold {
		return m.Expand()
	}
	return nil
}

// Delete removes key and reports whether it was present.
func (m *Map[V]) Delete(key string) bool {
	d := m.cmp.Digest([]byte(key))
	t := m.tab
	idx := t.index(m.hash, key)
	b := t.buckets[idx]
	if len(b) == 0 {
		return false
	}

	pos, found := scan(b, &d)

	// The matched slot takes the last entry; on a miss the last entry is
	// copied onto itself. Length shrinks by found.
	last := len(b) - 1
	target := subtle.ConstantTimeSelect(found, pos, last)
	b[target] = b[last]
	b = b[:last+1-found]
	clear(b[len(b) : last+1])

	t.buckets[idx] = b
	t.size -= found
	return found == 1
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return m.tab.size
}

// Capacity returns the current number of buckets.
func (m *Map[V]) Capacity() int {
	return len(m.tab.buckets)
}

// LoadFactor returns Len()/Capacity().
func (m *Map[V]) LoadFactor() float64 {
	return float64(m.tab.size) / float64(len(m.tab.buckets))
}

// Seed returns the current hash seed. It must not be exposed outside the
// process.
func (m *Map[V]) Seed() Seed {
	return m.tab.seed
}

// Config returns the effective configuration.
func (m *Map[V]) Config() Config {
	return m.cfg
}

// Range calls fn for every entry of the current table until fn returns
// false. fn must not modify the map.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	t := m.tab
	for _, b := range t.buckets {
		for i := range b {
			if !fn(b[i].key, b[i].value) {
				return
			}
		}
	}
}

// Clear removes all entries, keeping capacity and seed.
func (m *Map[V]) Clear() {
	t := m.tab
	for i := range t.buckets {
		clear(t.buckets[i])
		t.buckets[i] = t.buckets[i][:0]
	}
	t.size = 0
	m.monitor.reset()
}

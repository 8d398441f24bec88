package securemap

// RehashWithNewSeed redistributes every entry under a freshly drawn seed,
// keeping the capacity.
func (m *Map[V]) RehashWithNewSeed() error {
	return m.rebuild(len(m.tab.buckets))
}

// Expand doubles the capacity and redistributes every entry under a freshly
// drawn seed.
func (m *Map[V]) Expand() error {
	oldCap := len(m.tab.buckets)
	newCap := oldCap * 2
	m.logger.Info("expanding hash map",
		"old_capacity", oldCap,
		"new_capacity", newCap,
		"rehash_count", m.rehashCount,
	)
	return m.rebuild(newCap)
}

// rebuild fills a new table and swaps it in only once it is complete. On
// error the current table is untouched.
func (m *Map[V]) rebuild(capacity int) error {
	old := m.tab
	seed, err := freshSeed(m.entropy, old.seed)
	if err != nil {
		m.logger.Error("rehash aborted", "capacity", capacity, "error", err)
		return err
	}

	next := newTable[V](capacity, seed)
	for _, b := range old.buckets {
		for _, e := range b {
			idx := next.index(m.hash, e.key)
			next.buckets[idx] = append(next.buckets[idx], e)
		}
	}
	next.size = old.size

	m.tab = next
	m.rehashCount++
	return nil
}

package securemap

// Stats is a point-in-time summary of a Map.
type Stats struct {
	Size       int     `json:"size"`
	Capacity   int     `json:"capacity"`
	LoadFactor float64 `json:"load_factor"`
	MaxChain   int     `json:"max_chain"`
	AvgChain   float64 `json:"avg_chain"`

	// CollisionEvents counts collision events still inside the window.
	CollisionEvents int `json:"collision_events"`

	CollisionsTotal uint64 `json:"collisions_total"`
	AttacksDetected uint64 `json:"attacks_detected"`
	RehashCount     int    `json:"rehash_count"`
}

// Stats walks the bucket array and returns the current statistics.
func (m *Map[V]) Stats() Stats {
	t := m.tab
	maxChain := 0
	for _, b := range t.buckets {
		maxChain = max(maxChain, len(b))
	}
	capacity := len(t.buckets)
	return Stats{
		Size:            t.size,
		Capacity:        capacity,
		LoadFactor:      float64(t.size) / float64(capacity),
		MaxChain:        maxChain,
		AvgChain:        float64(t.size) / float64(capacity),
		CollisionEvents: m.monitor.recent(),
		CollisionsTotal: m.collisionsTotal,
		AttacksDetected: m.attacksDetected,
		RehashCount:     m.rehashCount,
	}
}

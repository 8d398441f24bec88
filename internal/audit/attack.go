package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/yndnr/hashguard/pkg/securemap"
)

// DefaultAttackKeys is the number of keys Simulate inserts.
const DefaultAttackKeys = 256

// AttackReport summarises a simulated collision flood.
type AttackReport struct {
	Keys            int           `json:"keys"`
	PeakChain       int           `json:"peak_chain"`
	FinalMaxChain   int           `json:"final_max_chain"`
	FinalCapacity   int           `json:"final_capacity"`
	CollisionsTotal uint64        `json:"collisions_total"`
	AttacksDetected uint64        `json:"attacks_detected"`
	RehashCount     int           `json:"rehash_count"`
	Lost            int           `json:"lost"`
	Elapsed         time.Duration `json:"elapsed"`
}

// Simulate floods a map with keys that all collide under the map's first
// seed, as if that seed had leaked to the attacker. Once the map detects
// the flood and moves to a fresh seed the keys spread out again. Capacity
// is sized so that load-factor growth does not rotate the seed first.
func Simulate(ctx context.Context, keys int, opts ...securemap.Option) (AttackReport, error) {
	if keys <= 0 {
		keys = DefaultAttackKeys
	}

	var leaked *securemap.Seed
	flood := func(seed securemap.Seed, key string) uint64 {
		if leaked == nil {
			leaked = &seed
		}
		if seed == *leaked {
			return 0
		}
		return securemap.Sum64String(seed, key)
	}

	cfg := securemap.DefaultConfig()
	cfg.Capacity = 4 * keys
	opts = append(opts, securemap.WithHashFunc(flood))
	m, err := securemap.New[int](cfg, opts...)
	if err != nil {
		return AttackReport{}, err
	}

	key := func(i int) string { return fmt.Sprintf("flood-%06d", i) }
	report := AttackReport{Keys: keys}
	start := time.Now()
	for i := range keys {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return report, err
			}
		}
		if err := m.Set(key(i), i); err != nil {
			return report, err
		}
		if s := m.Stats(); s.MaxChain > report.PeakChain {
			report.PeakChain = s.MaxChain
		}
	}
	report.Elapsed = time.Since(start)

	for i := range keys {
		if v, ok := m.Get(key(i)); !ok || v != i {
			report.Lost++
		}
	}

	s := m.Stats()
	report.FinalMaxChain = s.MaxChain
	report.FinalCapacity = s.Capacity
	report.CollisionsTotal = s.CollisionsTotal
	report.AttacksDetected = s.AttacksDetected
	report.RehashCount = s.RehashCount
	return report, nil
}

package audit

import (
	"fmt"

	"github.com/yndnr/hashguard/pkg/securemap"
)

// DefaultPopulation is the bucket length MapCases audits against.
const DefaultPopulation = 32

// MapCases builds Get, Set and Delete cases against a securemap.Map whose
// keys all share one bucket, so the hit and miss variants of each case scan
// the same population. The hit key sits in the middle of the bucket.
//
// Batch repeats an operation within one measurement; Set and Delete cases
// restore the population only after the whole batch, so they are audited
// with Batch 1.
func MapCases(population int, opts ...securemap.Option) ([]Case, error) {
	if population <= 0 {
		population = DefaultPopulation
	}

	sameBucket := func(securemap.Seed, string) uint64 { return 0 }
	cfg := securemap.Config{
		Capacity:        4 * population,
		MaxChainLength:  4 * population,
		ExpandThreshold: 1,
	}
	opts = append(opts, securemap.WithHashFunc(sameBucket))
	m, err := securemap.New[string](cfg, opts...)
	if err != nil {
		return nil, err
	}

	key := func(i int) string { return fmt.Sprintf("audit-key-%06d", i) }
	for i := range population {
		if err := m.Set(key(i), "payload"); err != nil {
			return nil, err
		}
	}

	present := key(population / 2)
	absent := key(population + 1)

	return []Case{
		{
			Name: "get",
			Hit:  func() { m.Get(present) },
			Miss: func() { m.Get(absent) },
		},
		{
			Name:      "set",
			Hit:       func() { _ = m.Set(present, "updated") },
			Miss:      func() { _ = m.Set(absent, "inserted") },
			ResetMiss: func() { m.Delete(absent) },
		},
		{
			Name:     "delete",
			Hit:      func() { m.Delete(present) },
			Miss:     func() { m.Delete(absent) },
			ResetHit: func() { _ = m.Set(present, "payload") },
		},
	}, nil
}

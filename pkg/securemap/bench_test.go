package securemap_test

import (
	"fmt"
	"testing"

	"github.com/spaolacci/murmur3"

	"github.com/yndnr/hashguard/pkg/securemap"
)

var benchKeys = func() []string {
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = fmt.Sprintf("bench-key-%08d", i)
	}
	return keys
}()

var sink uint64

func BenchmarkHash(b *testing.B) {
	seed := securemap.Seed{K0: 1, K1: 2}

	b.Run("siphash", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			sink += securemap.Sum64String(seed, benchKeys[i&1023])
		}
	})

	// Unkeyed baseline: fast, but collisions can be computed offline.
	b.Run("murmur3", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			sink += murmur3.Sum64([]byte(benchKeys[i&1023]))
		}
	})
}

func BenchmarkGet(b *testing.B) {
	b.Run("securemap/sha256", func(b *testing.B) {
		benchmarkSecureGet(b, securemap.SHA256)
	})
	b.Run("securemap/blake2b", func(b *testing.B) {
		benchmarkSecureGet(b, securemap.BLAKE2b256)
	})
	b.Run("runtime", func(b *testing.B) {
		m := make(map[string]int, len(benchKeys))
		for i, k := range benchKeys {
			m[k] = i
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = m[benchKeys[i&1023]]
		}
	})
}

func benchmarkSecureGet(b *testing.B, digest securemap.DigestFunc) {
	m, err := securemap.New[int](securemap.DefaultConfig(), securemap.WithDigest(digest))
	if err != nil {
		b.Fatal(err)
	}
	for i, k := range benchKeys {
		if err := m.Set(k, i); err != nil {
			b.Fatal(err)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Get(benchKeys[i&1023])
	}
}

func BenchmarkSet(b *testing.B) {
	m, err := securemap.New[int](securemap.DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := m.Set(benchKeys[i&1023], i); err != nil {
			b.Fatal(err)
		}
	}
}

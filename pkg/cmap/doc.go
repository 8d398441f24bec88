// Package cmap provides a concurrent map built from independently seeded
// securemap shards.
//
// Keys are routed to a shard with SipHash-2-4 under a shard seed of their
// own, so an attacker cannot aim at one shard any more than at one bucket.
// Every shard is a securemap.Map with its own seed, collision monitor and
// rehash schedule, guarded by its own RWMutex.
//
// Usage:
//
//	m, err := cmap.New[string](securemap.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	_ = m.Set("key", "value")
//	val, ok := m.Get("key")
//
// Thread Safety:
//
// All operations are safe for concurrent use. Get, Has and the iteration
// helpers take the shard read lock; everything that writes takes the write
// lock.
package cmap

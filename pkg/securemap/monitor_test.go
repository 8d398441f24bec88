package securemap

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestCollisionMonitor(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := Config{MaxChainLength: 4, CollisionWindow: time.Second, MaxCollisionEvents: 3}
	mon := newCollisionMonitor(clock, cfg)

	t.Run("short chains are ignored", func(t *testing.T) {
		for n := 0; n < 4; n++ {
			recorded, attack := mon.observe(n)
			require.False(t, recorded)
			require.False(t, attack)
		}
		require.Zero(t, mon.recent())
	})

	t.Run("burst is an attack", func(t *testing.T) {
		r1, a1 := mon.observe(4)
		r2, a2 := mon.observe(9)
		r3, a3 := mon.observe(4)
		require.True(t, r1 && r2 && r3)
		require.False(t, a1)
		require.False(t, a2)
		require.True(t, a3)
		mon.reset()
		require.Zero(t, mon.recent())
	})

	t.Run("spread out events are pruned", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			_, attack := mon.observe(5)
			require.False(t, attack, "event %d", i)
			clock.Advance(600 * time.Millisecond)
		}
		require.LessOrEqual(t, len(mon.events), 2)
	})

	t.Run("window expiry", func(t *testing.T) {
		mon.reset()
		mon.observe(5)
		mon.observe(5)
		require.Equal(t, 2, mon.recent())
		clock.Advance(time.Second)
		require.Zero(t, mon.recent())
		_, attack := mon.observe(5)
		require.False(t, attack)
		require.Len(t, mon.events, 1)
	})
}

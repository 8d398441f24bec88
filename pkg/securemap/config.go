package securemap

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
)

// Default construction parameters.
const (
	DefaultCapacity           = 16
	DefaultMaxChainLength     = 8
	DefaultCollisionWindow    = time.Second
	DefaultMaxCollisionEvents = 10
	DefaultExpandThreshold    = 0.75
)

// Config holds the tunables of a Map. Zero values select the defaults.
type Config struct {
	// Capacity is the initial number of buckets.
	Capacity int

	// MaxChainLength is the bucket length at which an insert is recorded
	// as a collision event.
	MaxChainLength int

	// CollisionWindow is how long a collision event counts towards attack
	// detection.
	CollisionWindow time.Duration

	// MaxCollisionEvents is the number of events inside the window that
	// is treated as a flooding attack.
	MaxCollisionEvents int

	// ExpandThreshold is the load factor that triggers a capacity doubling.
	// Must be in (0, 1].
	ExpandThreshold float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:           DefaultCapacity,
		MaxChainLength:     DefaultMaxChainLength,
		CollisionWindow:    DefaultCollisionWindow,
		MaxCollisionEvents: DefaultMaxCollisionEvents,
		ExpandThreshold:    DefaultExpandThreshold,
	}
}

// withDefaults replaces out-of-range fields with their defaults.
func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.MaxChainLength <= 0 {
		c.MaxChainLength = DefaultMaxChainLength
	}
	if c.CollisionWindow <= 0 {
		c.CollisionWindow = DefaultCollisionWindow
	}
	if c.MaxCollisionEvents <= 0 {
		c.MaxCollisionEvents = DefaultMaxCollisionEvents
	}
	if c.ExpandThreshold <= 0 || c.ExpandThreshold > 1 {
		c.ExpandThreshold = DefaultExpandThreshold
	}
	return c
}

// HashFunc computes the keyed hash of a key. Sum64String is the only
// production implementation; tests substitute degenerate functions.
type HashFunc func(seed Seed, key string) uint64

// Option configures a Map.
type Option func(*options)

type options struct {
	entropy io.Reader
	digest  DigestFunc
	logger  Logger
	clock   clockwork.Clock
	hash    HashFunc
}

func defaultOptions() options {
	return options{
		entropy: rand.Reader,
		digest:  SHA256,
		logger:  nopLogger{},
		clock:   clockwork.NewRealClock(),
		hash:    Sum64String,
	}
}

// WithEntropy sets the source the seeds are drawn from. The default is
// crypto/rand.Reader.
func WithEntropy(r io.Reader) Option {
	return func(o *options) {
		if r != nil {
			o.entropy = r
		}
	}
}

// EntropySource returns the entropy source opts select, so callers that
// draw their own seeds next to a Map use the same capability.
func EntropySource(opts ...Option) io.Reader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o.entropy
}

// WithDigest sets the digest used for key comparison.
func WithDigest(fn DigestFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.digest = fn
		}
	}
}

// WithLogger sets the sink for collision and rehash events.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock used to age collision events.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithHashFunc replaces the keyed hash. Intended for tests that need to
// force collisions.
func WithHashFunc(fn HashFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.hash = fn
		}
	}
}

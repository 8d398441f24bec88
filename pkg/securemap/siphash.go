package securemap

import (
	"unsafe"

	"github.com/dchest/siphash"
)

// Seed is the 128-bit secret key of the keyed hash.
type Seed struct {
	K0 uint64
	K1 uint64
}

// Sum64 returns the SipHash-2-4 digest of p under seed.
func Sum64(seed Seed, p []byte) uint64 {
	return siphash.Hash(seed.K0, seed.K1, p)
}

// Sum64String is Sum64 for string keys. It does not allocate.
func Sum64String(seed Seed, s string) uint64 {
	// siphash.Hash only reads p, so the string's bytes can be viewed in place.
	return siphash.Hash(seed.K0, seed.K1, unsafe.Slice(unsafe.StringData(s), len(s)))
}

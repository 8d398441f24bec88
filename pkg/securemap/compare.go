package securemap

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/blake2b"
)

// DigestSize is the width of the key digests compared by the map.
const DigestSize = 32

// DigestFunc maps a key to a fixed-size cryptographic digest.
type DigestFunc func([]byte) [DigestSize]byte

// SHA256 is the default DigestFunc.
func SHA256(p []byte) [DigestSize]byte {
	return sha256.Sum256(p)
}

// BLAKE2b256 is a faster DigestFunc with the same output width.
func BLAKE2b256(p []byte) [DigestSize]byte {
	return blake2b.Sum256(p)
}

// DigestByName resolves a configured digest name. It returns nil for an
// unknown name.
func DigestByName(name string) DigestFunc {
	switch name {
	case "", "sha256":
		return SHA256
	case "blake2b", "blake2b-256":
		return BLAKE2b256
	default:
		return nil
	}
}

// Comparator decides key equality in time independent of the key bytes.
//
// Both operands are reduced to fixed-size digests first, so the final
// comparison always touches DigestSize bytes regardless of input lengths or
// where the inputs first differ.
type Comparator struct {
	digest DigestFunc
}

// NewComparator returns a Comparator using fn, or SHA256 when fn is nil.
func NewComparator(fn DigestFunc) Comparator {
	if fn == nil {
		fn = SHA256
	}
	return Comparator{digest: fn}
}

// Equal reports whether a and b are equal.
func (c Comparator) Equal(a, b []byte) bool {
	da := c.Digest(a)
	db := c.Digest(b)
	return digestsEqual(&da, &db) == 1
}

// Digest returns the digest of p.
func (c Comparator) Digest(p []byte) [DigestSize]byte {
	if c.digest == nil {
		return SHA256(p)
	}
	return c.digest(p)
}

// digestsEqual returns 1 when a and b are equal and 0 otherwise, without
// branching on their contents.
func digestsEqual(a, b *[DigestSize]byte) int {
	return subtle.ConstantTimeCompare(a[:], b[:])
}

// Package securemap provides a chained hash map that stays usable when the
// keys are chosen by an adversary.
//
// Bucket placement uses SipHash-2-4 under a secret 128-bit seed, so
// colliding keys cannot be computed offline. Key equality is decided on
// fixed-size digests with a constant-time compare, and every lookup scans
// its whole bucket, so the time an operation takes does not depend on
// whether or where a key was found. Bursts of long chains are treated as a
// flooding attempt: the map doubles its capacity under a fresh seed and
// retries the insert.
//
// A Map is not safe for concurrent use. Wrap it in a mutex or use
// package cmap, which shards keys over independently seeded maps.
package securemap

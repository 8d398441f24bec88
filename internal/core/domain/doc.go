// Package domain defines the value objects and error codes of the
// hashguard key/value store.
//
// It has no IO dependencies. The store itself lives in pkg/securemap and
// pkg/cmap; this package only describes what a valid entry is and how
// failures are reported to clients:
//
//   - Entry: a key/value pair accepted by the store
//   - Limits: size bounds enforced before anything reaches the map
//   - Errors: DomainError and the HG-* error codes
package domain

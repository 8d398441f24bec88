// Package buildinfo exposes version information of the hashguard binaries.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/hashguard/internal/infra/buildinfo.Version=v1.0.0"
//
// Missing values fall back to the module build information embedded by the
// Go toolchain.
package buildinfo

// Package main provides the entry point for hashguard-server.
//
// The server exposes a flood-resistant key/value store over:
//
//   - HTTP API for get, set, delete, stats and admin rehash
//   - Redis-compatible protocol (optional) for standard Redis clients
//   - Prometheus metrics endpoint
//
// Usage:
//
//	hashguard-server [serve] --config /path/to/config.yaml
//	hashguard-server audit [--attack]
//	hashguard-server version
//
// The configuration file is watched while serving; a change to log.level
// takes effect without a restart.
package main

// Package main provides the entry point for hashguard-cli.
//
// The CLI talks to hashguard-server over HTTP:
//
//   - Key operations (get, set, delete, exists)
//   - Store statistics and forced rehash
//   - Saved server profiles
//
// Usage:
//
//	hashguard-cli [command] [flags]
//	hashguard-cli -o json stats --shards
//	hashguard-cli --server http://10.0.0.5:5080 shell
//
// Without a command it prints help; the shell command starts an
// interactive session.
package main

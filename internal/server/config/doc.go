// Package config defines the hashguard-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation (addresses, ranges, names)
//   - sanitize.go: copy safe for logging
//   - store.go: conversion into securemap construction parameters
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// HASHGUARD_* environment variables and flags.
package config

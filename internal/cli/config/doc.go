// Package config provides CLI configuration for hashguard-cli, stored in
// ~/.hashguard/cli.yaml.
package config

// Package confloader loads hashguard configuration.
//
// Sources, highest priority first:
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables with the HASHGUARD_ prefix
//  3. YAML configuration file
//  4. Defaults already present in the target struct
//
// Watcher reports writes to the configuration file so the server can
// reload settings that are safe to change at runtime.
package confloader

// Package output provides output formatting for hashguard-cli.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: Table rendering
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
package output

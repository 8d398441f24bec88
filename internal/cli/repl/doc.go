// Package repl provides the interactive mode for hashguard-cli.
//
// Each input line is split shell-style and dispatched to the same commands
// the single-shot CLI runs. History is kept in memory and persisted to
// ~/.hashguard/history.
package repl

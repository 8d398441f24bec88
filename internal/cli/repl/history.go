package repl

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DefaultHistorySize bounds the number of remembered lines.
const DefaultHistorySize = 1000

// History keeps the most recent input lines.
type History struct {
	entries []string
	maxSize int
	file    string
}

// DefaultHistoryPath returns ~/.hashguard/history.
func DefaultHistoryPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".hashguard", "history")
}

// NewHistory creates a History persisted to file. An empty file keeps the
// history in memory only.
func NewHistory(file string) *History {
	return &History{maxSize: DefaultHistorySize, file: file}
}

// Add appends line unless it repeats the previous entry.
func (h *History) Add(line string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
}

// Get returns the entry at index, 0 being the most recent.
func (h *History) Get(index int) string {
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Entries returns the entries oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Load reads the history file. A missing file is not an error.
func (h *History) Load() error {
	if h.file == "" {
		return nil
	}
	f, err := os.Open(h.file)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.Add(line)
		}
	}
	return scanner.Err()
}

// Save writes the history file with owner-only permissions.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.file), 0o700); err != nil {
		return err
	}
	data := strings.Join(h.entries, "\n")
	if data != "" {
		data += "\n"
	}
	return os.WriteFile(h.file, []byte(data), 0o600)
}

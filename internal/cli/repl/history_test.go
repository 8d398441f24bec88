package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistory_Add(t *testing.T) {
	h := NewHistory("")
	h.Add("a")
	h.Add("b")
	h.Add("b")

	if got := h.Entries(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Entries() = %q", got)
	}
	if h.Get(0) != "b" || h.Get(1) != "a" || h.Get(2) != "" || h.Get(-1) != "" {
		t.Errorf("Get() out of order")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory("")
	h.maxSize = 3
	for _, c := range []string{"1", "2", "3", "4"} {
		h.Add(c)
	}
	if got := h.Entries(); !reflect.DeepEqual(got, []string{"2", "3", "4"}) {
		t.Errorf("Entries() = %q", got)
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")
	h := NewHistory(path)
	h.Add("get a")
	h.Add("set a 1")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %o, want 600", info.Mode().Perm())
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := loaded.Entries(); !reflect.DeepEqual(got, []string{"get a", "set a 1"}) {
		t.Errorf("Entries() = %q", got)
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "none"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
	if err := NewHistory("").Save(); err != nil {
		t.Errorf("Save() in-memory error = %v", err)
	}
}

func TestDefaultHistoryPath(t *testing.T) {
	if p := DefaultHistoryPath(); p != "" && filepath.Base(p) != "history" {
		t.Errorf("DefaultHistoryPath() = %q", p)
	}
}

package repl

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewHistory(t *testing.T) {
	h := NewHistory()
	if h.maxSize != 1000 {
		t.Errorf("maxSize = %d, want 1000", h.maxSize)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistory_Add(t *testing.T) {
	h := NewFileHistory("", 3)

	h.Add("a")
	h.Add("a")
	if h.Len() != 1 {
		t.Errorf("consecutive duplicates should collapse, Len() = %d", h.Len())
	}

	h.Add("b")
	h.Add("c")
	h.Add("d")
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if h.Get(0) != "d" || h.Get(2) != "b" {
		t.Errorf("entries = %v", h.entries)
	}
}

func TestHistory_Get_OutOfRange(t *testing.T) {
	h := NewFileHistory("", 10)
	h.Add("x")
	if h.Get(-1) != "" || h.Get(1) != "" {
		t.Error("Get() out of range should return empty string")
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")

	h := NewFileHistory(path, 10)
	h.Add("PING")
	h.Add(`SET k "v w"`)
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded := NewFileHistory(path, 10)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 2 || loaded.Get(0) != `SET k "v w"` {
		t.Errorf("loaded entries = %v", loaded.entries)
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewFileHistory(filepath.Join(t.TempDir(), "none"), 10)
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewFileHistory("", 10)
	h.Add("PING")
	if err := h.Save(); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

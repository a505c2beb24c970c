package credstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFile_GetMissing(t *testing.T) {
	store := NewFile(filepath.Join(t.TempDir(), "token.json"))

	token, err := store.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "" {
		t.Errorf("expected empty token, got %q", token)
	}
}

func TestFile_SetGetRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewFile(path)

	if err := store.Set("abc123"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
	dirInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("config dir not created: %v", err)
	}
	if dirInfo.Mode().Perm() != 0700 {
		t.Errorf("expected dir mode 0700, got %v", dirInfo.Mode().Perm())
	}

	// A fresh store reads what the first one wrote
	token, err := NewFile(path).Get()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if token != "abc123" {
		t.Errorf("expected abc123, got %q", token)
	}

	if err := store.Set("def456"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if token, _ := store.Get(); token != "def456" {
		t.Errorf("expected def456 after overwrite, got %q", token)
	}

	if err := store.Remove(); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("token file should have been deleted")
	}
	if err := store.Remove(); err != nil {
		t.Errorf("second remove should be a no-op, got %v", err)
	}
}

func TestFile_GetCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatalf("failed to write token.json: %v", err)
	}

	if _, err := NewFile(path).Get(); err == nil {
		t.Fatal("expected error for corrupt token file")
	}
}

func TestMemory(t *testing.T) {
	store := NewMemory("abc")
	if token, _ := store.Get(); token != "abc" {
		t.Errorf("expected abc, got %q", token)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if token, _ := store.Get(); token != "" {
		t.Errorf("expected empty token, got %q", token)
	}
}

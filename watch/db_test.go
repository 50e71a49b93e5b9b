package watch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDB_LoadMissingStartsEmpty(t *testing.T) {
	db, err := LoadDB(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("LoadDB failed: %v", err)
	}
	if db.Len() != 0 {
		t.Errorf("fresh db has %d entries", db.Len())
	}
}

func TestDB_RecordPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")

	db, err := LoadDB(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Record("card.png", "abc123"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !db.Seen("card.png", "abc123") {
		t.Error("Seen should be true after Record")
	}
	if db.Seen("card.png", "different") {
		t.Error("Seen should be false for a different hash")
	}

	// Reload from disk.
	db2, err := LoadDB(path)
	if err != nil {
		t.Fatal(err)
	}
	if !db2.Seen("card.png", "abc123") {
		t.Error("recorded entry did not survive a reload")
	}
}

func TestDB_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDB(path); err == nil {
		t.Error("expected an error for corrupt JSON")
	}
}

func TestFileHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	h1, err := FileHash(path)
	if err != nil {
		t.Fatal(err)
	}
	// SHA-256 of "hello".
	if h1 != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("hash = %s", h1)
	}

	if _, err := FileHash(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

// Package watch monitors a character directory and feeds new or
// changed cards through a translation handler.
package watch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// DB tracks processed files by content hash so restarts do not
// re-translate cards that are already done. It persists as a JSON map
// of file name to hash.
type DB struct {
	path    string
	mu      sync.Mutex
	entries map[string]string
}

// LoadDB reads the tracking database at path, starting empty when the
// file does not exist yet.
func LoadDB(path string) (*DB, error) {
	db := &DB{path: path, entries: make(map[string]string)}

	raw, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if os.IsNotExist(err) {
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tracking db: %w", err)
	}

	if err := json.Unmarshal(raw, &db.entries); err != nil {
		return nil, fmt.Errorf("parsing tracking db: %w", err)
	}
	return db, nil
}

// Seen reports whether name was already processed with this hash.
func (d *DB) Seen(name, hash string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entries[name] == hash
}

// Record stores the hash for name and persists the database.
func (d *DB) Record(name, hash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[name] = hash
	return d.save()
}

// Len returns the number of tracked files.
func (d *DB) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *DB) save() error {
	raw, err := json.MarshalIndent(d.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tracking db: %w", err)
	}
	if err := os.WriteFile(d.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing tracking db: %w", err)
	}
	return nil
}

// FileHash returns the hex SHA-256 of a file's contents.
func FileHash(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

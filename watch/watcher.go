package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ProcessFunc translates the card at src and writes the result to dst.
// src is the preserved original; dst is where the translated card
// belongs (usually the file's original location).
type ProcessFunc func(ctx context.Context, src, dst string) error

// Config holds watcher configuration.
type Config struct {
	Dir       string      // Directory to watch for card PNGs
	BackupDir string      // Where originals are moved before translation
	DBPath    string      // Tracking database file
	Logger    *zap.Logger // Optional; defaults to zap.NewNop()
	Process   ProcessFunc
}

// Watcher monitors a directory for character cards and runs each new
// or changed card through the configured ProcessFunc exactly once.
type Watcher struct {
	dir       string
	backupDir string
	db        *DB
	log       *zap.Logger
	process   ProcessFunc
}

// New creates a Watcher, loading the tracking database and creating
// the backup directory if needed.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch: Dir is required")
	}
	if cfg.Process == nil {
		return nil, errors.New("watch: Process is required")
	}

	backupDir := cfg.BackupDir
	if backupDir == "" {
		backupDir = filepath.Join(cfg.Dir, "original")
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup dir: %w", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(cfg.Dir, "translation_db.json")
	}
	db, err := LoadDB(dbPath)
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Watcher{
		dir:       cfg.Dir,
		backupDir: backupDir,
		db:        db,
		log:       log,
		process:   cfg.Process,
	}, nil
}

// Run processes the cards already in the directory, then blocks
// watching for new ones until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.scanExisting(ctx); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	w.log.Info("watching for character cards", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			// Give the writer a moment to finish; card PNGs are small
			// but rarely land in one write.
			time.Sleep(200 * time.Millisecond)
			w.handleFile(ctx, event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// scanExisting runs every card already present through the handler.
func (w *Watcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", w.dir, err)
	}

	w.log.Info("processing existing cards", zap.Int("files", len(entries)))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			continue
		}
		w.handleFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

func (w *Watcher) handleFile(ctx context.Context, path string) {
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return
	}

	name := filepath.Base(path)
	hash, err := FileHash(path)
	if err != nil {
		// Likely already moved or still being written.
		return
	}
	if w.db.Seen(name, hash) {
		return
	}

	w.log.Info("translating card", zap.String("file", name))

	src, err := w.preserveOriginal(path)
	if err != nil {
		w.log.Error("backing up card", zap.String("file", name), zap.Error(err))
		return
	}

	if err := w.process(ctx, src, path); err != nil {
		w.log.Error("translating card", zap.String("file", name), zap.Error(err))
		return
	}

	newHash, err := FileHash(path)
	if err != nil {
		w.log.Error("hashing translated card", zap.String("file", name), zap.Error(err))
		return
	}
	if err := w.db.Record(name, newHash); err != nil {
		w.log.Error("recording translated card", zap.String("file", name), zap.Error(err))
		return
	}

	w.log.Info("card translated", zap.String("file", name))
}

// preserveOriginal moves the card into the backup directory and
// returns its new path. An existing backup of the same name wins; the
// incoming file is treated as a re-export of the same original.
func (w *Watcher) preserveOriginal(path string) (string, error) {
	dst := filepath.Join(w.backupDir, filepath.Base(path))
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}
	if err := os.Rename(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

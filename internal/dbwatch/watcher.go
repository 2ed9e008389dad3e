// Package dbwatch reports when the SQLite database file is changed on disk,
// for instance by a CLI command running next to `cookbook serve`.
package dbwatch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher calls OnChange once writes to the database have settled
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	log      *zap.Logger
}

// New watches dbPath. Writes closer together than debounce are reported once.
func New(dbPath string, debounce time.Duration, onChange func(), log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		path:     dbPath,
		debounce: debounce,
		onChange: onChange,
		log:      log,
	}
}

// Run blocks until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// the directory is watched so the -wal file and replaced files are seen too
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Debug("watching database", zap.String("path", w.path))

	tick := w.debounce / 5
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				last = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			if !last.IsZero() && time.Since(last) >= w.debounce {
				last = time.Time{}
				w.onChange()
			}
		}
	}
}

// relevant keeps writes to the database and its WAL; the -shm index changes on reads too
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	base := filepath.Base(w.path)
	return name == base || name == base+"-wal" || (strings.HasPrefix(name, base) && strings.HasSuffix(name, "-journal"))
}

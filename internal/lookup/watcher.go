package lookup

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Watcher polls a catalog file and reloads the service when it changes.
type Watcher struct {
	service  *Service
	path     string
	interval time.Duration
	logger   zerolog.Logger

	modTime time.Time
	size    int64
}

func NewWatcher(service *Service, path string, interval time.Duration, logger zerolog.Logger) *Watcher {
	return &Watcher{
		service:  service,
		path:     path,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled. When the service already serves this
// file, the state recorded at that load is the baseline, so edits made
// before the watcher started are still picked up. Otherwise the first
// poll loads the file.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	if w.interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}
	w.seed()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Str("path", w.path).Dur("interval", w.interval).Msg("catalog watcher started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("path", w.path).Msg("catalog watcher stopped")
			return nil
		case <-ticker.C:
			if _, err := w.Poll(); err != nil {
				w.logger.Warn().Err(err).Str("path", w.path).Msg("catalog poll failed")
			}
		}
	}
}

func (w *Watcher) seed() {
	snap := w.service.Snapshot()
	if snap == nil || snap.Origin() != w.path {
		return
	}
	if modTime, size, ok := snap.FileStat(); ok {
		w.modTime, w.size = modTime, size
	}
}

// Poll reloads the catalog if the file changed since the last poll and
// reports whether a new snapshot was published.
func (w *Watcher) Poll() (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", w.path, err)
	}
	if info.ModTime().Equal(w.modTime) && info.Size() == w.size {
		return false, nil
	}
	w.modTime, w.size = info.ModTime(), info.Size()

	if _, err := w.service.Reload(w.path); err != nil {
		return false, err
	}
	return true, nil
}

// Package lookup resolves (context, source text) pairs against the current
// catalog snapshot. Snapshots are immutable; reloading builds a new one and
// swaps it in atomically, so in-flight lookups finish on the snapshot they
// started with.
package lookup

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/tscat/internal/catalog"
	"horse.fit/tscat/internal/placeholder"
	"horse.fit/tscat/internal/plural"
)

// Service serves lookups from the current snapshot.
type Service struct {
	current atomic.Pointer[Snapshot]
	// reloadMu serializes writers; readers never take it.
	reloadMu sync.Mutex
	rules   *plural.Registry
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(rules *plural.Registry, logger zerolog.Logger) *Service {
	if rules == nil {
		rules = plural.NewDefaultRegistry()
	}
	return &Service{
		rules:  rules,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot returns the snapshot currently served, or nil.
func (s *Service) Snapshot() *Snapshot {
	if s == nil {
		return nil
	}
	return s.current.Load()
}

// Swap publishes cat as the current snapshot and returns it. Validation
// problems do not block the swap; they are logged and kept on the snapshot.
func (s *Service) Swap(cat *catalog.Catalog, origin string) (*Snapshot, error) {
	if s == nil {
		return nil, fmt.Errorf("lookup service is nil")
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	return s.swapLocked(cat, origin, nil)
}

// Reload parses path and swaps it in. On failure the current snapshot
// stays in place. Concurrent reloads run one at a time, so a later call
// always reads the file after an earlier one did.
func (s *Service) Reload(path string) (*Snapshot, error) {
	if s == nil {
		return nil, fmt.Errorf("lookup service is nil")
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	// Stat before reading: an edit racing the read changes the recorded
	// state and is picked up by the next watcher poll.
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("catalog reload failed, keeping previous snapshot")
		return nil, fmt.Errorf("stat catalog %s: %w", path, err)
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("catalog reload failed, keeping previous snapshot")
		return nil, err
	}
	return s.swapLocked(cat, path, info)
}

func (s *Service) swapLocked(cat *catalog.Catalog, origin string, info os.FileInfo) (*Snapshot, error) {
	snap, err := NewSnapshot(cat, s.rules, origin, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if info != nil {
		snap.fileModTime, snap.fileSize, snap.fromFile = info.ModTime(), info.Size(), true
	}
	if warning := snap.LocaleWarning(); warning != nil {
		s.logger.Warn().Err(warning).Str("language", cat.Language).Msg("plural rule fallback in use")
	}
	for _, problem := range snap.Problems() {
		s.logger.Warn().
			Str("context", problem.Context).
			Str("source", problem.Source).
			Int("index", problem.Index).
			Str("kind", string(problem.Kind)).
			Str("detail", problem.Detail).
			Msg("catalog validation error")
	}

	previous := s.current.Swap(snap)
	stats := cat.Stats()
	s.logger.Info().
		Str("origin", origin).
		Str("language", cat.Language).
		Int("contexts", stats.Contexts).
		Int("messages", stats.Messages).
		Int("unfinished", stats.Unfinished).
		Int("validation_errors", len(snap.Problems())).
		Bool("replaced", previous != nil).
		Msg("catalog snapshot published")
	return snap, nil
}

// Resolve renders req against the current snapshot.
func (s *Service) Resolve(req Request) (Result, error) {
	snap := s.Snapshot()
	if snap == nil {
		return Result{}, ErrNoCatalog
	}
	return snap.Resolve(req)
}

// TranslateOrSource never fails: when the message cannot be resolved, is
// unfinished, or renders empty, the source text is rendered instead.
func (s *Service) TranslateOrSource(req Request) string {
	result, err := s.Resolve(req)
	if err == nil && !result.Unfinished && result.Text != "" {
		return result.Text
	}
	args := req.Args
	if len(args) == 0 && req.Count != nil {
		args = []any{*req.Count}
	}
	if rendered, renderErr := placeholder.Render(req.Source, req.Count, args); renderErr == nil {
		return rendered
	}
	return req.Source
}

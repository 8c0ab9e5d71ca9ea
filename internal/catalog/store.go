package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Store holds the current catalog snapshot and replaces it atomically on
// reload. Readers pin a snapshot once per request; in-flight work keeps
// using the snapshot it started with even while a reload publishes a new
// generation.
type Store struct {
	source   Source
	logger   *slog.Logger
	current  atomic.Pointer[Catalog]
	reloadMu sync.Mutex
	gen      uint64
}

// NewStore creates a store and performs the initial load
func NewStore(ctx context.Context, source Source, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		source: source,
		logger: logger.With(slog.String("component", "catalog_store")),
	}
	if err := s.Reload(ctx); err != nil {
		return nil, fmt.Errorf("initial catalog load: %w", err)
	}
	return s, nil
}

// Snapshot returns the current catalog generation
func (s *Store) Snapshot() *Catalog {
	return s.current.Load()
}

// Reload fetches and rebuilds the catalog fully off to the side, then
// publishes it with a single pointer swap. On any error the previous
// snapshot stays in place; a malformed source never yields an empty
// catalog.
func (s *Store) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	records, err := s.source.Fetch(ctx)
	if err != nil {
		return err
	}

	services, warnings, err := Parse(records)
	if err != nil {
		return err
	}

	for _, w := range warnings {
		s.logger.WarnContext(ctx, "catalog data-quality warning", slog.String("warning", w))
	}

	s.gen++
	next := Build(s.gen, services)
	s.current.Store(next)

	s.logger.InfoContext(ctx, "catalog loaded",
		slog.Uint64("generation", next.Generation()),
		slog.Int("services", next.Len()),
		slog.Int("warnings", len(warnings)))

	return nil
}

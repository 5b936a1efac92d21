// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/forumlang/langcat/catalog"
)

var (
	errNoLoader = errors.New("store has no loader")
	errNilSet   = errors.New("loader returned no catalogs")
)

// LoaderFunc produces a complete catalog snapshot.
type LoaderFunc func(ctx context.Context) (*catalog.Set, error)

// Store publishes catalog snapshots to resolvers.
//
// Readers always see one whole snapshot. A new snapshot replaces the old
// one atomically, so resolutions already running keep the generation they
// started with.
type Store struct {
	current atomic.Pointer[catalog.Set]
	load    LoaderFunc
	reload  sync.Mutex // serializes Reload calls
	logger  zerolog.Logger
}

// NewStore returns an empty Store that loads snapshots with load.
// load may be nil when snapshots are only installed through Swap.
func NewStore(load LoaderFunc) *Store {
	return &Store{
		load:   load,
		logger: log.With().Str("sys", "i18n").Logger(),
	}
}

// Setup creates a Store and performs its first load.
func Setup(ctx context.Context, load LoaderFunc) (*Store, error) {
	s := NewStore(load)

	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// Load returns the current snapshot. It is nil before the first load.
func (s *Store) Load() *catalog.Set {
	return s.current.Load()
}

// Swap installs set as the current snapshot and returns the previous one.
func (s *Store) Swap(set *catalog.Set) *catalog.Set {
	return s.current.Swap(set)
}

// Reload runs the loader and installs its result. When loading fails the
// current snapshot is left in place and the error is returned.
func (s *Store) Reload(ctx context.Context) (*catalog.Set, error) {
	if s.load == nil {
		return nil, errNoLoader
	}

	s.reload.Lock()
	defer s.reload.Unlock()

	set, err := s.load(ctx)
	if err == nil && set == nil {
		err = errNilSet
	}

	if err != nil {
		s.logger.Error().
			Err(err).
			Uint64("generation", s.Load().Generation()).
			Msg("Catalog reload failed, keeping current catalogs")

		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}

	prev := s.Swap(set)

	s.logger.Info().
		Uint64("generation", set.Generation()).
		Uint64("previous", prev.Generation()).
		Int("catalogs", set.Len()).
		Strs("languages", set.Languages()).
		Msg("Installed catalogs")

	return set, nil
}

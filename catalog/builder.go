// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrDuplicateKey is returned when a key is defined twice for one catalog.
	ErrDuplicateKey = errors.New("duplicate key")

	errEmptyLanguage = errors.New("language must not be empty")
	errEmptyDomain   = errors.New("domain must not be empty")
	errEmptyKey      = errors.New("key must not be empty")
)

// generations numbers built sets process-wide.
var generations atomic.Uint64

// Builder accumulates templates and produces a [Set].
// It is safe for concurrent use, so loaders may add files in parallel.
type Builder struct {
	mu      sync.Mutex
	entries map[ID]map[string]Template
	origins map[ID]map[string]string // key -> source name, for duplicate reports
	now     func() time.Time
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		entries: make(map[ID]map[string]Template),
		origins: make(map[ID]map[string]string),
		now:     time.Now,
	}
}

// Add parses raw and stores it under key. origin names the source of the
// entry (usually a file name) and is only used in error messages.
func (b *Builder) Add(id ID, key, raw, origin string) error {
	t, err := Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: key %q: %w", id, key, err)
	}

	return b.AddTemplate(id, key, t, origin)
}

// AddTemplate stores an already parsed template under key.
func (b *Builder) AddTemplate(id ID, key string, t Template, origin string) error {
	switch {
	case id.Language == "":
		return errEmptyLanguage
	case id.Domain == "":
		return errEmptyDomain
	case key == "":
		return fmt.Errorf("%s: %w", id, errEmptyKey)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entries, ok := b.entries[id]
	if !ok {
		entries = make(map[string]Template)
		b.entries[id] = entries
		b.origins[id] = make(map[string]string)
	}

	if _, exists := entries[key]; exists {
		return fmt.Errorf("%w %q in %s (defined in %s and %s)",
			ErrDuplicateKey, key, id, b.origins[id][key], origin)
	}

	entries[key] = t
	b.origins[id][key] = origin

	return nil
}

// Declare registers an empty catalog for id so that it exists in the
// built Set even when its source defines no keys.
func (b *Builder) Declare(id ID) error {
	switch {
	case id.Language == "":
		return errEmptyLanguage
	case id.Domain == "":
		return errEmptyDomain
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[id]; !ok {
		b.entries[id] = make(map[string]Template)
		b.origins[id] = make(map[string]string)
	}

	return nil
}

// Build returns a Set holding everything added so far. The Builder may
// keep being used; later additions do not affect the returned Set.
func (b *Builder) Build() *Set {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := &Set{
		catalogs:   make(map[ID]*Catalog, len(b.entries)),
		generation: generations.Add(1),
		loadedAt:   b.now(),
	}

	for id, entries := range b.entries {
		copied := make(map[string]Template, len(entries))
		for k, t := range entries {
			copied[k] = t
		}

		set.catalogs[id] = &Catalog{id: id, entries: copied}
	}

	return set
}

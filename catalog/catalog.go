// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"slices"
	"sort"
	"time"
)

// ID identifies a catalog by language and domain. Both parts are
// case-sensitive: "french" and "french-utf8" are distinct languages.
type ID struct {
	Language string
	Domain   string
}

// String returns the identifier in file-name order, "Domain.language".
func (id ID) String() string {
	return id.Domain + "." + id.Language
}

// Catalog is the set of templates for one language and domain.
// It is read-only once its Set has been built.
type Catalog struct {
	id      ID
	entries map[string]Template
}

// ID returns the catalog identifier.
func (c *Catalog) ID() ID {
	return c.id
}

// Lookup returns the template stored under key.
func (c *Catalog) Lookup(key string) (Template, bool) {
	t, ok := c.entries[key]

	return t, ok
}

// Len returns the number of keys in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Keys returns the catalog keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Set is an immutable snapshot of loaded catalogs. A *Set is safe for
// concurrent use. A nil *Set behaves as an empty snapshot.
type Set struct {
	catalogs   map[ID]*Catalog
	generation uint64
	loadedAt   time.Time
}

// Catalog returns the catalog for language and domain.
func (s *Set) Catalog(language, domain string) (*Catalog, bool) {
	if s == nil {
		return nil, false
	}

	c, ok := s.catalogs[ID{Language: language, Domain: domain}]

	return c, ok
}

// Lookup is a shortcut for finding a template in one step. It reports
// whether the catalog exists separately from whether the key exists.
func (s *Set) Lookup(language, domain, key string) (t Template, catalogFound, keyFound bool) {
	c, ok := s.Catalog(language, domain)
	if !ok {
		return Template{}, false, false
	}

	t, ok = c.Lookup(key)

	return t, true, ok
}

// Catalogs returns all catalogs ordered by language, then domain.
func (s *Set) Catalogs() []*Catalog {
	if s == nil {
		return nil
	}

	out := make([]*Catalog, 0, len(s.catalogs))
	for _, c := range s.catalogs {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].id.Language != out[j].id.Language {
			return out[i].id.Language < out[j].id.Language
		}

		return out[i].id.Domain < out[j].id.Domain
	})

	return out
}

// Languages returns the distinct language identifiers, sorted.
func (s *Set) Languages() []string {
	if s == nil {
		return nil
	}

	var out []string

	for id := range s.catalogs {
		if !slices.Contains(out, id.Language) {
			out = append(out, id.Language)
		}
	}

	sort.Strings(out)

	return out
}

// Domains returns the domains loaded for language, sorted.
func (s *Set) Domains(language string) []string {
	if s == nil {
		return nil
	}

	var out []string

	for id := range s.catalogs {
		if id.Language == language {
			out = append(out, id.Domain)
		}
	}

	sort.Strings(out)

	return out
}

// Len returns the number of catalogs.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}

	return len(s.catalogs)
}

// Generation returns a number that increases with every built Set in the
// process. The zero Set has generation 0.
func (s *Set) Generation() uint64 {
	if s == nil {
		return 0
	}

	return s.generation
}

// LoadedAt returns when the Set was built.
func (s *Set) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}

	return s.loadedAt
}

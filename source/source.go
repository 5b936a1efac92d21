// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package source

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/forumlang/langcat/catalog"
)

// Compression names the compression wrapped around a catalog file.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionZstd Compression = "zst"
	CompressionGzip Compression = "gz"
)

// File describes a catalog file by its name.
type File struct {
	Path        string
	ID          catalog.ID
	Format      Format
	Compression Compression
}

// ParseName interprets the base name of p as a catalog file name. It
// reports false for files that are not catalogs.
func ParseName(p string) (File, bool) {
	f := File{Path: p}
	name := path.Base(p)

	switch {
	case strings.HasSuffix(name, ".zst"):
		f.Compression = CompressionZstd
		name = strings.TrimSuffix(name, ".zst")
	case strings.HasSuffix(name, ".gz"):
		f.Compression = CompressionGzip
		name = strings.TrimSuffix(name, ".gz")
	}

	ext := path.Ext(name)

	format, ok := ParseFormat(ext)
	if !ok {
		return File{}, false
	}

	f.Format = format

	domain, lang, ok := strings.Cut(strings.TrimSuffix(name, ext), ".")
	if !ok || domain == "" || lang == "" || strings.Contains(lang, ".") {
		return File{}, false
	}

	f.ID = catalog.ID{Language: lang, Domain: domain}

	return f, true
}

// Options control how catalog files are decoded and loaded.
type Options struct {
	// Charsets maps a language id to the charset its non UTF-8 files use.
	Charsets map[string]string

	// DefaultCharset applies to languages missing from Charsets.
	// Empty means [DefaultCharset].
	DefaultCharset string

	// Concurrency bounds the number of files decoded at once.
	// Zero or less means GOMAXPROCS.
	Concurrency int
}

func (o Options) charset(lang string) string {
	if cs := o.Charsets[lang]; cs != "" {
		return cs
	}

	return o.DefaultCharset
}

// Decode turns the raw bytes of f into key/template pairs: it
// decompresses, converts to UTF-8 and parses the result.
func Decode(f File, data []byte, opts Options) (map[string]string, error) {
	data, err := decompress(data, f.Compression)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}

	data, err = toUTF8(data, opts.charset(f.ID.Language))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}

	entries, err := Parse(f.Format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}

	return entries, nil
}

// ReadFile reads and decodes the catalog file at name in fsys.
func ReadFile(fsys fs.FS, name string, opts Options) (File, map[string]string, error) {
	f, ok := ParseName(name)
	if !ok {
		return File{}, nil, fmt.Errorf("%s: not a catalog file name", name)
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return File{}, nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	entries, err := Decode(f, data, opts)
	if err != nil {
		return File{}, nil, err
	}

	return f, entries, nil
}

// LoadFS loads every catalog file below dir in fsys into a new Set.
// Files are decoded concurrently. Any failure aborts the load and no Set
// is returned.
func LoadFS(ctx context.Context, fsys fs.FS, dir string, opts Options) (*catalog.Set, error) {
	logger := log.With().Str("sys", "source").Logger()

	var files []File

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		f, ok := ParseName(p)
		if !ok {
			logger.Debug().Str("path", p).Msg("Skipping non-catalog file")

			return nil
		}

		files = append(files, f)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk catalog directory %q: %w", dir, err)
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	builder := catalog.NewBuilder()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := fs.ReadFile(fsys, f.Path)
			if err != nil {
				return fmt.Errorf("failed to read catalog file: %w", err)
			}

			entries, err := Decode(f, data, opts)
			if err != nil {
				return err
			}

			if err := builder.Declare(f.ID); err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}

			keys := make([]string, 0, len(entries))
			for k := range entries {
				keys = append(keys, k)
			}

			slices.Sort(keys)

			for _, k := range keys {
				if err := builder.Add(f.ID, k, entries[k], f.Path); err != nil {
					return fmt.Errorf("%s: %w", f.Path, err)
				}
			}

			logger.Debug().
				Str("path", f.Path).
				Str("catalog", f.ID.String()).
				Int("keys", len(entries)).
				Msg("Loaded catalog file")

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := builder.Build()

	logger.Info().
		Int("files", len(files)).
		Int("catalogs", set.Len()).
		Uint64("generation", set.Generation()).
		Msg("Loaded catalogs")

	return set, nil
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is how long Watch waits for more changes before calling back.
const DefaultDebounce = 250 * time.Millisecond

// Watch calls onChange after catalog files under dir are created, written,
// renamed or removed. Changes arriving within debounce of each other are
// reported once. Directories created later are watched too.
//
// Watch blocks until ctx is done.
func Watch(ctx context.Context, dir string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make(map[string]bool)

	if _, err := addTree(watcher, dir, dirs); err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger := log.With().Str("sys", "source").Str("dir", dir).Logger()
	logger.Info().Msg("Watching catalog directory")

	timer := time.NewTimer(debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// A directory moved in may already hold catalogs.
					hasCatalogs, err := addTree(watcher, event.Name, dirs)
					if err != nil {
						logger.Warn().Err(err).Msg("Failed to watch new directory")
					}

					if hasCatalogs {
						logger.Debug().Str("path", event.Name).Msg("Catalog directory added")
						timer.Reset(debounce)
					}

					continue
				}
			}

			if event.Has(fsnotify.Chmod) {
				continue
			}

			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				if dirs[event.Name] {
					forgetTree(dirs, event.Name)
					logger.Debug().Str("path", event.Name).Msg("Catalog directory removed")
					timer.Reset(debounce)

					continue
				}
			}

			if _, isCatalog := ParseName(event.Name); !isCatalog {
				continue
			}

			logger.Debug().
				Str("path", event.Name).
				Str("op", event.Op.String()).
				Msg("Catalog file changed")

			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn().Err(err).Msg("Watcher error")

		case <-timer.C:
			onChange()
		}
	}
}

// addTree watches root and every directory below it, recording them in
// dirs. It reports whether any catalog file was found on the way.
func addTree(watcher *fsnotify.Watcher, root string, dirs map[string]bool) (bool, error) {
	hasCatalogs := false

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			if _, ok := ParseName(p); ok {
				hasCatalogs = true
			}

			return nil
		}

		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}

		dirs[p] = true

		return nil
	})

	return hasCatalogs, err
}

func forgetTree(dirs map[string]bool, root string) {
	prefix := root + string(filepath.Separator)

	for p := range dirs {
		if p == root || strings.HasPrefix(p, prefix) {
			delete(dirs, p)
		}
	}
}

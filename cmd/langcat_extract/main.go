// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command langcat_extract lists the catalog keys referenced from Go code.
//
// It finds calls to Resolve, Text and Has on an i18n.Resolver, calls to
// i18n.NewUserError and i18n.Message literals whose domain and key are
// constants. With -check, every key found must exist in the base language
// catalogs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/tools/go/packages"

	"codeberg.org/forumlang/langcat/config"
)

var errMissingKeys = errors.New("referenced keys are missing from the catalogs")

func main() {
	outPath := flag.String("o", "-", "output file, - for standard output")
	check := flag.Bool("check", false, "fail when a referenced key is missing from the base language")
	base := flag.String("base", "", "base language for -check (default: the configured default language)")
	dir := flag.String("dir", "", "catalog directory for -check (built-in catalogs when empty)")
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	log.Logger = zerolog.New(config.ConsoleWriter(os.Stderr)).With().Timestamp().Logger()

	wd, err := os.Getwd()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get working directory")
	}

	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	pkgs, err := packages.Load(&packages.Config{Mode: packages.LoadAllSyntax, Tests: false}, patterns...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load packages")
	}

	if packages.PrintErrors(pkgs) > 0 {
		log.Fatal().Msg("Failed to load packages due to errors")
	}

	refs := extractRefs(pkgs, findProjectRoot(wd), findI18nPkgPaths(pkgs))

	if err := writeOutput(*outPath, refs); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	if !*check {
		return
	}

	var cfg config.ServerConfig
	if err := cfg.Load(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if *dir != "" {
		cfg.Catalog.Dir = *dir
	}

	language := *base
	if language == "" {
		language = cfg.Catalog.DefaultLanguage
	}

	set, err := cfg.Loader()(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load catalogs")
	}

	missing := missingKeys(refs, set, language)
	for _, k := range missing {
		log.Error().
			Str("language", language).
			Str("domain", k.domain).
			Str("key", k.key).
			Strs("refs", formatRefs(refs[k])).
			Msg("Key not found")
	}

	if len(missing) > 0 {
		log.Fatal().Err(errMissingKeys).Int("count", len(missing)).Send()
	}
}

func writeOutput(outPath string, refs map[key][]ref) error {
	var b strings.Builder

	writeHeader(&b)
	writeReport(&b, refs)

	if outPath == "-" {
		_, err := io.WriteString(os.Stdout, b.String())

		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outPath, err)
	}

	return nil
}

// writeHeader emits the report header.
func writeHeader(b *strings.Builder) {
	fmt.Fprintf(b, "# langcat key references, %s\n", detectVersion())
	fmt.Fprintf(b, "# generated %s\n", time.Now().UTC().Format("2006-01-02 15:04+0000"))
	fmt.Fprintln(b)
}

// detectVersion resolves a human-friendly version string using git describe.
// Falls back to the build version when git is unavailable or this is not a
// git checkout.
func detectVersion() string {
	cmd := exec.Command("git", "describe", "--tags", "--always", "--dirty")

	out, err := cmd.Output()
	if err != nil {
		return config.BuildVersion
	}

	return strings.TrimSpace(string(out))
}

// findProjectRoot attempts to find a stable root directory for source references.
// Preference order:
//  1. git toplevel directory
//  2. nearest parent directory that contains go.mod
//  3. the provided working directory
func findProjectRoot(wd string) string {
	if root := gitTopLevel(wd); root != "" {
		return root
	}

	if root := nearestGoModDir(wd); root != "" {
		return root
	}

	return wd
}

func gitTopLevel(wd string) string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")

	cmd.Dir = wd

	out, err := cmd.Output()
	if err != nil {
		return ""
	}

	root := strings.TrimSpace(string(out))
	if root == "" {
		return ""
	}

	return filepath.Clean(root)
}

func nearestGoModDir(start string) string {
	dir := filepath.Clean(start)
	for {
		if fileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

func fileExists(path string) bool {
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return true
	}

	return false
}

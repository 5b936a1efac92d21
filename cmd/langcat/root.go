// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codeberg.org/forumlang/langcat/config"
	"codeberg.org/forumlang/langcat/i18n"
)

// app is the state shared by all subcommands.
type app struct {
	configPath string
	dir        string
	verbose    bool

	cfg config.ServerConfig
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "langcat",
		Short: "Work with forum message catalogs",
		Long: `langcat reads the per-language, per-domain string tables of a forum
and resolves, lists, checks or converts them.

Catalogs are read from --dir, from the configured catalog directory, or
from the catalogs built into the binary.`,
		Version:           config.BuildVersion,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
	}

	cmd.SetVersionTemplate("langcat {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to the configuration file")
	flags.StringVar(&a.dir, "dir", "", "catalog directory (built-in catalogs when empty)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")

	cmd.AddCommand(
		newResolveCmd(a),
		newLanguagesCmd(a),
		newLintCmd(a),
		newConvertCmd(a),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	level := zerolog.WarnLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(config.ConsoleWriter(os.Stderr)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if err := a.cfg.Load(a.configPath); err != nil {
		return err
	}

	if a.dir != "" {
		info, err := os.Stat(a.dir)
		if err != nil {
			return fmt.Errorf("catalog directory: %w", err)
		}

		if !info.IsDir() {
			return fmt.Errorf("catalog directory: %s is not a directory", a.dir)
		}

		a.cfg.Catalog.Dir = a.dir
	}

	log.Debug().
		Str("command", cmd.Name()).
		Str("dir", a.cfg.Catalog.Dir).
		Msg("Configuration loaded")

	return nil
}

// resolver loads the catalogs and returns a resolver configured like the
// server's.
func (a *app) resolver(ctx context.Context) (*i18n.Resolver, error) {
	store, err := i18n.Setup(ctx, a.cfg.Loader())
	if err != nil {
		return nil, err
	}

	return i18n.New(store, i18n.Options{
		Context:         a.cfg.ForumContext(),
		DefaultLanguage: a.cfg.Catalog.DefaultLanguage,
	}), nil
}

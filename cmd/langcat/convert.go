// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codeberg.org/forumlang/langcat/source"
)

var errUnknownOutputFormat = errors.New("cannot tell output format, use --format")

type convertOptions struct {
	format string
}

func newConvertCmd(a *app) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert SRC DST",
		Short: "Convert a catalog file to YAML or TOML",
		Long: `convert reads one catalog file in any supported format and writes its
keys as a flat YAML or TOML table. SRC must be named like
Errors.french.php; DST may be "-" for standard output.`,
		Example: `  langcat convert languages/french/Errors.french.php Errors.french.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "output format: yaml or toml (default: from the DST extension, yaml for -)")

	return cmd
}

func outputFormat(dst, flag string) (source.Format, error) {
	ext := flag

	switch {
	case ext != "":
	case dst == "-":
		ext = string(source.FormatYAML)
	default:
		ext = filepath.Ext(dst)
	}

	format, ok := source.ParseFormat(ext)
	if !ok {
		return "", fmt.Errorf("%w: %q", errUnknownOutputFormat, dst)
	}

	return format, nil
}

func (a *app) runConvert(cmd *cobra.Command, src, dst string, opts convertOptions) error {
	format, err := outputFormat(dst, opts.format)
	if err != nil {
		return err
	}

	_, entries, err := source.ReadFile(os.DirFS(filepath.Dir(src)), filepath.Base(src), a.cfg.SourceOptions())
	if err != nil {
		return err
	}

	out, err := source.Encode(format, entries)
	if err != nil {
		return err
	}

	if dst == "-" {
		_, err = cmd.OutOrStdout().Write(out)

		return err
	}

	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	return nil
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"codeberg.org/forumlang/langcat/lint"
)

var (
	errLintFailed      = errors.New("lint found problems")
	errInvalidSeverity = errors.New("invalid severity, want info, warning or error")
)

type lintOptions struct {
	base   string
	failOn string
	quiet  bool
}

func newLintCmd(a *app) *cobra.Command {
	var opts lintOptions

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check translations against a base language",
		Long: `lint loads every catalog and reports malformed templates, unbalanced or
unsafe HTML, and keys or placeholders that differ from the base language.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runLint(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.base, "base", "", "language to compare against (default: the configured default language)")
	flags.StringVar(&opts.failOn, "fail-on", "error", "lowest severity that makes lint fail: info, warning or error")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print informational findings")

	return cmd
}

func parseSeverity(s string) (lint.Severity, error) {
	for _, sev := range []lint.Severity{lint.SeverityInfo, lint.SeverityWarning, lint.SeverityError} {
		if sev.String() == s {
			return sev, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", errInvalidSeverity, s)
}

func (a *app) runLint(cmd *cobra.Command, opts lintOptions) error {
	failOn, err := parseSeverity(opts.failOn)
	if err != nil {
		return err
	}

	base := opts.base
	if base == "" {
		base = a.cfg.Catalog.DefaultLanguage
	}

	fsys, dir, srcOpts := a.cfg.CatalogFS()

	set, findings, err := lint.Load(cmd.Context(), fsys, dir, srcOpts)
	if err != nil {
		return err
	}

	checked, err := lint.Check(set, lint.Options{Base: base})
	if err != nil {
		return err
	}

	findings = append(findings, checked...)
	lint.Sort(findings)

	out := cmd.OutOrStdout()
	counts := make(map[lint.Severity]int)

	for _, f := range findings {
		counts[f.Severity]++

		if opts.quiet && f.Severity == lint.SeverityInfo {
			continue
		}

		fmt.Fprintln(out, f)
	}

	fmt.Fprintf(out, "%d errors, %d warnings, %d info\n",
		counts[lint.SeverityError], counts[lint.SeverityWarning], counts[lint.SeverityInfo])

	if len(findings) > 0 && lint.Worst(findings) >= failOn {
		return errLintFailed
	}

	return nil
}
